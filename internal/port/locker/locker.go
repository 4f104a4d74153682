package locker

import "context"

// AdvisoryLocker serialises critical sections using Postgres session advisory locks.
// Lock and unlock must run on the same DB connection for session-level
// pg_advisory_lock semantics.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
	// TryWithLock runs fn only if the lock is free and reports whether it ran.
	TryWithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) (bool, error)
}

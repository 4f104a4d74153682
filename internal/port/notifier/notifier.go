package notifier

import (
	"context"

	domaincontact "github.com/folio-dev/folio/internal/domain/contact"
)

// ContactNotifier tells the site operator about a persisted submission.
// Callers treat failures as best effort.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, s domaincontact.Submission) error
}

// Nop discards notifications. Used when no transport is configured.
type Nop struct{}

func (Nop) NotifyContact(context.Context, domaincontact.Submission) error { return nil }

package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/folio-dev/folio/internal/metrics"
	portblob "github.com/folio-dev/folio/internal/port/blob"
	portlocker "github.com/folio-dev/folio/internal/port/locker"
	portproject "github.com/folio-dev/folio/internal/port/project"
)

// sweepLockKey keeps one replica sweeping at a time.
const sweepLockKey int64 = 0x666f6c696f03

// Report summarises a sweep.
type Report struct {
	Skipped  bool     `json:"skipped"`
	Scanned  int      `json:"scanned"`
	Orphans  []string `json:"orphans"`
	Removed  int      `json:"removed"`
	Failures int      `json:"failures"`
	DryRun   bool     `json:"dry_run"`
}

// Sweeper reclaims blobs that no project row references. Blobs younger than
// the grace period are left alone: a create may have stored its image and not
// yet committed the row.
type Sweeper struct {
	repo   portproject.Repository
	blobs  portblob.Store
	locker portlocker.AdvisoryLocker
	grace  time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func New(repo portproject.Repository, blobs portblob.Store, locker portlocker.AdvisoryLocker, grace time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{repo: repo, blobs: blobs, locker: locker, grace: grace, logger: logger, now: time.Now}
}

func (s *Sweeper) Sweep(ctx context.Context, dryRun bool) (Report, error) {
	report := Report{DryRun: dryRun, Orphans: []string{}}
	ran, err := s.locker.TryWithLock(ctx, sweepLockKey, func(ctx context.Context) error {
		return s.sweep(ctx, &report)
	})
	if err != nil {
		return report, fmt.Errorf("sweep orphan blobs: %w", err)
	}
	if !ran {
		s.logger.InfoContext(ctx, "orphan sweep skipped, another sweep holds the lock")
		return Report{Skipped: true, DryRun: dryRun, Orphans: []string{}}, nil
	}

	s.logger.InfoContext(ctx, "orphan sweep finished",
		"scanned", report.Scanned, "orphans", len(report.Orphans), "removed", report.Removed,
		"failures", report.Failures, "dry_run", dryRun)
	return report, nil
}

func (s *Sweeper) sweep(ctx context.Context, report *Report) error {
	// List blobs before reading references: a blob stored and committed in
	// between is then seen as referenced rather than orphaned.
	infos, err := s.blobs.List(ctx)
	if err != nil {
		return err
	}
	names, err := s.repo.ImageFilenames(ctx)
	if err != nil {
		return err
	}
	referenced := make(map[string]struct{}, len(names))
	for _, n := range names {
		referenced[n] = struct{}{}
	}

	cutoff := s.now().Add(-s.grace)
	report.Scanned = len(infos)
	for _, info := range infos {
		if _, ok := referenced[info.ID]; ok {
			continue
		}
		if info.ModTime.After(cutoff) {
			continue
		}
		report.Orphans = append(report.Orphans, info.ID)
		if report.DryRun {
			continue
		}
		if err := s.blobs.Remove(ctx, info.ID); err != nil {
			report.Failures++
			s.logger.WarnContext(ctx, "orphan blob not removed", "image", info.ID, "error", err)
			continue
		}
		report.Removed++
	}
	metrics.AddOrphansSwept(report.Removed)
	return nil
}

package wire

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/folio-dev/folio/internal/service/sweeper"
)

// startSweeper schedules orphan-blob sweeps. An empty schedule disables them
// and returns a nil scheduler.
func startSweeper(ctx context.Context, schedule string, sw *sweeper.Sweeper) (*cron.Cron, error) {
	if schedule == "" {
		slog.Info("orphan sweeper disabled")
		return nil, nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := sw.Sweep(ctx, false); err != nil {
			slog.Error("orphan sweep failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid SWEEP_SCHEDULE %q: %w", schedule, err)
	}

	c.Start()
	slog.Info("orphan sweeper scheduled", "schedule", schedule)
	return c, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Rifqialba/urilaga"
)

type orphanSweeper interface {
	SweepOrphans(ctx context.Context, opts urilaga.SweepOptions) (urilaga.SweepResult, error)
}

// scheduleSweep registers a periodic orphan sweep on a new cron runner using
// the standard five-field syntax. The caller starts and stops the runner.
// Each run is bounded by timeout.
func scheduleSweep(schedule string, sweeper orphanSweeper, grace, timeout time.Duration) (*cron.Cron, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		runSweep(sweeper, urilaga.SweepOptions{GracePeriod: grace}, timeout)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule cleanup: %w", err)
	}

	return c, nil
}

func runSweep(sweeper orphanSweeper, opts urilaga.SweepOptions, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := sweeper.SweepOrphans(ctx, opts)
	if err != nil {
		slog.Error("scheduled cleanup failed", "err", err, "deleted", result.Deleted)
		return
	}

	slog.Info("scheduled cleanup complete", "scanned", result.Scanned, "orphans", len(result.Orphans), "deleted", result.Deleted)
}

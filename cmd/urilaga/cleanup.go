package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rifqialba/urilaga"
	"github.com/Rifqialba/urilaga/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stored images no catalog row references",
	Long: `Remove orphaned objects from storage.

An upload writes its file before inserting the image row. When signing or
the insert fails the file stays behind. This command deletes every stored
object that no image row references and that is older than the grace
period, so uploads still in flight are left alone.

Run it periodically, or set cleanup.schedule to let 'serve' run it.`,
	RunE: runCleanup,
}

var (
	cleanupDryRun bool
	cleanupGrace  time.Duration
)

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "list orphans without deleting them")
	cleanupCmd.Flags().DurationVar(&cleanupGrace, "grace-period", 0, "skip objects younger than this (default: cleanup.grace_period)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	objects, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = objects.close() }()

	service, err := newGalleryService(cfg, db.GetRepo(), objects.store)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	grace := cfg.Cleanup.GracePeriod
	if cmd.Flags().Changed("grace-period") {
		grace = cleanupGrace
	}

	slog.Info("starting cleanup", "grace_period", grace, "dry_run", cleanupDryRun)

	result, err := service.SweepOrphans(ctx, urilaga.SweepOptions{GracePeriod: grace, DryRun: cleanupDryRun})
	if err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	for _, name := range result.Orphans {
		slog.Info("orphan", "object", name)
	}

	slog.Info("cleanup complete", "scanned", result.Scanned, "orphans", len(result.Orphans), "deleted", result.Deleted)
	return nil
}

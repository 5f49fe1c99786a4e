package admin

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pitchlabs/coachkb/internal/config"
	"github.com/pitchlabs/coachkb/internal/jobs"
	"github.com/pitchlabs/coachkb/internal/repository"
	"github.com/pitchlabs/coachkb/internal/telemetry"
)

// SweepCmd returns the sweep command
func SweepCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Reconcile documents stuck in processing",
		Long:  "Mark documents that stayed in processing past the stale timeout as failed. With --watch, keep sweeping on an interval.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cfg.SentryDSN != "" {
				shutdown, err := telemetry.Init(telemetry.Config{
					DSN:              cfg.SentryDSN,
					Environment:      cfg.Environment,
					TracesSampleRate: cfg.SentrySampleRate,
					Debug:            cfg.Debug,
				})
				if err == nil {
					defer shutdown()
				}
			}

			pool, err := getDBPool(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			reconciler := jobs.NewReconciler(repository.NewDocumentRepository(pool), cfg.SweepStaleTimeout)

			if !watch {
				return reconciler.Run(ctx)
			}

			ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			worker := jobs.NewWorker(reconciler, cfg.SweepInterval)
			worker.Start(ctx)
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and sweep on the configured interval")
	return cmd
}

package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gobite-otp/internal/pkg/config"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gobite-otp/internal/pkg/scheduler"
)

const (
	sweeperName            = "otp-expiry-sweeper"
	defaultSweeperInterval = 60 * time.Second
	defaultSweeperGrace    = 60 * time.Second
)

// NewSweeperJob builds the periodic expiry sweep.
func NewSweeperJob(cfg config.Config, uc ucJob) *scheduler.Job {
	interval := cfg.GetSecond("modules.otp.sweeper.interval_seconds")
	if interval <= 0 {
		interval = defaultSweeperInterval
	}
	grace := cfg.GetSecond("modules.otp.sweeper.stop_grace_seconds")
	if grace <= 0 {
		grace = defaultSweeperGrace
	}

	return scheduler.NewJob(sweeperName, interval, func(ctx context.Context) error {
		_, err := uc.SweepExpired(ctx)
		return err
	}, scheduler.WithStopGrace(grace))
}

// RegisterSweeper starts the sweeper on routine unless disabled in config.
// The returned job must be stopped on shutdown; it is nil when not started.
func RegisterSweeper(ctx context.Context, cfg config.Config, routine *goroutine.Manager, uc ucJob) *scheduler.Job {
	if cfg.GetBool("modules.otp.sweeper.disabled") {
		slog.InfoContext(ctx, "otp expiry sweeper disabled")
		return nil
	}

	job := NewSweeperJob(cfg, uc)
	if !routine.Go(ctx, job.Run) {
		slog.ErrorContext(ctx, "failed to start otp expiry sweeper, goroutine limit reached")
		return nil
	}

	return job
}

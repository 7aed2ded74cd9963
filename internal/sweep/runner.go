// Package sweep runs the approval sweep on an in-process timer. It is the
// local alternative to an external scheduler hitting the cron endpoint:
// deployments with a platform cron leave it disabled, development and
// single-box deployments set SWEEP_INTERVAL instead. Because the sweep is
// idempotent, running both at once is safe, just wasteful.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/swapspace/membership-backend/internal/workflow"
)

// Sweep is the narrow interface the runner drives. *workflow.Sweeper is the
// concrete implementation; tests inject a counter.
type Sweep interface {
	Run(ctx context.Context) (workflow.SweepSummary, error)
}

// Runner invokes the sweep once at startup and then on every tick.
type Runner struct {
	sweep    Sweep
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewRunner constructs a Runner. interval must be positive; the per-run
// timeout defaults to the interval capped at two minutes.
func NewRunner(sweep Sweep, interval time.Duration, logger *slog.Logger) *Runner {
	timeout := interval
	if timeout > 2*time.Minute {
		timeout = 2 * time.Minute
	}
	return &Runner{
		sweep:    sweep,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled. Call it in a goroutine from main:
//
//	go runner.Start(ctx)
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("sweep runner: starting", "interval", r.interval)

	// Run once immediately so a restart doesn't wait a full interval to pick
	// up approvals that happened while the process was down.
	r.runOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("sweep runner: stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	summary, err := r.sweep.Run(runCtx)
	if err != nil {
		r.logger.Error("sweep runner: run failed", "error", err)
		return
	}
	if summary.Attempted > 0 {
		r.logger.Info("sweep runner: run complete",
			"attempted", summary.Attempted,
			"successes", summary.Successes,
			"failures", summary.Failures,
		)
	}
}

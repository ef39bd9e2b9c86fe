package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
)

// Run generates the configured targets on the root generator.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	detach := a.reporter.attach(ctx)
	defer detach()

	args := []any{a.config.options()}
	for _, target := range a.config.Targets {
		args = append(args, target)
	}

	started := time.Now()
	a.logger.Info("🚀 Starting run...", "targets", a.config.Targets)
	_, err := a.root.Generate(ctx, args...)
	summary := a.reporter.summarize()
	if err != nil {
		a.logger.Error("Run failed.", "finished", summary.Finished, "failed", summary.Failed, "duration", time.Since(started))
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Run finished.", "finished", summary.Finished, "duration", time.Since(started))
	return nil
}

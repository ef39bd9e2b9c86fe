package registry

import (
	"context"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/event"
)

// Build runs the given task expressions and returns a snapshot of the
// payload. With no expressions the "default" task is built. Roots run in
// series unless the options set parallel. A trailing task.Callback, when
// given, is also invoked with the outcome.
func (r *Registry) Build(ctx context.Context, args ...any) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("scope", r.Scope())

	opts, cb, exprs, err := splitArgs(args)
	if err != nil {
		if cb != nil {
			cb(err, nil)
		}
		return nil, err
	}
	if len(exprs) == 0 {
		exprs = []any{"default"}
	}

	started := time.Now()
	r.publishBuild(event.BuildStarting, started, nil)
	logger.Info("Build starting.", "parallel", opts.Parallel())

	compose := r.Series
	if opts.Parallel() {
		compose = r.Parallel
	}
	err = compose(append([]any{opts}, exprs...)...)(ctx)

	r.publishBuild(event.BuildFinished, started, err)
	if err != nil {
		logger.Error("Build failed.", "error", err, "duration", time.Since(started))
	} else {
		logger.Info("Build finished.", "duration", time.Since(started))
	}

	payload := r.payload.Snapshot()
	if cb != nil {
		cb(err, payload)
	}
	return payload, err
}

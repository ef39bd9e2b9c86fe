package generator

import (
	"context"
	"maps"
	"time"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/expr"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// Generate is the scope-aware counterpart of Build. Each name resolves, in
// order of precedence, to a task of this scope that is not already running,
// to a child scope (whose "default" task runs), or to a task or child of the
// nearest "default" scope. Routes run one after another; the first failure
// stops the rest. The returned payload merges the payloads of every scope
// that ran.
func (g *Generator) Generate(ctx context.Context, args ...any) (map[string]any, error) {
	logger := ctxlog.FromContext(ctx).With("scope", g.Namespace())
	started := time.Now()

	e, err := expr.Parse(scopeView{g}, args...)
	if err != nil {
		logger.Error("Invalid task expression.", "error", err)
		if cb := callbackOf(args); cb != nil {
			cb(err, nil)
		}
		return nil, err
	}

	payload := make(map[string]any)
	for _, route := range e.Routes {
		var target *Generator
		if target, err = g.resolveScope(route.Scope); err != nil {
			break
		}
		logger.Debug("Routing tasks.", "target", target.Namespace(), "tasks", route.Tasks, "inline", len(route.Inline))

		buildArgs := make([]any, 0, 1+len(route.Tasks)+len(route.Inline))
		buildArgs = append(buildArgs, e.Options)
		for _, name := range route.Tasks {
			buildArgs = append(buildArgs, name)
		}
		buildArgs = append(buildArgs, route.Inline...)

		var p map[string]any
		p, err = target.tasks.Build(ctx, buildArgs...)
		maps.Copy(payload, p)
		if err != nil {
			break
		}
	}

	if err != nil {
		logger.Error("Generate failed.", "error", err, "duration", time.Since(started))
	} else {
		logger.Debug("Generate finished.", "routes", len(e.Routes), "duration", time.Since(started))
	}
	if e.Callback != nil {
		e.Callback(err, payload)
	}
	return payload, err
}

// Build runs tasks of this scope only. See registry.Registry.Build.
func (g *Generator) Build(ctx context.Context, args ...any) (map[string]any, error) {
	return g.tasks.Build(ctx, args...)
}

// Series composes tasks of this scope in order.
func (g *Generator) Series(args ...any) registry.Flow { return g.tasks.Series(args...) }

// Parallel composes tasks of this scope concurrently.
func (g *Generator) Parallel(args ...any) registry.Flow { return g.tasks.Parallel(args...) }

func callbackOf(args []any) task.Callback {
	for _, arg := range args {
		if cb, ok := task.AsCallback(arg); ok {
			return cb
		}
	}
	return nil
}

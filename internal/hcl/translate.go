// This file translates the HCL schema structs into the format-agnostic
// model defined in the config package.

package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
)

func (l *Loader) translateTask(ctx context.Context, t *Task) (*config.Task, error) {
	logger := ctxlog.FromContext(ctx).With("task", t.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL task to internal config model.")

	if t.RetryDelay != "" {
		d, err := time.ParseDuration(t.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("task %s: retry_delay: %w", t.Name, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("task %s: retry_delay must not be negative, got %s", t.Name, t.RetryDelay)
		}
	}

	out := &config.Task{
		Name:       t.Name,
		DependsOn:  t.DependsOn,
		Handler:    t.Handler,
		Flow:       t.Flow,
		Run:        t.Run,
		Retries:    t.Retries,
		RetryDelay: t.RetryDelay,
	}
	if isExprDefined(ctx, t.Args, "args") {
		if err := validateExpression(t.Args); err != nil {
			return nil, fmt.Errorf("task %s: args: %w", t.Name, err)
		}
		out.Arguments = t.Args
	}
	return out, nil
}

func (l *Loader) translateGenerator(ctx context.Context, g *Generator) (*config.Generator, error) {
	out := &config.Generator{Name: g.Name, Once: g.Once}
	for _, t := range g.Tasks {
		task, err := l.translateTask(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", g.Name, err)
		}
		out.Tasks = append(out.Tasks, task)
	}
	for _, child := range g.Generators {
		gen, err := l.translateGenerator(ctx, child)
		if err != nil {
			return nil, fmt.Errorf("generator %s: %w", g.Name, err)
		}
		out.Generators = append(out.Generators, gen)
	}
	return out, nil
}

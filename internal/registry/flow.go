package registry

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/dag"
	"github.com/vk/taskgrid/internal/task"
)

// IteratorFunc runs an expanded, validated list of task names.
type IteratorFunc func(ctx context.Context, names []string, opts task.Options) error

// Iterator builds a flow combinator around fn. The returned function accepts
// the same arguments as Expand plus options; when the resulting Flow is
// invoked the arguments are expanded and validated, an empty list completes
// immediately, and a panic in fn is reported as an error.
func (r *Registry) Iterator(fn IteratorFunc) func(args ...any) Flow {
	return func(args ...any) Flow {
		return func(ctx context.Context) (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%s: panic while composing tasks: %v", r.Scope(), p)
				}
			}()

			opts, _, exprs, err := splitArgs(args)
			if err != nil {
				return err
			}
			names, err := r.Expand(exprs...)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return nil
			}
			plan, err := r.Plan(names...)
			if err != nil {
				return err
			}
			if order, err := plan.TopologicalOrder(); err == nil {
				ctxlog.FromContext(ctx).Debug("Planned tasks.", "scope", r.Scope(), "roots", names, "tasks", plan.Len(), "order", order)
			}
			return fn(ctx, names, opts)
		}
	}
}

// Series returns a flow that runs the given tasks one after another. A task
// is not dispatched until the previous one, dependencies included, has
// settled; the first failure stops the chain.
func (r *Registry) Series(args ...any) Flow {
	return r.Iterator(func(ctx context.Context, names []string, opts task.Options) error {
		for _, name := range names {
			if err := r.runTask(ctx, name, opts); err != nil {
				return err
			}
		}
		return nil
	})(args...)
}

// Parallel returns a flow that dispatches every given task at once and
// waits until all of them have settled. The first error encountered is
// returned; siblings that are already running are not cancelled.
func (r *Registry) Parallel(args ...any) Flow {
	return r.Iterator(func(ctx context.Context, names []string, opts task.Options) error {
		p := pool.New()
		if n := opts.Concurrency(); n > 0 {
			p = p.WithMaxGoroutines(n)
		}
		batch := p.WithErrors().WithFirstError()
		for _, name := range names {
			batch.Go(func() error {
				return r.runTask(ctx, name, opts)
			})
		}
		return batch.Wait()
	})(args...)
}

// compose picks the flow used for a task's own dependencies.
func (r *Registry) compose(f task.Flow) func(args ...any) Flow {
	if f == task.FlowParallel {
		return r.Parallel
	}
	return r.Series
}

// runTask resolves the dependencies of name and then runs it. A request for
// a task that is already in flight waits for that run instead of starting a
// second one.
func (r *Registry) runTask(ctx context.Context, name string, opts task.Options) (err error) {
	logger := ctxlog.FromContext(ctx).With("scope", r.Scope(), "task", name)
	if reentered(ctx, r, name) {
		return task.InvalidArgument("task %s cannot be re-entered from its own work", name)
	}
	ctx = entering(ctx, r, name)

	r.mu.Lock()
	t, ok := r.tasks[name]
	if !ok {
		r.mu.Unlock()
		return task.NotRegistered(name)
	}
	if f, inFlight := r.running[name]; inFlight {
		r.mu.Unlock()
		logger.Debug("Task already in flight, waiting for it.")
		<-f.done
		return f.err
	}
	f := &flight{done: make(chan struct{})}
	r.running[name] = f
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.running, name)
		r.mu.Unlock()
		f.err = err
		close(f.done)
	}()

	merged := t.Options().Merge(opts)
	if merged.Run() && !merged.Skips(name) {
		t.Prepare()
		if deps := t.Dependencies(); len(deps) > 0 {
			logger.Debug("Resolving dependencies.", "deps", deps, "flow", merged.Flow())
			args := append([]any{opts}, toAny(deps)...)
			if err := r.compose(merged.Flow())(args...)(ctx); err != nil {
				return err
			}
		}
	}
	return t.Run(ctx, opts, r.payload).Wait()
}

// Plan walks the dependency closure of names into a graph and checks it for
// unknown tasks, empty globs and cycles.
func (r *Registry) Plan(names ...string) (*dag.Graph, error) {
	g := dag.New()

	var visit func(name string) error
	visit = func(name string) error {
		if g.Has(name) {
			return nil
		}
		t, ok := r.Get(name)
		if !ok {
			return task.NotRegistered(name)
		}
		g.AddNode(name)

		deps, err := r.Expand(toAny(t.Dependencies())...)
		if err != nil {
			return fmt.Errorf("resolving dependencies of task %s: %w", name, err)
		}
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
			if err := g.AddEdge(dep, name); err != nil {
				return err
			}
		}
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	if err := g.DetectCycles(); err != nil {
		return nil, task.Cycle(err)
	}
	return g, nil
}

func toAny(names []string) []any {
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

type chainKey struct{}

// chain records the tasks on the current call path so work that calls back
// into its own registry cannot wait on itself.
type chain struct {
	r      *Registry
	name   string
	parent *chain
}

func entering(ctx context.Context, r *Registry, name string) context.Context {
	parent, _ := ctx.Value(chainKey{}).(*chain)
	return context.WithValue(ctx, chainKey{}, &chain{r: r, name: name, parent: parent})
}

func reentered(ctx context.Context, r *Registry, name string) bool {
	c, _ := ctx.Value(chainKey{}).(*chain)
	for ; c != nil; c = c.parent {
		if c.r == r && c.name == name {
			return true
		}
	}
	return false
}

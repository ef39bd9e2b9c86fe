package app

import (
	"context"
	"sync"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/event"
	"github.com/vk/taskgrid/internal/generator"
	"github.com/vk/taskgrid/internal/task"
)

// Summary counts task outcomes observed during a run.
type Summary struct {
	Finished int
	Failed   int
}

// reporter logs lifecycle events of the whole tree and keeps a summary.
type reporter struct {
	root *generator.Generator

	mu      sync.Mutex
	summary Summary
	running map[string]struct{}
}

func newReporter(root *generator.Generator) *reporter {
	return &reporter{root: root, running: make(map[string]struct{})}
}

// attach subscribes to the root bus; task, error and build events of every
// scope bubble there. Generator events stay on the parent scope, so each
// announced scope is watched as it appears. The returned function removes
// the subscriptions.
func (r *reporter) attach(ctx context.Context) func() {
	logger := ctxlog.FromContext(ctx)

	var (
		subMu sync.Mutex
		subs  []subscription
	)
	var watch func(g *generator.Generator)
	onGenerator := func(e event.Event) {
		logger.Debug("Generator instantiated.", "scope", e.Scope, "namespace", e.Generator.Namespace, "invocations", e.Generator.Invocations)
		if child := r.root.FindGenerator(e.Generator.Namespace); child != nil {
			watch(child)
		}
	}
	watch = func(g *generator.Generator) {
		id := g.On(event.KindGenerator, onGenerator)
		subMu.Lock()
		subs = append(subs, subscription{g, id})
		subMu.Unlock()
	}

	subs = append(subs,
		subscription{r.root, r.root.On(event.KindTask, func(e event.Event) {
			r.track(e)
			logger.Debug("Task status changed.", "scope", e.Scope, "task", e.Task.Name, "status", e.Task.Status)
		})},
		subscription{r.root, r.root.On(event.KindError, func(e event.Event) {
			logger.Error("Task failed.", "scope", e.Scope, "task", e.Task.Name, "error", e.Err)
		})},
		subscription{r.root, r.root.On(event.KindBuild, func(e event.Event) {
			if e.Build.Status == event.BuildFinished {
				logger.Debug("Build finished.", "scope", e.Scope, "duration", e.Build.Duration, "error", e.Err)
			}
		})},
	)
	watch(r.root)

	return func() {
		subMu.Lock()
		defer subMu.Unlock()
		for _, s := range subs {
			s.g.Events().Unsubscribe(s.id)
		}
	}
}

type subscription struct {
	g  *generator.Generator
	id string
}

func (r *reporter) track(e event.Event) {
	key := e.Scope + "." + e.Task.Name
	r.mu.Lock()
	defer r.mu.Unlock()
	switch e.Task.Status {
	case task.StatusStarting:
		r.running[key] = struct{}{}
	case task.StatusFinished:
		delete(r.running, key)
		r.summary.Finished++
	case task.StatusErrored:
		delete(r.running, key)
		r.summary.Failed++
	}
}

// summarize returns the outcome counts so far.
func (r *reporter) summarize() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

// runningCount returns the number of tasks currently executing.
func (r *reporter) runningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}

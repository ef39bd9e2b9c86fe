package registry

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/vk/taskgrid/internal/event"
	"github.com/vk/taskgrid/internal/task"
)

// Flow is a composed run of tasks.
type Flow func(ctx context.Context) error

// Registry holds the tasks of a single scope.
type Registry struct {
	scope string
	sink  event.Sink

	mu        sync.RWMutex
	tasks     map[string]*task.Task
	order     []string
	running   map[string]*flight
	anonymous int
	payload   *task.Payload
}

// flight tracks a task between dispatch and settlement.
type flight struct {
	done chan struct{}
	err  error
}

// New creates an empty registry. scope names the owning namespace in events
// and logs; sink may be nil.
func New(scope string, sink event.Sink) *Registry {
	return &Registry{
		scope:   scope,
		sink:    sink,
		tasks:   make(map[string]*task.Task),
		running: make(map[string]*flight),
		payload: task.NewPayload(),
	}
}

// Scope returns the namespace this registry reports in events.
func (r *Registry) Scope() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scope
}

// SetScope renames the namespace reported in events and logs.
func (r *Registry) SetScope(scope string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scope = scope
}

// Payload returns the accumulator shared by all task callbacks.
func (r *Registry) Payload() *task.Payload { return r.payload }

// Register adds or replaces the task called name. The remaining arguments
// are, in any order, at most one task.Options, dependency names (strings or
// slices of strings) and inline dependency functions; a trailing function is
// the task's work. Inline dependencies are registered under generated names.
func (r *Registry) Register(name string, args ...any) (*task.Task, error) {
	if name == "" {
		return nil, task.InvalidArgument("expected task name to be a non-empty string")
	}

	var work any
	if n := len(args); n > 0 && task.IsWork(args[n-1]) {
		work, args = args[n-1], args[:n-1]
	}

	var (
		opts task.Options
		deps []string
	)
	for _, arg := range flatten(args) {
		switch v := arg.(type) {
		case task.Options:
			if opts != nil {
				return nil, task.InvalidArgument("task %s: expected at most one options object", name)
			}
			opts = v
		case string:
			deps = append(deps, v)
		default:
			if !task.IsWork(v) {
				return nil, task.InvalidArgument("task %s: unsupported dependency of type %T", name, v)
			}
			depName, err := r.registerInline(r.nextAnonymousName(), v)
			if err != nil {
				return nil, err
			}
			deps = append(deps, depName)
		}
	}

	wf, err := task.Adapt(work)
	if err != nil {
		return nil, err
	}
	return r.add(name, deps, wf, opts)
}

func (r *Registry) add(name string, deps []string, wf task.WorkFunc, opts task.Options) (*task.Task, error) {
	t, err := task.New(name, deps, wf, opts, notifier{r})
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if _, inFlight := r.running[name]; inFlight {
		r.mu.Unlock()
		return nil, task.InvalidArgument("task %s cannot be replaced while it is running", name)
	}
	if _, exists := r.tasks[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tasks[name] = t
	r.mu.Unlock()

	t.Notify()
	return t, nil
}

func (r *Registry) registerInline(name string, fn any) (string, error) {
	wf, err := task.Adapt(fn)
	if err != nil {
		return "", err
	}
	if _, err := r.add(name, nil, wf, nil); err != nil {
		return "", err
	}
	return name, nil
}

// nextAnonymousName returns a deterministic name for an inline function.
func (r *Registry) nextAnonymousName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		name := "task-" + strconv.Itoa(r.anonymous)
		r.anonymous++
		if _, taken := r.tasks[name]; !taken {
			return name
		}
	}
}

// Get returns the task called name.
func (r *Registry) Get(name string) (*task.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// Has reports whether a task called name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns all task names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// IsRunning reports whether the task called name has been dispatched and has
// not settled yet.
func (r *Registry) IsRunning(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.running[name]
	return ok
}

package task

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vk/taskgrid/internal/ctxlog"
)

// Snapshot is the immutable identity of a task together with its status at
// the moment an event was produced.
type Snapshot struct {
	Name         string
	Dependencies []string
	Status       Status
}

// Notifier receives lifecycle transitions and execution failures.
type Notifier interface {
	TaskStatus(s Snapshot)
	TaskError(s Snapshot, err error)
}

// Task is a single named unit of work.
type Task struct {
	name    string
	deps    []string
	work    WorkFunc
	options Options

	mu       sync.RWMutex
	status   Status
	notifier Notifier
}

// New creates a task in the registered state.
func New(name string, deps []string, work WorkFunc, opts Options, n Notifier) (*Task, error) {
	if name == "" {
		return nil, InvalidArgument("expected task name to be a non-empty string")
	}
	if work == nil {
		work = Noop
	}
	t := &Task{
		name:     name,
		deps:     slices.Clone(deps),
		work:     work,
		options:  opts.Clone(),
		status:   StatusRegistered,
		notifier: n,
	}
	return t, nil
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Dependencies returns a copy of the declared dependency names.
func (t *Task) Dependencies() []string { return slices.Clone(t.deps) }

// Options returns a copy of the stored options.
func (t *Task) Options() Options { return t.options.Clone() }

// Status returns the current lifecycle status.
func (t *Task) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Snapshot returns the task identity and current status.
func (t *Task) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Task) snapshotLocked() Snapshot {
	return Snapshot{Name: t.name, Dependencies: slices.Clone(t.deps), Status: t.status}
}

// Notify reports the current status without changing it.
func (t *Task) Notify() {
	if t.notifier != nil {
		t.notifier.TaskStatus(t.Snapshot())
	}
}

// Prepare marks the task as resolving its dependencies.
func (t *Task) Prepare() {
	t.transition(StatusPreparing)
}

// Run invokes the task's work with its stored options overlaid by opts. The
// stored options are never mutated. A task whose merged options carry
// run=false settles as finished without invoking work.
func (t *Task) Run(ctx context.Context, opts Options, payload *Payload) *Completion {
	merged := t.options.Merge(opts)
	logger := ctxlog.FromContext(ctx).With("task", t.name)

	if !merged.Run() || merged.Skips(t.name) {
		logger.Debug("Task skipped by run policy.")
		t.transition(StatusFinished)
		return Resolved(nil)
	}

	t.transition(StatusStarting)
	tc := &Context{Name: t.name, Options: merged, Payload: payload, Logger: logger}
	started := time.Now()

	return Go(func() error {
		err := t.invoke(ctx, tc)
		if err != nil {
			execErr := &ExecutionError{Task: t.name, Err: err}
			logger.Error("Task failed.", "error", err, "duration", time.Since(started))
			snap := t.transition(StatusErrored)
			if t.notifier != nil {
				t.notifier.TaskError(snap, execErr)
			}
			return execErr
		}
		logger.Debug("Task finished.", "duration", time.Since(started))
		t.transition(StatusFinished)
		return nil
	})
}

// invoke calls the work, retrying failures when the options ask for it.
func (t *Task) invoke(ctx context.Context, tc *Context) error {
	attempt := func() error {
		return Safe(func() error { return t.work(ctx, tc) })
	}
	retries := tc.Options.Retries()
	if retries == 0 {
		return attempt()
	}
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(tc.Options.RetryDelay()), uint64(retries))
	return backoff.RetryNotify(attempt, policy, func(err error, next time.Duration) {
		tc.Logger.Warn("Task attempt failed, retrying.", "error", err, "next", next)
	})
}

func (t *Task) transition(s Status) Snapshot {
	t.mu.Lock()
	t.status = s
	snap := t.snapshotLocked()
	t.mu.Unlock()

	if t.notifier != nil {
		t.notifier.TaskStatus(snap)
	}
	return snap
}

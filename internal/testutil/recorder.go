package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/vk/taskgrid/internal/task"
)

// Recorder collects names in completion order from concurrently running
// tasks.
type Recorder struct {
	mu    sync.Mutex
	order []string
}

// Add appends name.
func (r *Recorder) Add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

// Order returns a copy of the recorded names.
func (r *Recorder) Order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Count returns how many times name was recorded.
func (r *Recorder) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.order {
		if s == name {
			n++
		}
	}
	return n
}

// Record returns synchronous work that records the running task's name.
func (r *Recorder) Record() func(*task.Context) error {
	return func(tc *task.Context) error {
		r.Add(tc.Name)
		return nil
	}
}

// Sleep returns work that records the task name after d elapses.
func (r *Recorder) Sleep(d time.Duration) func(context.Context, *task.Context) error {
	return func(_ context.Context, tc *task.Context) error {
		time.Sleep(d)
		r.Add(tc.Name)
		return nil
	}
}

// Fail returns work that records the task name and fails with err.
func (r *Recorder) Fail(err error) func(*task.Context) error {
	return func(tc *task.Context) error {
		r.Add(tc.Name)
		return err
	}
}

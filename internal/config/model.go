package config

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/taskgrid/internal/task"
)

// Model is the unified, format-agnostic representation of every loaded
// taskfile.
type Model struct {
	Tasks      []*Task
	Generators []*Generator
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	Name      string
	DependsOn []string
	// Handler names the Go handler that does the work. Empty means the task
	// only groups its dependencies.
	Handler    string
	Flow       string
	Run        *bool
	Retries    int
	RetryDelay string
	// Arguments is evaluated lazily, right before the handler runs.
	Arguments hcl.Expression
}

// Options returns the task options the declaration implies.
func (t *Task) Options() task.Options {
	opts := task.Options{}
	if t.Flow != "" {
		opts[task.KeyFlow] = t.Flow
	}
	if t.Run != nil {
		opts[task.KeyRun] = *t.Run
	}
	if t.Retries > 0 {
		opts[task.KeyRetries] = t.Retries
	}
	if t.RetryDelay != "" {
		opts[task.KeyRetryDelay] = t.RetryDelay
	}
	return opts
}

// Generator is the format-agnostic representation of a `generator` block.
// Generators nest.
type Generator struct {
	Name       string
	Once       *bool
	Tasks      []*Task
	Generators []*Generator
}

// Options returns the registration options of the generator.
func (g *Generator) Options() task.Options {
	opts := task.Options{}
	if g.Once != nil {
		opts[task.KeyOnce] = *g.Once
	}
	return opts
}

// Count returns the number of tasks and generators declared in m,
// including nested ones.
func (m *Model) Count() (tasks, generators int) {
	var walk func(gs []*Generator)
	walk = func(gs []*Generator) {
		for _, g := range gs {
			generators++
			tasks += len(g.Tasks)
			walk(g.Generators)
		}
	}
	tasks = len(m.Tasks)
	walk(m.Generators)
	return tasks, generators
}

// Package handlers maps the handler names used in taskfiles to the Go
// functions that do a task's work.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/vk/taskgrid/internal/task"
)

// Func is the work of a declared task. args holds the task's evaluated
// `args` attribute.
type Func func(ctx context.Context, tc *task.Context, args map[string]any) error

// Module contributes handlers to a Handlers set.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all the registered handlers.
type Handlers struct {
	mu  sync.RWMutex
	all map[string]Func
}

// New creates an empty handler set and lets every module register into it.
func New(modules ...Module) *Handlers {
	h := &Handlers{all: make(map[string]Func)}
	for _, m := range modules {
		m.Register(h)
	}
	return h
}

// Register adds fn under name. Registering the same name twice is a
// programming error and panics.
func (h *Handlers) Register(name string, fn Func) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.all[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	if fn == nil {
		panic(fmt.Sprintf("handler '%s' has a nil function", name))
	}
	slog.Debug("Registering handler.", "name", name)
	h.all[name] = fn
}

// Get returns the handler registered under name.
func (h *Handlers) Get(name string) (Func, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	fn, ok := h.all[name]
	return fn, ok
}

// Names returns the registered handler names, sorted.
func (h *Handlers) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.all))
	for name := range h.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports the first name in names that has no handler.
func (h *Handlers) Validate(names ...string) error {
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := h.Get(name); !ok {
			return fmt.Errorf("unknown handler %q (available: %v)", name, h.Names())
		}
	}
	return nil
}

// StringArg returns args[key] when it is a string.
func StringArg(args map[string]any, key string) (string, bool) {
	s, ok := args[key].(string)
	return s, ok
}

// StringMapArg returns args[key] as a map of strings. Non-string values are
// formatted with %v.
func StringMapArg(args map[string]any, key string) map[string]string {
	raw, ok := args[key].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// StringListArg returns args[key] as a list of strings. A single string is
// treated as a one-element list.
func StringListArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return slices.Clone(v)
	}
	return nil
}

package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/task"
)

func noop(context.Context, *task.Context, map[string]any) error { return nil }

type module struct{ names []string }

func (m module) Register(h *Handlers) {
	for _, n := range m.names {
		h.Register(n, noop)
	}
}

func TestHandlers(t *testing.T) {
	h := New(module{names: []string{"shell", "print"}}, module{names: []string{"lua"}})

	assert.Equal(t, []string{"lua", "print", "shell"}, h.Names())

	fn, ok := h.Get("print")
	require.True(t, ok)
	assert.NoError(t, fn(context.Background(), &task.Context{}, nil))

	_, ok = h.Get("nope")
	assert.False(t, ok)
}

func TestHandlers_RegisterPanics(t *testing.T) {
	h := New()
	h.Register("print", noop)

	assert.PanicsWithValue(t, "handler with name 'print' already registered", func() {
		h.Register("print", noop)
	})
	assert.Panics(t, func() { h.Register("nil", nil) })
}

func TestHandlers_Validate(t *testing.T) {
	h := New(module{names: []string{"print"}})

	assert.NoError(t, h.Validate("print", ""))
	assert.ErrorContains(t, h.Validate("print", "shel"), `unknown handler "shel" (available: [print])`)
}

func TestArgHelpers(t *testing.T) {
	args := map[string]any{
		"name":   "x",
		"count":  int64(2),
		"values": map[string]any{"a": "1", "b": int64(2)},
		"list":   []any{"a", int64(1)},
	}

	s, ok := StringArg(args, "name")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	_, ok = StringArg(args, "count")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, StringMapArg(args, "values"))
	assert.Nil(t, StringMapArg(args, "name"))

	assert.Equal(t, []string{"a", "1"}, StringListArg(args, "list"))
	assert.Equal(t, []string{"x"}, StringListArg(args, "name"))
	assert.Nil(t, StringListArg(args, "missing"))
}

package shell

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/task"
)

func newContext() *task.Context {
	return &task.Context{Name: "sh", Logger: ctxlog.Discard(), Payload: task.NewPayload()}
}

func TestOnRunShell(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
	ctx := context.Background()

	t.Run("streams output", func(t *testing.T) {
		var out bytes.Buffer
		m := &Module{Out: &out}
		require.NoError(t, m.OnRunShell(ctx, newContext(), map[string]any{"command": "echo hello"}))
		assert.Equal(t, "hello\n", out.String())
	})

	t.Run("captures output with env and dir", func(t *testing.T) {
		dir := t.TempDir()
		m := &Module{}
		tc := newContext()
		err := m.OnRunShell(ctx, tc, map[string]any{
			"command": `echo "$GREETING from $(pwd)"`,
			"dir":     dir,
			"env":     map[string]any{"GREETING": "hi"},
			"capture": true,
			"key":     "out",
		})
		require.NoError(t, err)
		got, ok := tc.Payload.Get("out")
		require.True(t, ok)
		assert.Contains(t, got, "hi from ")
	})

	t.Run("non-zero exit fails", func(t *testing.T) {
		var stderr bytes.Buffer
		m := &Module{Err: &stderr}
		err := m.OnRunShell(ctx, newContext(), map[string]any{"command": "echo oops >&2; exit 3"})
		assert.ErrorContains(t, err, "exit status 3")
		assert.Equal(t, "oops\n", stderr.String())
	})

	t.Run("missing command", func(t *testing.T) {
		err := (&Module{}).OnRunShell(ctx, newContext(), map[string]any{"command": "  "})
		assert.ErrorContains(t, err, "missing required argument 'command'")
	})
}

package env_vars

import (
	"context"
	"os"
	"strings"

	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Environ overrides the environment source. Nil means os.Environ.
	Environ func() []string
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("env_vars", m.OnRunEnvVars)
}

// OnRunEnvVars copies the process environment into the payload under the
// `key` argument (default "env"). A `prefix` argument keeps only matching
// variables and strips the prefix from their names.
func (m *Module) OnRunEnvVars(ctx context.Context, tc *task.Context, args map[string]any) error {
	environ := m.Environ
	if environ == nil {
		environ = os.Environ
	}
	key, ok := handlers.StringArg(args, "key")
	if !ok || key == "" {
		key = "env"
	}
	prefix, _ := handlers.StringArg(args, "prefix")

	envMap := make(map[string]string)
	for _, e := range environ() {
		name, value, found := strings.Cut(e, "=")
		if !found {
			continue
		}
		if prefix != "" {
			trimmed, hasPrefix := strings.CutPrefix(name, prefix)
			if !hasPrefix {
				continue
			}
			name = trimmed
		}
		envMap[name] = value
	}

	tc.Logger.Debug("Collected environment variables.", "count", len(envMap), "key", key)
	tc.Payload.Set(key, envMap)
	return nil
}

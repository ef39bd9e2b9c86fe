package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Out receives the printed lines. Nil means stdout.
	Out io.Writer
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("print", m.OnRunPrint)
}

// OnRunPrint prints the `message` argument followed by the sorted `values`
// map. With no arguments it prints the task name.
func (m *Module) OnRunPrint(ctx context.Context, tc *task.Context, args map[string]any) error {
	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	tc.Logger.Debug("Printing input.")

	msg, ok := handlers.StringArg(args, "message")
	if !ok {
		msg = tc.Name
	}
	if _, err := fmt.Fprintf(out, "[%s] %s\n", tc.Name, msg); err != nil {
		return err
	}

	values := handlers.StringMapArg(args, "values")
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "      %s = %q\n", k, values[k]); err != nil {
			return err
		}
	}
	return nil
}

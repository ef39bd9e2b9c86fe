// Package shell runs commands through the system shell.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Out and Err receive the command's output when it is not captured.
	// Nil means the process's own stdout and stderr.
	Out io.Writer
	Err io.Writer
	// Shell is the interpreter used with `-c`. Empty means "sh".
	Shell string
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("shell", m.OnRunShell)
}

// OnRunShell runs the `command` argument. Optional arguments:
//
//	dir      working directory
//	env      extra environment variables
//	capture  store trimmed stdout in the payload instead of printing it
//	key      payload key for captured output (default: the task name)
func (m *Module) OnRunShell(ctx context.Context, tc *task.Context, args map[string]any) error {
	command, ok := handlers.StringArg(args, "command")
	if !ok || strings.TrimSpace(command) == "" {
		return fmt.Errorf("shell: missing required argument 'command'")
	}
	sh := m.Shell
	if sh == "" {
		sh = "sh"
	}

	cmd := exec.CommandContext(ctx, sh, "-c", command)
	if dir, ok := handlers.StringArg(args, "dir"); ok {
		cmd.Dir = dir
	}
	if env := handlers.StringMapArg(args, "env"); len(env) > 0 {
		cmd.Env = append(os.Environ(), environ(env)...)
	}

	var stdout bytes.Buffer
	capture, _ := args["capture"].(bool)
	if capture {
		cmd.Stdout = &stdout
	} else {
		cmd.Stdout = orDefault(m.Out, os.Stdout)
	}
	cmd.Stderr = orDefault(m.Err, os.Stderr)

	tc.Logger.Info("Running shell command.", "command", command, "dir", cmd.Dir)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("shell: %q: %w", command, err)
	}

	if capture {
		key, _ := handlers.StringArg(args, "key")
		if key == "" {
			key = tc.Name
		}
		tc.Payload.Set(key, strings.TrimRight(stdout.String(), "\n"))
	}
	return nil
}

func environ(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func orDefault(w, def io.Writer) io.Writer {
	if w == nil {
		return def
	}
	return w
}

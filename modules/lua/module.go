// Package lua runs inline Lua scripts as task work. Scripts execute in a
// fresh interpreter with only the base, table, string and math libraries
// opened.
//
// The script sees these globals:
//
//	task_name              name of the running task
//	args                   the task's `args` table (without `script`/`file`)
//	payload_get(key)       reads a payload value
//	payload_set(key, val)  stores a payload value
//	log(msg)               writes an info record to the task logger
//
// Raising a Lua error fails the task.
package lua

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
	lua "github.com/yuin/gopher-lua"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.Register("lua", m.OnRunLua)
}

// OnRunLua runs the `script` argument, or the file named by `file`.
func (m *Module) OnRunLua(ctx context.Context, tc *task.Context, args map[string]any) error {
	script, hasScript := handlers.StringArg(args, "script")
	file, hasFile := handlers.StringArg(args, "file")
	switch {
	case hasScript && hasFile:
		return fmt.Errorf("lua: 'script' and 'file' are mutually exclusive")
	case hasFile:
		src, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("lua: reading %s: %w", file, err)
		}
		script = string(src)
	case !hasScript:
		return fmt.Errorf("lua: missing required argument 'script' or 'file'")
	}

	L := newState(ctx)
	defer L.Close()
	expose(L, tc, args)

	tc.Logger.Debug("Running lua script.", "bytes", len(script))
	if err := doWithRecovery(func() error { return L.DoString(script) }); err != nil {
		return fmt.Errorf("lua: %w", err)
	}
	return nil
}

func newState(ctx context.Context) *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	// Base opens file-loading functions the sandbox does not need.
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetContext(ctx)
	return L
}

func expose(L *lua.LState, tc *task.Context, args map[string]any) {
	scriptArgs := make(map[string]any, len(args))
	for k, v := range args {
		if k != "script" && k != "file" {
			scriptArgs[k] = v
		}
	}

	L.SetGlobal("task_name", lua.LString(tc.Name))
	L.SetGlobal("args", toLuaValue(L, scriptArgs))
	L.SetGlobal("payload_get", L.NewFunction(func(L *lua.LState) int {
		v, ok := tc.Payload.Get(L.CheckString(1))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLuaValue(L, v))
		return 1
	}))
	L.SetGlobal("payload_set", L.NewFunction(func(L *lua.LState) int {
		tc.Payload.Set(L.CheckString(1), toGoValue(L.Get(2)))
		return 0
	}))
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		tc.Logger.Info(L.CheckString(1), "source", "lua")
		return 0
	}))
}

func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

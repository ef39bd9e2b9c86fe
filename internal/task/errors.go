package task

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is to classify an error returned by the engine.
var (
	ErrNotRegistered   = errors.New("not registered")
	ErrNoGlobMatch     = errors.New("no glob match")
	ErrSyntax          = errors.New("syntax error")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCycle           = errors.New("dependency cycle")
)

// kindError carries a descriptive message while still matching its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// NotRegistered reports a task name that is absent from a registry.
func NotRegistered(name string) error {
	return &kindError{kind: ErrNotRegistered, msg: fmt.Sprintf("task %s is not registered", name)}
}

// GeneratorNotRegistered reports a generator path that could not be resolved
// from the given namespace.
func GeneratorNotRegistered(path, namespace string) error {
	return &kindError{
		kind: ErrNotRegistered,
		msg:  fmt.Sprintf("generator %s is not registered (from namespace %s)", path, namespace),
	}
}

// NoGlobMatch reports a wildcard pattern that matched no registered task.
func NoGlobMatch(pattern string) error {
	return &kindError{
		kind: ErrNoGlobMatch,
		msg:  fmt.Sprintf("glob pattern `%s` did not match any registered tasks", pattern),
	}
}

// Syntax reports a malformed task expression.
func Syntax(format string, args ...any) error {
	return &kindError{kind: ErrSyntax, msg: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports a malformed registration or execution call.
func InvalidArgument(format string, args ...any) error {
	return &kindError{kind: ErrInvalidArgument, msg: fmt.Sprintf(format, args...)}
}

// Cycle reports a dependency cycle detected before dispatch.
func Cycle(detail error) error {
	return &kindError{kind: ErrCycle, msg: detail.Error()}
}

// ExecutionError is returned when a task's work signals failure.
type ExecutionError struct {
	Task string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.Task, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

package task

import (
	"fmt"
	"runtime/debug"
)

// Future is anything that can be awaited for a single error result.
type Future interface {
	Wait() error
}

// Completion is the normalised handle for an asynchronous task run. It
// resolves exactly once, either with nil or with an error.
type Completion struct {
	done chan struct{}
	err  error
}

// Go runs fn on its own goroutine and returns a handle to its result. A
// panic inside fn is recovered and reported as the completion error.
func Go(fn func() error) *Completion {
	c := &Completion{done: make(chan struct{})}
	go func() {
		defer close(c.done)
		c.err = Safe(fn)
	}()
	return c
}

// Resolved returns an already settled completion.
func Resolved(err error) *Completion {
	c := &Completion{done: make(chan struct{}), err: err}
	close(c.done)
	return c
}

// Wait blocks until the completion settles and returns its error.
func (c *Completion) Wait() error {
	<-c.done
	return c.err
}

// Done is closed once the completion has settled.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Safe calls fn and converts a panic into an error.
func Safe(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}

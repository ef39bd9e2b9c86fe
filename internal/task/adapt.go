package task

import (
	"context"
	"io"
	"iter"
	"reflect"
	"sync"
)

// WorkFunc is the normalised shape of every task body.
type WorkFunc func(ctx context.Context, tc *Context) error

// DoneFunc is the error-first completion callback handed to callback-style work.
type DoneFunc func(err error)

// Callback receives the outcome of a build or generate call.
type Callback func(err error, payload map[string]any)

// Noop is the work used when a task is registered without a body.
func Noop(context.Context, *Context) error { return nil }

// Adapt converts any supported work function shape into a WorkFunc.
func Adapt(fn any) (WorkFunc, error) {
	switch f := fn.(type) {
	case nil:
		return Noop, nil
	case WorkFunc:
		return f, nil

	// Synchronous bodies.
	case func(context.Context, *Context) error:
		return f, nil
	case func(*Context) error:
		return func(_ context.Context, tc *Context) error { return f(tc) }, nil
	case func() error:
		return func(context.Context, *Context) error { return f() }, nil
	case func(*Context):
		return func(_ context.Context, tc *Context) error { f(tc); return nil }, nil
	case func():
		return func(context.Context, *Context) error { f(); return nil }, nil

	// Error-first callbacks.
	case func(context.Context, *Context, DoneFunc):
		return fromCallback(f), nil
	case func(*Context, DoneFunc):
		return fromCallback(func(_ context.Context, tc *Context, done DoneFunc) { f(tc, done) }), nil
	case func(*Context, func(error)):
		return fromCallback(func(_ context.Context, tc *Context, done DoneFunc) { f(tc, done) }), nil
	case func(DoneFunc):
		return fromCallback(func(_ context.Context, _ *Context, done DoneFunc) { f(done) }), nil
	case func(func(error)):
		return fromCallback(func(_ context.Context, _ *Context, done DoneFunc) { f(done) }), nil

	// Futures.
	case func(context.Context, *Context) Future:
		return fromFuture(f), nil
	case func(*Context) Future:
		return fromFuture(func(_ context.Context, tc *Context) Future { return f(tc) }), nil
	case func() Future:
		return fromFuture(func(context.Context, *Context) Future { return f() }), nil
	case func(context.Context, *Context) *Completion:
		return fromFuture(func(ctx context.Context, tc *Context) Future { return optionalFuture(f(ctx, tc)) }), nil
	case func(context.Context, *Context) <-chan error:
		return fromChannel(f), nil
	case func(*Context) <-chan error:
		return fromChannel(func(_ context.Context, tc *Context) <-chan error { return f(tc) }), nil
	case func() <-chan error:
		return fromChannel(func(context.Context, *Context) <-chan error { return f() }), nil

	// Streams.
	case func(context.Context, *Context) io.Reader:
		return fromStream(f), nil
	case func(*Context) io.Reader:
		return fromStream(func(_ context.Context, tc *Context) io.Reader { return f(tc) }), nil
	case func(context.Context, *Context) io.ReadCloser:
		return fromStream(func(ctx context.Context, tc *Context) io.Reader { return optionalReader(f(ctx, tc)) }), nil

	// Lazy generators.
	case func(context.Context, *Context) iter.Seq[error]:
		return fromSeq(f), nil
	case func(*Context) iter.Seq[error]:
		return fromSeq(func(_ context.Context, tc *Context) iter.Seq[error] { return f(tc) }), nil
	case iter.Seq[error]:
		return fromSeq(func(context.Context, *Context) iter.Seq[error] { return f }), nil
	}
	return nil, InvalidArgument("unsupported work function type %T", fn)
}

// IsWork reports whether v is a function that should be treated as task
// work rather than as a completion callback.
func IsWork(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := AsCallback(v); ok {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

// AsCallback returns v as a Callback when it has the callback signature.
func AsCallback(v any) (Callback, bool) {
	switch cb := v.(type) {
	case Callback:
		return cb, cb != nil
	case func(error, map[string]any):
		return cb, cb != nil
	}
	return nil, false
}

func fromCallback(f func(context.Context, *Context, DoneFunc)) WorkFunc {
	return func(ctx context.Context, tc *Context) error {
		result := make(chan error, 1)
		var once sync.Once
		done := func(err error) {
			once.Do(func() { result <- err })
		}
		if err := Safe(func() error { f(ctx, tc, done); return nil }); err != nil {
			return err
		}
		return <-result
	}
}

func fromFuture(f func(context.Context, *Context) Future) WorkFunc {
	return func(ctx context.Context, tc *Context) error {
		fut := f(ctx, tc)
		if fut == nil {
			return nil
		}
		return fut.Wait()
	}
}

func fromChannel(f func(context.Context, *Context) <-chan error) WorkFunc {
	return func(ctx context.Context, tc *Context) error {
		ch := f(ctx, tc)
		if ch == nil {
			return nil
		}
		// A closed channel without a value counts as success.
		return <-ch
	}
}

func fromStream(f func(context.Context, *Context) io.Reader) WorkFunc {
	return func(ctx context.Context, tc *Context) error {
		r := f(ctx, tc)
		if r == nil {
			return nil
		}
		_, err := io.Copy(io.Discard, r)
		if c, ok := r.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}
}

func fromSeq(f func(context.Context, *Context) iter.Seq[error]) WorkFunc {
	return func(ctx context.Context, tc *Context) error {
		seq := f(ctx, tc)
		if seq == nil {
			return nil
		}
		for err := range seq {
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// optionalFuture keeps a nil *Completion from becoming a non-nil interface.
func optionalFuture(c *Completion) Future {
	if c == nil {
		return nil
	}
	return c
}

func optionalReader(r io.ReadCloser) io.Reader {
	if r == nil {
		return nil
	}
	return r
}

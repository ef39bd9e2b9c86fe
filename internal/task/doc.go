// Package task defines a single named unit of work and its lifecycle.
//
// A Task carries its callback, the names of the tasks it depends on and its
// own options. Running a task moves it through the statuses
//
//	registered -> preparing -> starting -> finished | errored
//
// and every transition is reported through a Notifier, which the owning
// registry translates into lifecycle events.
//
// Work functions may signal completion in several ways: returning an error,
// calling an error-first DoneFunc, returning a Future or a channel, returning
// an io.Reader that is drained until EOF, or returning an iter.Seq[error] that
// completes once exhausted. Adapt normalises all of them into a WorkFunc, and
// Run wraps the invocation in a Completion handle.
package task

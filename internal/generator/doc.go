// Package generator implements the scope tree. A Generator owns a task
// registry and an event bus, and holds named child generators behind
// factories that are instantiated lazily. Every child's task, error and
// build events are re-published on its parent, so the root observes the
// whole tree.
package generator

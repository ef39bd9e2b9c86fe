// Package registry owns the flat name -> task mapping of one scope and
// composes task runs.
//
// Series runs an expanded task list strictly in order and stops at the first
// failure. Parallel dispatches every task at once and waits for all of them
// to settle before reporting the first error; siblings are never cancelled.
// In both flows a task resolves its own dependencies, in series or in
// parallel according to its "flow" option, before its work is invoked.
//
// Before anything is dispatched the dependency closure of the requested
// tasks is walked into a dag.Graph, so unknown names, empty globs and cycles
// are reported without any task leaving the registered state.
package registry

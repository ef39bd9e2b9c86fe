// Package expr turns the loose argument lists accepted by Generate into
// routing entries: which scope runs which tasks.
//
// String arguments are joined with spaces and split back into whitespace
// separated units. A unit is either a comma separated list of names
// interpreted against the current scope ("lint,test"), or a scope path and
// a list separated by a single colon ("docs.api:build,serve"). A bare name
// that is not a task but is a child scope is promoted to that scope's
// "default" task.
package expr

import (
	"strings"

	"github.com/vk/taskgrid/internal/namespace"
	"github.com/vk/taskgrid/internal/task"
)

// DefaultName is both the fallback task name and the fallback scope alias.
const DefaultName = "default"

// Scope is the view of a generator the parser needs.
type Scope interface {
	// Name is the scope's alias.
	Name() string
	// HasTask reports whether name can run as a task of this scope right now.
	HasTask(name string) bool
	// HasGenerator reports whether name is a registered child scope. It must
	// not instantiate anything.
	HasGenerator(name string) bool
	// Options are the ambient options merged under caller options.
	Options() task.Options
	// DefaultScope returns the nearest scope aliased "default", unless that
	// is the receiver itself.
	DefaultScope() (Scope, bool)
}

// Route addresses a list of tasks in one scope. An empty Scope is the scope
// the expression was parsed against.
type Route struct {
	Scope  string
	Tasks  []string
	Inline []any
}

// Expression is the parsed form of a Generate call.
type Expression struct {
	Options  task.Options
	Routes   []Route
	Callback task.Callback
}

// Parse parses args against scope. With no task arguments at all the result
// is a single route to the "default" task of the "default" scope.
func Parse(scope Scope, args ...any) (*Expression, error) {
	e := &Expression{Options: scope.Options().Clone()}

	var (
		tokens  []string
		inline  []any
		hasOpts bool
	)
	for _, arg := range flatten(args) {
		switch v := arg.(type) {
		case string:
			tokens = append(tokens, v)
		case task.Options:
			if hasOpts {
				return nil, task.InvalidArgument("expected at most one options object")
			}
			hasOpts = true
			e.Options = e.Options.Merge(v)
		default:
			if cb, ok := task.AsCallback(v); ok {
				if e.Callback != nil {
					return nil, task.InvalidArgument("expected at most one callback")
				}
				e.Callback = cb
				continue
			}
			if !task.IsWork(v) {
				return nil, task.InvalidArgument("unsupported task expression of type %T", v)
			}
			inline = append(inline, v)
		}
	}

	units := strings.Fields(strings.Join(tokens, " "))
	if len(units) == 0 && len(inline) == 0 {
		e.Routes = []Route{{Scope: DefaultName, Tasks: []string{DefaultName}}}
		return e, nil
	}

	p := &parser{scope: scope}
	for _, unit := range units {
		if err := p.unit(unit); err != nil {
			return nil, err
		}
	}
	if len(inline) > 0 {
		p.routes = append(p.routes, Route{Inline: inline})
	}
	e.Routes = p.routes
	return e, nil
}

type parser struct {
	scope  Scope
	routes []Route
}

func (p *parser) unit(unit string) error {
	parts := strings.Split(unit, ":")
	switch len(parts) {
	case 1:
		p.names(splitList(parts[0]))
	case 2:
		path := parts[0]
		if path != "" {
			if _, err := namespace.Parse(path); err != nil {
				return task.Syntax("invalid scope in task expression %q: %v", unit, err)
			}
		}
		names := splitList(parts[1])
		if len(names) == 0 {
			names = []string{DefaultName}
		}
		p.add(path, names...)
	default:
		return task.Syntax("invalid task expression %q: spaces must be used to separate multiple generator names", unit)
	}
	return nil
}

// names routes a scope-less list. Each name resolves, in order, to a task of
// the current scope, a child scope of the current scope, or a task or child
// scope of the nearest "default" scope. Anything else stays on the current
// scope and fails when it is built.
func (p *parser) names(list []string) {
	for _, name := range list {
		switch {
		case strings.Contains(name, "*") || p.scope.HasTask(name):
			p.add("", name)
		case p.scope.HasGenerator(name):
			p.add(childPath(p.scope, name), DefaultName)
		default:
			if scope, tasks, ok := p.fromDefault(name); ok {
				p.add(scope, tasks...)
				continue
			}
			p.add("", name)
		}
	}
}

func (p *parser) fromDefault(name string) (string, []string, bool) {
	def, ok := p.scope.DefaultScope()
	if !ok {
		return "", nil, false
	}
	switch {
	case def.HasTask(name):
		return DefaultName, []string{name}, true
	case def.HasGenerator(name):
		return childPath(def, name), []string{DefaultName}, true
	}
	return "", nil, false
}

// add appends names to the last route when it targets the same scope.
func (p *parser) add(scope string, names ...string) {
	if n := len(p.routes); n > 0 {
		last := &p.routes[n-1]
		if last.Scope == scope && last.Inline == nil {
			last.Tasks = append(last.Tasks, names...)
			return
		}
	}
	p.routes = append(p.routes, Route{Scope: scope, Tasks: names})
}

// childPath addresses a child of scope. Children of a scope aliased
// "default" keep the prefix so the path resolves the same way from the
// caller.
func childPath(scope Scope, name string) string {
	if scope.Name() == DefaultName {
		return DefaultName + "." + name
	}
	return name
}

func splitList(s string) []string {
	var out []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func flatten(args []any) []any {
	out := make([]any, 0, len(args))
	for _, arg := range args {
		switch v := arg.(type) {
		case []any:
			out = append(out, flatten(v)...)
		case []string:
			for _, s := range v {
				out = append(out, s)
			}
		case nil:
		default:
			out = append(out, v)
		}
	}
	return out
}

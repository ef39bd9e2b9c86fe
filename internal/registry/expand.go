package registry

import (
	"strings"

	"github.com/gobwas/glob"
	"github.com/vk/taskgrid/internal/task"
)

// Expand resolves task expressions into concrete task names. Strings pass
// through unless they contain '*', in which case they are matched against
// the registered names in registration order and must match at least one.
// Functions are registered on the fly: as "default" when no default task
// exists yet, otherwise under a generated name.
func (r *Registry) Expand(args ...any) ([]string, error) {
	var names []string
	for _, arg := range flatten(args) {
		switch v := arg.(type) {
		case string:
			if !isGlob(v) {
				names = append(names, v)
				continue
			}
			matches, err := r.match(v)
			if err != nil {
				return nil, err
			}
			names = append(names, matches...)
		case task.Options:
			// Options are consumed by the caller.
		default:
			if _, ok := task.AsCallback(v); ok {
				continue
			}
			if !task.IsWork(v) {
				return nil, task.InvalidArgument("cannot expand task expression of type %T", v)
			}
			name := "default"
			if r.Has(name) {
				name = r.nextAnonymousName()
			}
			if _, err := r.registerInline(name, v); err != nil {
				return nil, err
			}
			names = append(names, name)
		}
	}
	return names, nil
}

func (r *Registry) match(pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, task.Syntax("invalid glob pattern `%s`: %v", pattern, err)
	}
	var matches []string
	for _, name := range r.Names() {
		if g.Match(name) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return nil, task.NoGlobMatch(pattern)
	}
	return matches, nil
}

func isGlob(s string) bool {
	return strings.Contains(s, "*")
}

// flatten unrolls nested []any and []string arguments.
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

// splitArgs separates options and the completion callback from task
// expressions. Multiple option objects are merged left to right.
func splitArgs(args []any) (task.Options, task.Callback, []any, error) {
	opts := task.Options{}
	var (
		cb    task.Callback
		exprs []any
	)
	for _, arg := range flatten(args) {
		if o, ok := arg.(task.Options); ok {
			opts = opts.Merge(o)
			continue
		}
		if c, ok := task.AsCallback(arg); ok {
			if cb != nil {
				return nil, nil, nil, task.InvalidArgument("expected at most one callback")
			}
			cb = c
			continue
		}
		exprs = append(exprs, arg)
	}
	return opts, cb, exprs, nil
}

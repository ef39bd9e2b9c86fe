package generator

import (
	"github.com/vk/taskgrid/internal/expr"
	"github.com/vk/taskgrid/internal/task"
)

type lookupMode int

const (
	// check reports whether the final segment is registered. Nothing is
	// instantiated and intermediate scopes must already exist.
	check lookupMode = iota
	// find returns the final segment only if it is already instantiated.
	find
	// get instantiates scopes as needed and invokes the final factory.
	get
)

// GetGenerator resolves a dotted path of aliases and returns a live
// instance, instantiating each segment as needed. Paths are tried relative
// to this scope, then relative to each ancestor, then as an absolute
// namespace.
func (g *Generator) GetGenerator(path string) (*Generator, error) {
	found, ok, err := g.lookup(path, get)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, task.GeneratorNotRegistered(path, g.Namespace())
	}
	return found, nil
}

// FindGenerator resolves path like GetGenerator but never instantiates a
// factory. It returns nil when the scope is unknown or not yet created.
func (g *Generator) FindGenerator(path string) *Generator {
	found, ok, _ := g.lookup(path, find)
	if !ok {
		return nil
	}
	return found
}

// HasGenerator reports whether path names a registered scope, instantiated
// or not.
func (g *Generator) HasGenerator(path string) bool {
	_, ok, _ := g.lookup(path, check)
	return ok
}

func (g *Generator) lookup(path string, mode lookupMode) (*Generator, bool, error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, false, nil
	}

	for cur := g; cur != nil; cur = cur.Parent() {
		if found, ok, err := walk(cur, segs, mode); ok || err != nil {
			return found, ok, err
		}
	}

	base := g.Base()
	if len(segs) > 1 && segs[0] == base.Alias() {
		if found, ok, err := walk(base, segs[1:], mode); ok || err != nil {
			return found, ok, err
		}
	}

	base.mu.RLock()
	f := base.namespaces[path]
	base.mu.RUnlock()
	if f == nil {
		return nil, false, nil
	}
	return resolveFactory(f, mode)
}

// walk follows segs through the children of from.
func walk(from *Generator, segs []string, mode lookupMode) (*Generator, bool, error) {
	cur := from
	for i, seg := range segs {
		f := cur.child(seg)
		if f == nil {
			return nil, false, nil
		}
		if i == len(segs)-1 {
			return resolveFactory(f, mode)
		}

		next := f.cached()
		if next == nil {
			if mode != get {
				return nil, false, nil
			}
			var err error
			if next, err = f.instantiate(); err != nil {
				return nil, false, err
			}
		}
		cur = next
	}
	return cur, true, nil
}

func resolveFactory(f *Factory, mode lookupMode) (*Generator, bool, error) {
	switch mode {
	case check:
		return f.cached(), true, nil
	case find:
		inst := f.cached()
		return inst, inst != nil, nil
	}
	inst, err := f.invoke()
	if err != nil {
		return nil, false, err
	}
	return inst, true, nil
}

// resolveScope returns the generator a routing entry targets. The empty path
// is this scope; "default" falls back to this scope when no default
// generator is reachable.
func (g *Generator) resolveScope(path string) (*Generator, error) {
	if path == "" {
		return g, nil
	}
	if path == expr.DefaultName && !g.HasGenerator(path) {
		return g, nil
	}
	return g.GetGenerator(path)
}

// nearestDefault returns the closest generator aliased "default" among the
// children of this scope and its ancestors, unless that is g itself.
func (g *Generator) nearestDefault() (*Generator, bool) {
	for cur := g; cur != nil; cur = cur.Parent() {
		f := cur.child(expr.DefaultName)
		if f == nil {
			continue
		}
		inst, err := f.instantiate()
		if err != nil || inst == g {
			return nil, false
		}
		return inst, true
	}
	return nil, false
}

// scopeView adapts a Generator to the expression parser.
type scopeView struct{ g *Generator }

func (v scopeView) Name() string { return v.g.Alias() }

func (v scopeView) HasTask(name string) bool {
	return v.g.tasks.Has(name) && !v.g.tasks.IsRunning(name)
}

func (v scopeView) HasGenerator(name string) bool {
	_, ok, _ := walk(v.g, splitPath(name), check)
	return ok
}

func (v scopeView) Options() task.Options { return v.g.Options() }

func (v scopeView) DefaultScope() (expr.Scope, bool) {
	def, ok := v.g.nearestDefault()
	if !ok {
		return nil, false
	}
	return scopeView{def}, true
}

package generator

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/vk/taskgrid/internal/event"
	"github.com/vk/taskgrid/internal/namespace"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// bubbled are the kinds a parent re-publishes from its children.
var bubbled = []event.Kind{event.KindError, event.KindTask, event.KindBuild}

// Generator is one node of the scope tree.
type Generator struct {
	name    string
	options task.Options
	events  *event.Bus
	tasks   *registry.Registry

	mu         sync.RWMutex
	alias      string
	parent     *Generator
	children   map[string]*Factory
	childOrder []string
	// namespaces is only populated on the root and indexes every registered
	// factory by its full dotted namespace.
	namespaces map[string]*Factory
}

// New creates a root generator. An empty name yields the alias "generate".
// A toAlias function in opts overrides the default prefix stripping.
func New(name string, opts task.Options) *Generator {
	alias := namespace.DefaultRoot
	if name != "" {
		alias = namespace.Alias(name, aliasFunc(opts))
	}
	return newGenerator(name, alias, nil, opts)
}

func newGenerator(name, alias string, parent *Generator, opts task.Options) *Generator {
	g := &Generator{
		name:       name,
		alias:      alias,
		parent:     parent,
		options:    opts.Clone(),
		events:     event.NewBus(nil),
		children:   make(map[string]*Factory),
		namespaces: make(map[string]*Factory),
	}
	g.tasks = registry.New(g.Namespace(), g.events)
	return g
}

// Name returns the name the generator was created or registered with.
func (g *Generator) Name() string { return g.name }

// Alias returns the short name used in namespaces and scope paths.
func (g *Generator) Alias() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.alias
}

// Parent returns the enclosing generator, or nil for a root.
func (g *Generator) Parent() *Generator {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.parent
}

// Namespace returns the dotted path from the root to this generator.
func (g *Generator) Namespace() string {
	if p := g.Parent(); p != nil {
		return p.Namespace() + "." + g.Alias()
	}
	return g.Alias()
}

// Base returns the root of the tree.
func (g *Generator) Base() *Generator {
	for {
		p := g.Parent()
		if p == nil {
			return g
		}
		g = p
	}
}

// Options returns the ambient options of this scope, inherited from its
// ancestors and overlaid with its own.
func (g *Generator) Options() task.Options {
	if p := g.Parent(); p != nil {
		return p.Options().Merge(g.options)
	}
	return g.options.Clone()
}

// Registry exposes the task registry owned by this scope.
func (g *Generator) Registry() *registry.Registry { return g.tasks }

// Events exposes the event bus of this scope.
func (g *Generator) Events() *event.Bus { return g.events }

// On subscribes handler to events of kind on this scope. Events of
// descendants bubble up, so a listener on the root sees the whole tree.
func (g *Generator) On(kind event.Kind, handler event.Handler) string {
	return g.events.Subscribe(kind, handler)
}

// Task registers a task on this scope. See registry.Registry.Register.
func (g *Generator) Task(name string, args ...any) (*task.Task, error) {
	return g.tasks.Register(name, args...)
}

// Tasks returns this scope's task names in registration order.
func (g *Generator) Tasks() []string { return g.tasks.Names() }

// Namespaces returns the full namespace of every generator registered
// anywhere in the tree, sorted.
func (g *Generator) Namespaces() []string {
	base := g.Base()
	base.mu.RLock()
	defer base.mu.RUnlock()
	return slices.Sorted(maps.Keys(base.namespaces))
}

// Register adds a child scope. The remaining arguments are an optional
// task.Options followed by either a factory function or an already built
// *Generator. The child is keyed by its alias, derived with the first
// toAlias found in the registration options, the instance's options, or
// this scope's ambient options.
func (g *Generator) Register(name string, args ...any) (*Factory, error) {
	if name == "" {
		return nil, task.InvalidArgument("expected generator name to be a non-empty string")
	}

	var (
		opts     task.Options
		fn       FactoryFunc
		instance *Generator
	)
	for _, arg := range args {
		switch v := arg.(type) {
		case task.Options:
			if opts != nil {
				return nil, task.InvalidArgument("generator %s: expected at most one options object", name)
			}
			opts = v
		case FactoryFunc:
			fn = v
		case func(*Generator) error:
			fn = v
		case func(*Generator):
			fn = func(child *Generator) error { v(child); return nil }
		case *Generator:
			instance = v
		default:
			return nil, task.InvalidArgument("generator %s: unsupported argument of type %T", name, v)
		}
	}
	if (fn == nil) == (instance == nil) {
		return nil, task.InvalidArgument("generator %s: expected exactly one factory function or instance", name)
	}

	fns := []namespace.AliasFunc{aliasFunc(opts)}
	if instance != nil {
		fns = append(fns, aliasFunc(instance.options))
	}
	fns = append(fns, aliasFunc(g.Options()))
	alias := namespace.Alias(name, fns...)
	if p, err := namespace.Parse(alias); err != nil || len(p) != 1 {
		return nil, task.InvalidArgument("generator %s: alias %q is not a valid namespace segment", name, alias)
	}

	f := &Factory{name: name, alias: alias, options: opts.Clone(), owner: g, fn: fn}
	if instance != nil {
		if instance == g || instance.Parent() != nil {
			return nil, task.InvalidArgument("generator %s: instance already belongs to a tree", name)
		}
		instance.mu.Lock()
		instance.alias = alias
		instance.mu.Unlock()
		g.adopt(instance)
		f.instance = instance
		f.invocations = 1
	}

	g.mu.Lock()
	if _, exists := g.children[alias]; !exists {
		g.childOrder = append(g.childOrder, alias)
	}
	g.children[alias] = f
	g.mu.Unlock()

	g.Base().index(g.Namespace()+"."+alias, f)
	if instance != nil {
		instance.reindex()
	}
	return f, nil
}

// Children returns the aliases of the direct child scopes in registration
// order.
func (g *Generator) Children() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.childOrder)
}

func (g *Generator) child(alias string) *Factory {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.children[alias]
}

func (g *Generator) index(ns string, f *Factory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.namespaces[ns] = f
}

// adopt attaches child below g and forwards its events to g.
func (g *Generator) adopt(child *Generator) {
	child.mu.Lock()
	child.parent = g
	child.mu.Unlock()
	child.tasks.SetScope(child.Namespace())
	g.events.Forward(child.events, bubbled...)
}

// reindex moves the factories an adopted instance collected while it was a
// root into the tree it now belongs to.
func (g *Generator) reindex() {
	g.mu.Lock()
	g.namespaces = make(map[string]*Factory)
	children := make([]*Factory, 0, len(g.children))
	for _, alias := range g.childOrder {
		children = append(children, g.children[alias])
	}
	g.mu.Unlock()

	base := g.Base()
	for _, f := range children {
		base.index(g.Namespace()+"."+f.alias, f)
		if inst := f.cached(); inst != nil {
			inst.tasks.SetScope(inst.Namespace())
			inst.reindex()
		}
	}
}

func (g *Generator) announce(child *Generator, invocations int) {
	g.events.Publish(event.Event{
		Kind:  event.KindGenerator,
		Scope: g.Namespace(),
		Generator: &event.GeneratorInfo{
			Name:        child.Name(),
			Alias:       child.Alias(),
			Namespace:   child.Namespace(),
			Invocations: invocations,
		},
	})
}

func aliasFunc(opts task.Options) namespace.AliasFunc {
	if fn, ok := opts.ToAlias(); ok {
		return fn
	}
	return nil
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

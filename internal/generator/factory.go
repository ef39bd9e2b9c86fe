package generator

import (
	"fmt"
	"sync"

	"github.com/vk/taskgrid/internal/task"
)

// FactoryFunc populates a freshly created child generator.
type FactoryFunc func(g *Generator) error

// Factory is the registry entry behind a child scope.
type Factory struct {
	name    string
	alias   string
	options task.Options
	owner   *Generator
	fn      FactoryFunc

	mu       sync.Mutex
	instance *Generator
	// pending is the child a memoised factory is still populating. Lookups
	// made from inside fn resolve to it instead of instantiating again.
	pending     *Generator
	invocations int
}

// Name returns the name the factory was registered under.
func (f *Factory) Name() string { return f.name }

// Alias returns the derived alias.
func (f *Factory) Alias() string { return f.alias }

// Invocations returns how many times the factory function has run.
func (f *Factory) Invocations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invocations
}

// cached returns the current instance without creating one. While a memoised
// factory runs, the instance it is populating is returned.
func (f *Factory) cached() *Generator {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.instance != nil {
		return f.instance
	}
	return f.pending
}

// instantiate returns the cached instance, creating it if needed.
func (f *Factory) instantiate() (*Generator, error) {
	if g := f.cached(); g != nil {
		return g, nil
	}
	return f.invoke()
}

// invoke returns a live instance. Memoised factories run once; factories
// registered with once=false create a new instance on every call. fn runs
// without f.mu held, so it may look up its own scope.
func (f *Factory) invoke() (*Generator, error) {
	memoised := f.fn == nil || f.options.Once()

	f.mu.Lock()
	if memoised && f.instance != nil {
		g := f.instance
		f.mu.Unlock()
		return g, nil
	}
	if memoised && f.pending != nil {
		g := f.pending
		f.mu.Unlock()
		return g, nil
	}
	child := newGenerator(f.name, f.alias, f.owner, f.options)
	f.invocations++
	n := f.invocations
	if memoised {
		f.pending = child
	}
	f.mu.Unlock()

	f.owner.adopt(child)
	err := task.Safe(func() error { return f.fn(child) })

	f.mu.Lock()
	if memoised {
		f.pending = nil
	}
	if err == nil {
		f.instance = child
	}
	f.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("instantiating generator %s: %w", child.Namespace(), err)
	}
	f.owner.announce(child, n)
	return child, nil
}

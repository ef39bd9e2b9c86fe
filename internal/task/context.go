package task

import (
	"log/slog"
	"maps"
	"sync"
)

// Context is the explicit value handed to a task's work function.
type Context struct {
	// Name is the name of the running task.
	Name string
	// Options are the task's stored options merged with call-time options.
	Options Options
	// Payload is the owning registry's accumulator. It is safe for
	// concurrent use by tasks of the same parallel batch.
	Payload *Payload
	// Logger is scoped to the running task.
	Logger *slog.Logger
}

// Payload is a concurrency-safe scratch map populated by task callbacks and
// returned by a build.
type Payload struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewPayload creates an empty payload.
func NewPayload() *Payload {
	return &Payload{data: make(map[string]any)}
}

// Set stores value under key.
func (p *Payload) Set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = value
}

// Get returns the value stored under key.
func (p *Payload) Get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.data[key]
	return v, ok
}

// Update atomically replaces the value under key with fn(old).
func (p *Payload) Update(key string, fn func(old any) any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = fn(p.data[key])
}

// Snapshot returns a copy of the current contents.
func (p *Payload) Snapshot() map[string]any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.data)
}

// Len returns the number of stored keys.
func (p *Payload) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.data)
}

package event

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

type subscription struct {
	id      string
	kind    Kind
	handler Handler
	forward bool
}

// Bus is a synchronous pub-sub event bus.
type Bus struct {
	mu            sync.RWMutex
	subscriptions map[Kind][]subscription
	nextID        atomic.Uint64
	logger        *slog.Logger
}

const wildcard Kind = "*"

// NewBus creates a new event bus. A nil logger falls back to slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscriptions: make(map[Kind][]subscription),
		logger:        logger,
	}
}

// Subscribe registers a handler for one kind of event and returns an id for
// Unsubscribe.
func (b *Bus) Subscribe(kind Kind, handler Handler) string {
	return b.subscribe(kind, handler, false)
}

func (b *Bus) subscribe(kind Kind, handler Handler, forward bool) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := fmt.Sprintf("sub-%d", b.nextID.Add(1))
	b.subscriptions[kind] = append(b.subscriptions[kind], subscription{id: id, kind: kind, handler: handler, forward: forward})
	return id
}

// SubscribeAll registers a handler for every event kind.
func (b *Bus) SubscribeAll(handler Handler) string {
	return b.Subscribe(wildcard, handler)
}

// Unsubscribe removes a subscription by id.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, subs := range b.subscriptions {
		for i, sub := range subs {
			if sub.id == id {
				b.subscriptions[kind] = append(subs[:i:i], subs[i+1:]...)
				return true
			}
		}
	}
	return false
}

// Publish dispatches an event to the handlers of its kind, then to wildcard
// handlers, and finally to forwarding subscriptions so that local listeners
// always observe an event before any ancestor does. A panicking handler is
// logged and does not stop delivery.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	specific := b.subscriptions[e.Kind]
	all := b.subscriptions[wildcard]
	local := make([]subscription, 0, len(specific)+len(all))
	var forwards []subscription
	for _, subs := range [][]subscription{specific, all} {
		for _, sub := range subs {
			if sub.forward {
				forwards = append(forwards, sub)
			} else {
				local = append(local, sub)
			}
		}
	}
	b.mu.RUnlock()

	for _, sub := range local {
		b.safeCall(sub.handler, e)
	}
	for _, sub := range forwards {
		b.safeCall(sub.handler, e)
	}
}

// Forward re-publishes every event of the given kinds from src on b and
// returns the subscription ids created on src.
func (b *Bus) Forward(src *Bus, kinds ...Kind) []string {
	ids := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		ids = append(ids, src.subscribe(kind, b.Publish, true))
	}
	return ids
}

// SubscriptionCount returns the number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, subs := range b.subscriptions {
		count += len(subs)
	}
	return count
}

func (b *Bus) safeCall(handler Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked.", "kind", e.Kind, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	handler(e)
}

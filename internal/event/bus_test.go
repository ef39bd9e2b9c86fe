package event

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/ctxlog"
)

func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus(ctxlog.Discard())
	var got []string

	bus.SubscribeAll(func(Event) { got = append(got, "all") })
	bus.Subscribe(KindTask, func(Event) { got = append(got, "task-1") })
	bus.Subscribe(KindTask, func(Event) { got = append(got, "task-2") })
	bus.Subscribe(KindError, func(Event) { got = append(got, "error") })

	bus.Publish(Event{Kind: KindTask})
	assert.Equal(t, []string{"task-1", "task-2", "all"}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(ctxlog.Discard())
	calls := 0
	id := bus.Subscribe(KindBuild, func(Event) { calls++ })
	require.Equal(t, 1, bus.SubscriptionCount())

	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	bus.Publish(Event{Kind: KindBuild})
	assert.Zero(t, calls)
	assert.Zero(t, bus.SubscriptionCount())
}

func TestBus_PanickingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(ctxlog.Discard())
	delivered := false
	bus.Subscribe(KindError, func(Event) { panic("boom") })
	bus.Subscribe(KindError, func(Event) { delivered = true })

	assert.NotPanics(t, func() { bus.Publish(Event{Kind: KindError, Err: errors.New("x")}) })
	assert.True(t, delivered)
}

func TestBus_ForwardChain(t *testing.T) {
	root := NewBus(ctxlog.Discard())
	mid := NewBus(ctxlog.Discard())
	leaf := NewBus(ctxlog.Discard())

	mid.Forward(leaf, KindError)
	root.Forward(mid, KindError)

	var order []string
	leaf.Subscribe(KindError, func(Event) { order = append(order, "leaf") })
	mid.Subscribe(KindError, func(Event) { order = append(order, "mid") })
	root.Subscribe(KindError, func(Event) { order = append(order, "root") })

	leaf.Publish(Event{Kind: KindError, Scope: "root.mid.leaf"})

	// Forwarders were subscribed before the listeners but still run last.
	assert.Equal(t, []string{"leaf", "mid", "root"}, order)

	leaf.Publish(Event{Kind: KindTask})
	assert.Len(t, order, 3, "task events were not forwarded")
}

// Package bus is the typed publish/subscribe seam between the round engine
// and its collaborators (transport fan-out, bookkeeping, admin tooling).
package bus

import (
	"crash_backend/internal/model"
	"sync"
)

// Handler receives a published event. Payloads are copies; handlers must not
// assume they run on any particular goroutine.
type Handler func(event model.Event)

// Bus routes events to per-kind subscribers and catch-all subscribers.
// For a single emission, per-kind handlers run first in subscription order,
// then catch-all handlers in subscription order. Delivery is synchronous and
// not durable.
type Bus struct {
	mu   sync.RWMutex
	subs map[model.EventKind][]Handler
	all  []Handler
}

func New() *Bus {
	return &Bus{
		subs: make(map[model.EventKind][]Handler),
	}
}

// Subscribe registers a handler for one event kind.
func (b *Bus) Subscribe(kind model.EventKind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[kind] = append(b.subs[kind], h)
}

// SubscribeAll registers a handler for every event kind.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish delivers the event to all matching handlers.
func (b *Bus) Publish(event model.Event) {
	b.mu.RLock()
	kindSubs := b.subs[event.Kind()]
	allSubs := b.all
	b.mu.RUnlock()

	for _, h := range kindSubs {
		h(event)
	}
	for _, h := range allSubs {
		h(event)
	}
}

package content

import (
	"context"
	"sync"
)

// Hub is an in-memory feed. Publish delivers synchronously on the caller's
// goroutine to every subscriber.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Tweet)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Tweet))}
}

// Subscribe registers fn.
func (h *Hub) Subscribe(fn func(Tweet)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers t to all current subscribers.
func (h *Hub) Publish(_ context.Context, t Tweet) error {
	h.mu.RLock()
	subs := make([]func(Tweet), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(t)
	}
	return nil
}

var (
	_ Feed      = (*Hub)(nil)
	_ Publisher = (*Hub)(nil)
)

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package notify delivers storage change notifications across consumers of
// the same logical store. In-process listeners subscribe to a Hub; separate
// processes sharing a file-backed store use Watcher to observe external
// writes. Listeners re-read affected keys from their own engine rather than
// trusting the event payload, which defends against encoding drift between
// writers.
package notify

import "sync"

// Event describes one storage change. A nil NewValue signals deletion.
// Key is the physical (namespaced) storage key. Source identifies the
// writer, typically the engine's scope and namespace.
type Event struct {
	Key      string
	NewValue *string
	Source   string
}

// Notifier dispatches storage change events. Dispatch must not block.
type Notifier interface {
	Dispatch(Event)
}

// Hub fans events out to in-process subscribers. Slow subscribers have
// events dropped rather than blocking writers; a dropped event is safe
// because listeners re-read the key on receipt anyway.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener and returns its event channel plus a
// cancel func. The channel is buffered; it is closed by the cancel func.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, 16)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Dispatch delivers ev to every subscriber without blocking.
func (h *Hub) Dispatch(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

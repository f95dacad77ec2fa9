// Package devserver serves the unpacked extension directory during
// development, watches it for changes and pushes reload events to
// connected clients over a websocket, with a small status API on the
// side.
package devserver

import (
	"sync"
	"sync/atomic"
)

const subscriberBufSize = 16

// Hub fans reload events out to connected websocket clients.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]chan string
	nextID atomic.Int64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int64]chan string)}
}

// Subscribe registers a client. The channel is buffered; slow clients
// have events dropped rather than blocking the watcher.
func (h *Hub) Subscribe() (int64, <-chan string) {
	id := h.nextID.Add(1)
	ch := make(chan string, subscriberBufSize)
	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(id int64) {
	h.mu.Lock()
	if ch, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish sends an event to every subscriber, non-blocking.
func (h *Hub) Publish(event string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

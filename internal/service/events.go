package service

import (
	"sync"

	"crmrelay/internal/models"
)

const subscriberBuffer = 16

// Hub fans dispatched message records out to live dashboard
// subscribers. Publishing never blocks: a subscriber that cannot keep
// up drops events rather than stalling the dispatcher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan *models.Message]struct{}
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan *models.Message]struct{}),
	}
}

// Subscribe registers a consumer. The returned cancel function must be
// called when the consumer goes away.
func (h *Hub) Subscribe() (<-chan *models.Message, func()) {
	ch := make(chan *models.Message, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers msg to every subscriber that has buffer room.
func (h *Hub) Publish(msg *models.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}

	for ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			// Slow consumer; drop rather than block the send path.
		}
	}
}

// Close tears down the hub and all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		delete(h.subscribers, ch)
		close(ch)
	}
}

// SubscriberCount reports the number of live subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

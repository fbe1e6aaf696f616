// Package events fans change notifications out to in-process subscribers
// and to any other configured notifiers.
package events

import (
	"context"
	"errors"
	"sync"

	"estoque/internal/core"
)

// Hub delivers every change to all current subscribers. Delivery never
// blocks: a subscriber with a full buffer already has a pending signal, and
// a signal only means "re-read everything", so the extra one is dropped.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan core.Change
}

var _ core.Notifier = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan core.Change)}
}

// Subscribe returns a channel of changes and a cancel func that removes the
// subscription and closes the channel.
func (h *Hub) Subscribe() (<-chan core.Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan core.Change, 1)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Notify implements core.Notifier.
func (h *Hub) Notify(_ context.Context, c core.Change) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- c:
		default:
		}
	}
	return nil
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Multi notifies every notifier in order and joins their errors.
type Multi []core.Notifier

func (m Multi) Notify(ctx context.Context, c core.Change) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBacklog    = 200
	subscriberBufSize = 64
)

// Subscription receives events published after (and the backlog before) it
// was created.
type Subscription struct {
	ID string
	C  <-chan Event

	ch      chan Event
	dropped atomic.Uint64
}

// Dropped returns how many events this subscriber missed because it was too
// slow.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Hub fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Hub struct {
	mu      sync.Mutex
	subs    map[string]*Subscription
	backlog []Event
	limit   int
	seq     uint64
	closed  bool
}

// NewHub creates a hub that keeps the last backlog events for new
// subscribers. backlog <= 0 uses the default.
func NewHub(backlog int) *Hub {
	if backlog <= 0 {
		backlog = defaultBacklog
	}
	return &Hub{
		subs:  make(map[string]*Subscription),
		limit: backlog,
	}
}

// Publish stamps and distributes an event.
func (h *Hub) Publish(e Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	e.Seq = h.seq
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	h.backlog = append(h.backlog, e)
	if len(h.backlog) > h.limit {
		h.backlog = h.backlog[len(h.backlog)-h.limit:]
	}

	if h.closed {
		return e
	}
	for _, s := range h.subs {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	}
	return e
}

// Emit publishes a formatted event.
func (h *Hub) Emit(typ Type, color, format string, args ...any) Event {
	return h.Publish(Event{Type: typ, Color: color, Data: fmt.Sprintf(format, args...)})
}

// Subscribe registers a new subscriber and queues the backlog for it.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := subscriberBufSize
	if len(h.backlog) > size {
		size = len(h.backlog) + subscriberBufSize
	}
	ch := make(chan Event, size)
	for _, e := range h.backlog {
		ch <- e
	}

	s := &Subscription{ID: uuid.NewString(), C: ch, ch: ch}
	if h.closed {
		close(ch)
		return s
	}
	h.subs[s.ID] = s
	return s
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(s.ch)
	}
}

// Subscribers returns the number of active subscribers.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Backlog returns a copy of the retained events.
func (h *Hub) Backlog() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.backlog...)
}

// Close closes every subscription. Later publishes only fill the backlog.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, s := range h.subs {
		delete(h.subs, id)
		close(s.ch)
	}
}

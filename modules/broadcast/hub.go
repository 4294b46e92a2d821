package broadcast

import (
	"log"
	"sync"
)

// Subscriber is a live connection's outbound path. Send must be
// non-blocking: it reports false when the subscriber cannot accept the
// payload (closed or backed up) and the hub simply moves on.
type Subscriber interface {
	ID() string
	Send(payload []byte) bool
}

// subscriberSet holds one room's current subscribers behind its own lock so
// traffic in one room never contends with another room's.
type subscriberSet struct {
	mu   sync.RWMutex
	subs map[Subscriber]bool
}

// Hub maps room keys to subscriber sets and fans payloads out to them.
// Join, Leave, and Broadcast are linearizable per room: delivery happens
// under the room lock, so a subscriber receives nothing after Leave returns.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*subscriberSet
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*subscriberSet),
	}
}

// Join registers sub under roomKey, creating the subscriber set if absent.
// Joining the same room twice is a no-op: the set is keyed by subscriber.
func (h *Hub) Join(roomKey string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.rooms[roomKey]
	if set == nil {
		set = &subscriberSet{subs: make(map[Subscriber]bool)}
		h.rooms[roomKey] = set
	}

	set.mu.Lock()
	set.subs[sub] = true
	count := len(set.subs)
	set.mu.Unlock()

	log.Printf("[hub] Subscriber %s joined %s (%d in room)", sub.ID(), roomKey, count)
}

// Leave removes sub from roomKey. An empty set is discarded. Once Leave
// returns, no in-flight broadcast can still deliver to sub for this room.
func (h *Hub) Leave(roomKey string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.rooms[roomKey]
	if set == nil {
		return
	}

	set.mu.Lock()
	delete(set.subs, sub)
	remaining := len(set.subs)
	set.mu.Unlock()

	if remaining == 0 {
		delete(h.rooms, roomKey)
	}

	log.Printf("[hub] Subscriber %s left %s (%d in room)", sub.ID(), roomKey, remaining)
}

// Broadcast delivers payload to every subscriber of roomKey, sender
// included, and returns how many accepted it. A subscriber that cannot
// accept is skipped without blocking the rest.
func (h *Hub) Broadcast(roomKey string, payload []byte) int {
	h.mu.RLock()
	set := h.rooms[roomKey]
	h.mu.RUnlock()

	if set == nil {
		return 0
	}

	set.mu.RLock()
	defer set.mu.RUnlock()

	delivered := 0
	for sub := range set.subs {
		if sub.Send(payload) {
			delivered++
		} else {
			log.Printf("[hub] Dropped payload for subscriber %s in %s", sub.ID(), roomKey)
		}
	}
	return delivered
}

// RoomCount returns the number of rooms with at least one subscriber.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// SubscriberCount returns the number of subscribers in a room.
func (h *Hub) SubscriberCount(roomKey string) int {
	h.mu.RLock()
	set := h.rooms[roomKey]
	h.mu.RUnlock()

	if set == nil {
		return 0
	}
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.subs)
}

package presence

import (
	"context"
	"log"
	"sync"

	"github.com/example/realtime-chat/domain/chat"
)

// StatusStore is the slice of the message store the tracker writes through.
type StatusStore interface {
	SetUserOnline(ctx context.Context, userID uint, online bool) error
}

// EmitFunc receives status-changed notifications when a user's state
// actually flips.
type EmitFunc func(user *chat.User, status string)

// Tracker maintains the process-wide online state per user. Persistence is
// best-effort: a failed flag write is logged and the status event still
// fires. Updates are last-writer-wins per user.
type Tracker struct {
	mu     sync.Mutex
	online map[uint]bool
	store  StatusStore
	emit   EmitFunc
}

// NewTracker creates a tracker writing through store and emitting flips via
// emit. A nil emit disables notifications.
func NewTracker(store StatusStore, emit EmitFunc) *Tracker {
	return &Tracker{
		online: make(map[uint]bool),
		store:  store,
		emit:   emit,
	}
}

// SetOnline records a user's online state. Every call persists through the
// store; the status event is emitted only when the in-memory state actually
// flips, so repeated identical calls are idempotent in effect.
func (t *Tracker) SetOnline(ctx context.Context, user *chat.User, online bool) {
	status := chat.StatusOffline
	if online {
		status = chat.StatusOnline
	}

	if err := t.store.SetUserOnline(ctx, user.ID, online); err != nil {
		log.Printf("[presence] failed to persist %s state for %s: %v", status, user.Username, err)
	}

	t.mu.Lock()
	flipped := t.online[user.ID] != online
	if online {
		t.online[user.ID] = true
	} else {
		delete(t.online, user.ID)
	}
	t.mu.Unlock()

	if flipped && t.emit != nil {
		t.emit(user, status)
	}
}

// IsOnline reports the tracker's in-memory view of a user's state.
func (t *Tracker) IsOnline(userID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.online[userID]
}

// OnlineCount returns the number of users currently marked online.
func (t *Tracker) OnlineCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.online)
}

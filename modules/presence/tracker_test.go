package presence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/example/realtime-chat/domain/chat"
)

// recordingStore captures SetUserOnline calls and can simulate failures.
type recordingStore struct {
	mu    sync.Mutex
	calls []bool
	err   error
}

func (s *recordingStore) SetUserOnline(_ context.Context, _ uint, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, online)
	return s.err
}

func (s *recordingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type statusEvent struct {
	username string
	status   string
}

func TestTracker_SetOnline_EmitsOnFlip(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	var events []statusEvent
	tracker := NewTracker(store, func(user *chat.User, status string) {
		events = append(events, statusEvent{user.Username, status})
	})

	user := &chat.User{ID: 7, Username: "alice"}

	tracker.SetOnline(ctx, user, true)
	tracker.SetOnline(ctx, user, false)
	tracker.SetOnline(ctx, user, true)

	want := []statusEvent{
		{"alice", chat.StatusOnline},
		{"alice", chat.StatusOffline},
		{"alice", chat.StatusOnline},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, ev := range events {
		if ev != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, ev, want[i])
		}
	}
}

func TestTracker_SetOnline_IdempotentButAlwaysPersists(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	var events []statusEvent
	tracker := NewTracker(store, func(user *chat.User, status string) {
		events = append(events, statusEvent{user.Username, status})
	})

	user := &chat.User{ID: 3, Username: "bob"}

	tracker.SetOnline(ctx, user, true)
	tracker.SetOnline(ctx, user, true)
	tracker.SetOnline(ctx, user, true)

	if len(events) != 1 {
		t.Errorf("expected exactly 1 event for repeated identical calls, got %d", len(events))
	}
	if store.callCount() != 3 {
		t.Errorf("expected every call to persist, got %d writes", store.callCount())
	}
	if !tracker.IsOnline(user.ID) {
		t.Error("expected user to be online")
	}
}

func TestTracker_SetOnline_EmitsDespiteStoreFailure(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{err: errors.New("db unreachable")}
	var events []statusEvent
	tracker := NewTracker(store, func(user *chat.User, status string) {
		events = append(events, statusEvent{user.Username, status})
	})

	user := &chat.User{ID: 5, Username: "carol"}

	tracker.SetOnline(ctx, user, true)
	tracker.SetOnline(ctx, user, false)

	want := []statusEvent{
		{"carol", chat.StatusOnline},
		{"carol", chat.StatusOffline},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events despite store failures, got %d", len(want), len(events))
	}
	for i, ev := range events {
		if ev != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, ev, want[i])
		}
	}
}

func TestTracker_OfflineWithoutConnectEmitsNothing(t *testing.T) {
	ctx := context.Background()
	store := &recordingStore{}
	emitted := 0
	tracker := NewTracker(store, func(*chat.User, string) { emitted++ })

	tracker.SetOnline(ctx, &chat.User{ID: 9, Username: "ghost"}, false)

	if emitted != 0 {
		t.Errorf("expected no event for a user that was never online, got %d", emitted)
	}
}

func TestTracker_OnlineCount(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(&recordingStore{}, nil)

	tracker.SetOnline(ctx, &chat.User{ID: 1, Username: "a"}, true)
	tracker.SetOnline(ctx, &chat.User{ID: 2, Username: "b"}, true)
	if tracker.OnlineCount() != 2 {
		t.Errorf("expected 2 online, got %d", tracker.OnlineCount())
	}

	tracker.SetOnline(ctx, &chat.User{ID: 1, Username: "a"}, false)
	if tracker.OnlineCount() != 1 {
		t.Errorf("expected 1 online, got %d", tracker.OnlineCount())
	}
}

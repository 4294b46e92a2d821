package broadcast

import (
	"fmt"
	"sync"
	"testing"
)

// fakeSubscriber records delivered payloads; reject simulates a dead or
// backed-up outbound path.
type fakeSubscriber struct {
	id     string
	mu     sync.Mutex
	inbox  [][]byte
	reject bool
}

func newFakeSubscriber(id string) *fakeSubscriber {
	return &fakeSubscriber{id: id}
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Send(payload []byte) bool {
	if f.reject {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox = append(f.inbox, payload)
	return true
}

func (f *fakeSubscriber) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inbox)
}

func (f *fakeSubscriber) last() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inbox) == 0 {
		return nil
	}
	return f.inbox[len(f.inbox)-1]
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	a := newFakeSubscriber("a")
	b := newFakeSubscriber("b")
	c := newFakeSubscriber("c")

	hub.Join("chat_general", a)
	hub.Join("chat_general", b)
	hub.Join("chat_other", c)

	delivered := hub.Broadcast("chat_general", []byte("hi"))

	if delivered != 2 {
		t.Errorf("Broadcast() delivered = %d, want 2", delivered)
	}
	if a.received() != 1 || b.received() != 1 {
		t.Errorf("expected 1 delivery each, got a=%d b=%d", a.received(), b.received())
	}
	if c.received() != 0 {
		t.Errorf("subscriber of another room received %d payloads, want 0", c.received())
	}
}

func TestHub_DuplicateJoinDeliversOnce(t *testing.T) {
	hub := NewHub()
	a := newFakeSubscriber("a")

	hub.Join("chat_general", a)
	hub.Join("chat_general", a)

	hub.Broadcast("chat_general", []byte("once"))

	if a.received() != 1 {
		t.Errorf("expected exactly 1 delivery after duplicate join, got %d", a.received())
	}
	if hub.SubscriberCount("chat_general") != 1 {
		t.Errorf("expected 1 subscriber, got %d", hub.SubscriberCount("chat_general"))
	}
}

func TestHub_LeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := newFakeSubscriber("a")
	b := newFakeSubscriber("b")

	hub.Join("chat_general", a)
	hub.Join("chat_general", b)
	hub.Leave("chat_general", a)

	hub.Broadcast("chat_general", []byte("after-leave"))

	if a.received() != 0 {
		t.Errorf("left subscriber received %d payloads, want 0", a.received())
	}
	if b.received() != 1 {
		t.Errorf("remaining subscriber received %d payloads, want 1", b.received())
	}
}

func TestHub_EmptySetIsDiscarded(t *testing.T) {
	hub := NewHub()
	a := newFakeSubscriber("a")

	hub.Join("chat_general", a)
	if hub.RoomCount() != 1 {
		t.Fatalf("expected 1 room, got %d", hub.RoomCount())
	}

	hub.Leave("chat_general", a)
	if hub.RoomCount() != 0 {
		t.Errorf("expected empty set to be discarded, got %d rooms", hub.RoomCount())
	}

	// Leaving again must be harmless.
	hub.Leave("chat_general", a)
}

func TestHub_DeadSubscriberDoesNotBlockOthers(t *testing.T) {
	hub := NewHub()
	dead := newFakeSubscriber("dead")
	dead.reject = true
	live := newFakeSubscriber("live")

	hub.Join("chat_general", dead)
	hub.Join("chat_general", live)

	delivered := hub.Broadcast("chat_general", []byte("hi"))

	if delivered != 1 {
		t.Errorf("Broadcast() delivered = %d, want 1", delivered)
	}
	if live.received() != 1 {
		t.Errorf("live subscriber received %d payloads, want 1", live.received())
	}
}

func TestHub_BroadcastUnknownRoom(t *testing.T) {
	hub := NewHub()
	if delivered := hub.Broadcast("chat_nowhere", []byte("x")); delivered != 0 {
		t.Errorf("Broadcast() to unknown room delivered = %d, want 0", delivered)
	}
}

func TestHub_ConcurrentJoinLeaveBroadcast(t *testing.T) {
	hub := NewHub()
	const workers = 8
	const rounds = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			sub := newFakeSubscriber(fmt.Sprintf("sub-%d", w))
			room := fmt.Sprintf("chat_room-%d", w%2)
			for i := 0; i < rounds; i++ {
				hub.Join(room, sub)
				hub.Broadcast(room, []byte("m"))
				hub.Leave(room, sub)
			}
		}(w)
	}
	wg.Wait()

	if hub.RoomCount() != 0 {
		t.Errorf("expected all rooms reclaimed, got %d", hub.RoomCount())
	}
}

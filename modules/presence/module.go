package presence

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/realtime-chat/domain/chat"
	"github.com/example/realtime-chat/events"
	"github.com/example/realtime-chat/modules/store"
	"github.com/go-monolith/mono"
)

// Module owns the presence tracker and publishes status-changed events on
// the application event bus.
type Module struct {
	tracker     *Tracker
	eventBus    mono.EventBus
	storeModule *store.Module
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventBusAwareModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)

// NewModule creates a new presence module.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// SetStore sets the store module (called from main.go).
func (m *Module) SetStore(s *store.Module) {
	m.storeModule = s
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserStatusChangedV1.ToBase(),
	}
}

// Tracker returns the presence tracker. Valid only after Start.
func (m *Module) Tracker() *Tracker {
	return m.tracker
}

// Start wires the tracker to the store repository.
func (m *Module) Start(_ context.Context) error {
	if m.storeModule == nil {
		return fmt.Errorf("store dependency not set")
	}
	m.tracker = NewTracker(m.storeModule.Repository(), m.publishStatus)
	log.Println("[presence] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[presence] Module stopped")
	return nil
}

// publishStatus forwards a state flip to the event bus. Publication is
// best-effort; delivery failures must not reach the caller.
func (m *Module) publishStatus(user *chat.User, status string) {
	event := events.UserStatusChangedEvent{
		UserID:    user.ID,
		Username:  user.Username,
		Status:    status,
		Timestamp: time.Now(),
	}
	if err := events.UserStatusChangedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[presence] failed to publish status event for %s: %v", user.Username, err)
	}
}

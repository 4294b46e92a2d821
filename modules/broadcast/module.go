package broadcast

import (
	"context"
	"fmt"
	"log"

	"github.com/example/realtime-chat/domain/chat"
	"github.com/example/realtime-chat/events"
	"github.com/example/realtime-chat/modules/store"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Module owns the room registry (hub) and the broadcast router, and consumes
// presence events from the event bus to relay them to the global room.
type Module struct {
	hub         *Hub
	router      *Router
	storeModule *store.Module
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new broadcast module.
func NewModule() *Module {
	return &Module{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// SetStore sets the store module (called from main.go).
func (m *Module) SetStore(s *store.Module) {
	m.storeModule = s
}

// Hub returns the room registry for the gateway to use.
func (m *Module) Hub() *Hub {
	return m.hub
}

// Router returns the broadcast router. Valid only after Start.
func (m *Module) Router() *Router {
	return m.router
}

// Start wires the router to the store repository.
func (m *Module) Start(_ context.Context) error {
	if m.storeModule == nil {
		return fmt.Errorf("store dependency not set")
	}
	m.router = NewRouter(m.hub, m.storeModule.Repository())
	log.Println("[broadcast] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[broadcast] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_rooms":       m.hub.RoomCount(),
			"global_subscribers": m.hub.SubscriberCount(chat.GlobalRoomKey),
		},
	}
}

// RegisterEventConsumers registers event handlers.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserStatusChangedV1, m.handleUserStatusChanged, m,
	); err != nil {
		return fmt.Errorf("failed to register UserStatusChanged consumer: %w", err)
	}

	log.Println("[broadcast] Registered event consumers: UserStatusChanged")
	return nil
}

func (m *Module) handleUserStatusChanged(_ context.Context, event events.UserStatusChangedEvent, _ *mono.Msg) error {
	if m.router == nil {
		return nil
	}
	delivered := m.router.DeliverPresence(event.Username, event.Status)
	log.Printf("[broadcast] Relayed %s status for %s to %d global subscribers",
		event.Status, event.Username, delivered)
	return nil
}

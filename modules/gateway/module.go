package gateway

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/realtime-chat/modules/broadcast"
	"github.com/example/realtime-chat/modules/presence"
	"github.com/example/realtime-chat/modules/store"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Module is the HTTP and WebSocket transport. It owns the Fiber server and
// turns sockets into sessions wired to the hub, the router and the presence
// tracker.
type Module struct {
	app  *fiber.App
	port string

	storeModule     *store.Module
	broadcastModule *broadcast.Module
	presenceModule  *presence.Module

	// Resolved from the modules above in Start.
	repo    *store.Repository
	hub     *broadcast.Hub
	router  *broadcast.Router
	tracker *presence.Tracker
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new gateway module.
func NewModule() *Module {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	return &Module{
		port: port,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "gateway"
}

// SetStore sets the store module (called from main.go).
func (m *Module) SetStore(s *store.Module) {
	m.storeModule = s
}

// SetBroadcast sets the broadcast module (called from main.go).
func (m *Module) SetBroadcast(b *broadcast.Module) {
	m.broadcastModule = b
}

// SetPresence sets the presence module (called from main.go).
func (m *Module) SetPresence(p *presence.Module) {
	m.presenceModule = p
}

// Start initializes the Fiber HTTP server.
func (m *Module) Start(_ context.Context) error {
	if m.storeModule == nil {
		return fmt.Errorf("store dependency not set")
	}
	if m.broadcastModule == nil {
		return fmt.Errorf("broadcast dependency not set")
	}
	if m.presenceModule == nil {
		return fmt.Errorf("presence dependency not set")
	}

	m.repo = m.storeModule.Repository()
	m.hub = m.broadcastModule.Hub()
	m.router = m.broadcastModule.Router()
	m.tracker = m.presenceModule.Tracker()

	m.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	// Add recovery middleware
	m.app.Use(recover.New())

	// Add logging middleware
	m.app.Use(loggerMiddleware())

	// Setup routes
	m.setupRoutes()

	// Start server in goroutine
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			log.Printf("[gateway] HTTP server error: %v", err)
		}
	}()

	log.Printf("[gateway] HTTP server started on :%s", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *Module) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[gateway] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port":         m.port,
			"active_rooms": m.hub.RoomCount(),
		},
	}
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// loggerMiddleware returns a Fiber middleware for request logging.
func loggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip logging for WebSocket upgrade requests
		if c.Get("Upgrade") == "websocket" {
			return c.Next()
		}
		err := c.Next()
		log.Printf("[gateway] %s %s %d", c.Method(), c.Path(), c.Response().StatusCode())
		return err
	}
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/realtime-chat/modules/broadcast"
	"github.com/example/realtime-chat/modules/gateway"
	"github.com/example/realtime-chat/modules/presence"
	"github.com/example/realtime-chat/modules/store"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Realtime Chat - Fiber + EventBus Pubsub ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	storeModule := store.NewModule()
	presenceModule := presence.NewModule()
	broadcastModule := broadcast.NewModule()
	gatewayModule := gateway.NewModule()

	// Inject cross-module dependencies
	// (Done manually because these are not exposed via ServiceContainer)
	presenceModule.SetStore(storeModule)
	broadcastModule.SetStore(storeModule)
	gatewayModule.SetStore(storeModule)
	gatewayModule.SetBroadcast(broadcastModule)
	gatewayModule.SetPresence(presenceModule)

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies
	// - store: GORM/SQLite persistence (users, rooms, messages)
	// - presence: online-state tracker (EventEmitterModule)
	// - broadcast: room registry + router (EventConsumerModule)
	// - gateway: driving adapter (Fiber HTTP/WebSocket server)
	app.Register(storeModule)
	app.Register(presenceModule)
	app.Register(broadcastModule)
	app.Register(gatewayModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "chat.db"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Storage: GORM + SQLite")
	log.Printf("  - Database: %s", dbPath)
	log.Println("")
	log.Println("Event-Driven Presence:")
	log.Println("  - UserStatusChanged events -> broadcast module -> global room subscribers")
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                 - Health check")
	log.Println("  GET    /api/v1/users           - List users with online state")
	log.Println("  GET    /api/v1/rooms           - List all rooms")
	log.Println("  POST   /api/v1/rooms           - Create a new room")
	log.Println("  GET    /api/v1/messages/:room  - Get room message history")
	log.Println("")
	log.Printf("WebSocket Endpoints (ws://localhost:%s):", port)
	log.Println("  /ws/chat/:room?user_id=N  - Join a named room")
	log.Println("  /ws/chat/global?user_id=N - Global feed: cross-room activity + presence")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

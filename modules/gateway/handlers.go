package gateway

import (
	"context"
	"errors"
	"log"
	"strconv"

	"github.com/example/realtime-chat/domain/chat"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const maxRoomNameLength = 255

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes() {
	// Health check
	m.app.Get("/health", m.healthHandler)

	// WebSocket endpoints. The fixed global route is registered before the
	// parameterized one so "global" never resolves as a room name.
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws/chat/global", websocket.New(m.handleGlobalSocket))
	m.app.Get("/ws/chat/:room", websocket.New(m.handleRoomSocket))

	// REST API v1
	api := m.app.Group("/api/v1")

	api.Get("/users", m.listUsers)
	api.Get("/rooms", m.listRooms)
	api.Post("/rooms", m.createRoom)
	api.Get("/messages/:room", m.roomMessages)
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":             "gateway",
			"active_rooms":       m.hub.RoomCount(),
			"global_subscribers": m.hub.SubscriberCount(chat.GlobalRoomKey),
			"online_users":       m.tracker.OnlineCount(),
		},
	})
}

// listUsers handles GET /api/v1/users.
func (m *Module) listUsers(c *fiber.Ctx) error {
	users, err := m.repo.ListUsers(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list users",
		})
	}

	payloads := make([]chat.UserPayload, 0, len(users))
	for _, user := range users {
		payloads = append(payloads, chat.NewUserPayload(user))
	}
	return c.JSON(payloads)
}

// listRooms handles GET /api/v1/rooms.
func (m *Module) listRooms(c *fiber.Ctx) error {
	rooms, err := m.repo.ListRooms(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	response := RoomListResponse{
		Rooms: make([]RoomResponse, 0, len(rooms)),
	}
	for _, room := range rooms {
		response.Rooms = append(response.Rooms, RoomResponse{
			ID:        room.ID,
			Name:      room.Name,
			CreatedAt: room.CreatedAt,
			Members:   m.hub.SubscriberCount(chat.RoomKey(room.Name)),
		})
	}
	return c.JSON(response)
}

// createRoom handles POST /api/v1/rooms. Creating an existing room returns
// the existing row unchanged.
func (m *Module) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Room name is required",
		})
	}
	if len(req.Name) > maxRoomNameLength {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Room name too long (max 255 characters)",
		})
	}

	room, err := m.repo.GetOrCreateRoom(c.UserContext(), req.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to create room",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
	})
}

// roomMessages handles GET /api/v1/messages/:room. An unknown room yields an
// empty history, matching what a fresh room's subscribers would see.
func (m *Module) roomMessages(c *fiber.Ctx) error {
	roomName := c.Params("room")

	messages, err := m.repo.RoomMessages(c.UserContext(), roomName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "history_failed",
			Message: "Failed to load message history",
		})
	}

	payloads := make([]chat.MessagePayload, 0, len(messages))
	for _, msg := range messages {
		payloads = append(payloads, chat.NewMessagePayload(msg, &msg.User))
	}
	return c.JSON(payloads)
}

// handleGlobalSocket handles WebSocket connections at /ws/chat/global.
func (m *Module) handleGlobalSocket(c *websocket.Conn) {
	m.serveSession(c, c.Query("user_id"), chat.GlobalRoomName, true)
}

// handleRoomSocket handles WebSocket connections at /ws/chat/:room.
func (m *Module) handleRoomSocket(c *websocket.Conn) {
	m.serveSession(c, c.Query("user_id"), c.Params("room"), false)
}

// serveSession drives one connection through its lifecycle: authenticate,
// join the room, pump frames until the socket drops, then clean up. A global
// session additionally flips the user's presence; its inbound frames are
// ignored since the global room is receive-only.
func (m *Module) serveSession(conn wsConn, rawUserID, roomName string, global bool) *Session {
	ctx := context.Background()
	sess := newSession(conn)

	user, err := m.authenticate(ctx, rawUserID)
	if err != nil {
		log.Printf("[gateway] Rejecting session %s: %v", sess.ID(), err)
		sess.close()
		return sess
	}
	sess.authenticated(user)

	roomKey := chat.RoomKey(roomName)
	sess.joined(roomName, roomKey, global)
	m.hub.Join(roomKey, sess)
	go sess.writePump()

	defer func() {
		m.hub.Leave(roomKey, sess)
		if global {
			m.tracker.SetOnline(context.Background(), user, false)
		}
		sess.close()
		log.Printf("[gateway] Session %s closed (%s in %s)", sess.ID(), user.Username, roomName)
	}()

	log.Printf("[gateway] Session %s joined %s (%s)", sess.ID(), roomName, user.Username)

	if global {
		m.tracker.SetOnline(ctx, user, true)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[gateway] Read error on session %s: %v", sess.ID(), err)
			}
			return sess
		}
		if global {
			continue
		}
		m.handleInbound(ctx, sess, data)
	}
}

// authenticate resolves the connecting user from the user_id query value.
func (m *Module) authenticate(ctx context.Context, rawUserID string) (*chat.User, error) {
	if rawUserID == "" {
		return nil, errors.New("missing user_id")
	}
	id, err := strconv.ParseUint(rawUserID, 10, 32)
	if err != nil {
		return nil, errors.New("invalid user_id: " + rawUserID)
	}
	user, err := m.repo.GetUserByID(ctx, uint(id))
	if err != nil {
		return nil, err
	}
	return user, nil
}

// handleInbound validates one chat frame and hands it to the router. Frames
// that fail validation or sender resolution are dropped; the session stays
// joined either way.
func (m *Module) handleInbound(ctx context.Context, sess *Session, data []byte) {
	if !sess.limiter.allow() {
		log.Printf("[gateway] Rate limit exceeded on session %s, dropping frame", sess.ID())
		return
	}

	frame, err := decodeInbound(data)
	if err != nil {
		log.Printf("[gateway] Dropping frame on session %s: %v", sess.ID(), err)
		return
	}

	sender, err := m.resolveSender(ctx, frame)
	if err != nil {
		log.Printf("[gateway] Dropping frame on session %s: unknown sender: %v", sess.ID(), err)
		return
	}

	if _, err := m.router.DeliverChatMessage(ctx, sess.roomName, sender, frame.Text, frame.Kind); err != nil {
		log.Printf("[gateway] Failed to deliver message from %s in %s: %v",
			sender.Username, sess.roomName, err)
	}
}

// resolveSender looks up the sender the frame named, by id or by username.
func (m *Module) resolveSender(ctx context.Context, frame *inboundMessage) (*chat.User, error) {
	if frame.UserID != 0 {
		return m.repo.GetUserByID(ctx, frame.UserID)
	}
	return m.repo.GetUserByUsername(ctx, frame.Username)
}

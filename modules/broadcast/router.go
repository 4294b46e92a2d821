package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/example/realtime-chat/domain/chat"
)

// MessageStore is the slice of the message store the router persists through.
type MessageStore interface {
	GetOrCreateRoom(ctx context.Context, name string) (*chat.ChatRoom, error)
	CreateMessage(ctx context.Context, room *chat.ChatRoom, user *chat.User, text, kind string) (*chat.Message, error)
}

// Router orchestrates delivery: chat messages are persisted first and then
// fanned out to the originating room and, wrapped as cross-room activity, to
// the global room. Presence events go to the global room only.
type Router struct {
	hub   *Hub
	store MessageStore
}

// NewRouter creates a router over hub and store.
func NewRouter(hub *Hub, store MessageStore) *Router {
	return &Router{hub: hub, store: store}
}

// DeliverChatMessage persists a message from sender in roomName and fans it
// out. Durability comes first: a store failure aborts delivery entirely.
// Fan-out targets the room's subscribers (sender echo included) and the
// global room, where the payload is tagged with the originating room name.
func (r *Router) DeliverChatMessage(ctx context.Context, roomName string, sender *chat.User, text, kind string) (*chat.Message, error) {
	room, err := r.store.GetOrCreateRoom(ctx, roomName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room %q: %w", roomName, err)
	}

	msg, err := r.store.CreateMessage(ctx, room, sender, text, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	payload := chat.NewMessagePayload(msg, sender)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	r.hub.Broadcast(chat.RoomKey(roomName), data)

	globalData, err := json.Marshal(chat.NewGlobalMessagePayload(roomName, payload))
	if err != nil {
		return nil, fmt.Errorf("failed to encode global message: %w", err)
	}
	r.hub.Broadcast(chat.GlobalRoomKey, globalData)

	return msg, nil
}

// DeliverPresence pushes a user_status event to the global room's
// subscribers and returns the delivery count.
func (r *Router) DeliverPresence(username, status string) int {
	data, err := json.Marshal(chat.NewUserStatusPayload(username, status))
	if err != nil {
		log.Printf("[broadcast] failed to encode presence event for %s: %v", username, err)
		return 0
	}
	return r.hub.Broadcast(chat.GlobalRoomKey, data)
}

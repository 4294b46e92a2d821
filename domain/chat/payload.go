package chat

import "time"

// Outbound event types and presence status values.
const (
	EventGlobalMessage = "global_message"
	EventUserStatus    = "user_status"

	StatusOnline  = "online"
	StatusOffline = "offline"
)

// UserPayload is the wire representation of a user inside message events.
type UserPayload struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	IsOnline bool   `json:"is_online"`
}

// MessagePayload is the wire representation of a chat message delivered to a
// room's subscribers.
type MessagePayload struct {
	ID          uint        `json:"id"`
	Text        string      `json:"text"`
	User        UserPayload `json:"user"`
	CreatedAt   time.Time   `json:"created_at"`
	MessageType string      `json:"message_type"`
}

// GlobalMessagePayload wraps a room message for delivery to the global room,
// tagged with the originating room name so an activity view can show traffic
// from rooms it has not joined.
type GlobalMessagePayload struct {
	Type     string         `json:"type"`
	RoomName string         `json:"room_name"`
	Message  MessagePayload `json:"message"`
}

// UserStatusPayload is the presence event delivered to the global room.
type UserStatusPayload struct {
	Type   string `json:"type"`
	User   string `json:"user"`
	Status string `json:"status"`
}

// NewUserPayload builds the wire form of a user.
func NewUserPayload(u *User) UserPayload {
	return UserPayload{
		ID:       u.ID,
		Username: u.Username,
		IsOnline: u.IsOnline,
	}
}

// NewMessagePayload builds the wire form of a persisted message authored by
// sender.
func NewMessagePayload(msg *Message, sender *User) MessagePayload {
	return MessagePayload{
		ID:          msg.ID,
		Text:        msg.Text,
		User:        NewUserPayload(sender),
		CreatedAt:   msg.CreatedAt,
		MessageType: msg.MessageType,
	}
}

// NewGlobalMessagePayload wraps a message payload for cross-room delivery.
func NewGlobalMessagePayload(roomName string, msg MessagePayload) GlobalMessagePayload {
	return GlobalMessagePayload{
		Type:     EventGlobalMessage,
		RoomName: roomName,
		Message:  msg,
	}
}

// NewUserStatusPayload builds a presence event.
func NewUserStatusPayload(username, status string) UserStatusPayload {
	return UserStatusPayload{
		Type:   EventUserStatus,
		User:   username,
		Status: status,
	}
}

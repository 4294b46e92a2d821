package chat

import "time"

// Message kinds. Text is the default for messages created without an
// explicit kind.
const (
	KindText  = "text"
	KindImage = "image"
	KindVideo = "video"
)

// ValidKind reports whether k is a known message kind.
func ValidKind(k string) bool {
	switch k {
	case KindText, KindImage, KindVideo:
		return true
	}
	return false
}

// User is an externally-owned identity. This core never creates or deletes
// users; only IsOnline is mutated here, by the presence tracker.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;size:150" json:"username"`
	Email    string `gorm:"uniqueIndex" json:"email,omitempty"`
	IsOnline bool   `gorm:"default:false" json:"is_online"`
}

// ChatRoom is a named channel. Rooms are created lazily on first join or
// first message; Name carries a unique index so concurrent first creators
// converge on a single row.
type ChatRoom struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Message belongs to exactly one room and one author. Messages are immutable
// once created; the room owns them (room deletion cascades at the store
// boundary).
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatRoomID  uint      `gorm:"index" json:"chat_room_id"`
	UserID      uint      `json:"user_id"`
	User        User      `json:"user"`
	Text        string    `json:"text"`
	MessageType string    `gorm:"size:10;default:text" json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// GlobalRoomName is the human-readable name of the implicit global room used
// for presence and cross-room activity.
const GlobalRoomName = "global"

// RoomKey derives the namespaced subscription key for a room name. Two
// clients requesting the same name always land in the same subscriber set.
func RoomKey(name string) string {
	return "chat_" + name
}

// GlobalRoomKey is the subscription key of the implicit global room.
var GlobalRoomKey = RoomKey(GlobalRoomName)

package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserStatusChangedEvent is emitted when a user's online state actually
// flips. It is a best-effort side channel: the presence tracker publishes it
// regardless of whether the durable flag write succeeded.
type UserStatusChangedEvent struct {
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Status    string    `json:"status"` // "online" or "offline"
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the presence domain.
var UserStatusChangedV1 = helper.EventDefinition[UserStatusChangedEvent](
	"presence",
	"UserStatusChanged",
	"v1",
)

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/realtime-chat/domain/chat"
)

// Inbound frame errors. A bad frame is dropped and logged; the session that
// sent it stays joined.
var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMissingText    = errors.New("frame has no text field")
	ErrMissingSender  = errors.New("frame has no sender identity")
	ErrInvalidKind    = errors.New("invalid message type")
)

// inboundMessage is the validated form of a chat frame. Exactly one of
// UserID and Username is set, depending on how the client identified the
// sender.
type inboundMessage struct {
	Text     string
	UserID   uint
	Username string
	Kind     string
}

type rawInbound struct {
	Text   *string `json:"text"`
	UserID *uint   `json:"userId"`
	User   *string `json:"user"`
	Kind   *string `json:"message_type"`
}

// decodeInbound parses and validates one inbound frame. Empty text is
// accepted; an absent text field is not.
func decodeInbound(data []byte) (*inboundMessage, error) {
	var raw rawInbound
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if raw.Text == nil {
		return nil, ErrMissingText
	}
	if raw.UserID == nil && raw.User == nil {
		return nil, ErrMissingSender
	}

	msg := &inboundMessage{Text: *raw.Text}
	if raw.UserID != nil {
		msg.UserID = *raw.UserID
	} else {
		msg.Username = *raw.User
	}
	if raw.Kind != nil {
		if !chat.ValidKind(*raw.Kind) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidKind, *raw.Kind)
		}
		msg.Kind = *raw.Kind
	}
	return msg, nil
}

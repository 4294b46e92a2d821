package gateway

import (
	"errors"
	"testing"

	"github.com/example/realtime-chat/domain/chat"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantErr  error
		wantText string
		wantID   uint
		wantUser string
		wantKind string
	}{
		{
			name:     "sender by id",
			data:     `{"text":"hello","userId":7}`,
			wantText: "hello",
			wantID:   7,
		},
		{
			name:     "sender by username",
			data:     `{"text":"hello","user":"alice"}`,
			wantText: "hello",
			wantUser: "alice",
		},
		{
			name:     "explicit message type",
			data:     `{"text":"cat.png","userId":7,"message_type":"image"}`,
			wantText: "cat.png",
			wantID:   7,
			wantKind: chat.KindImage,
		},
		{
			name:     "empty text is a valid message",
			data:     `{"text":"","userId":7}`,
			wantText: "",
			wantID:   7,
		},
		{
			name:     "id wins when both identities present",
			data:     `{"text":"hi","userId":7,"user":"alice"}`,
			wantText: "hi",
			wantID:   7,
		},
		{
			name:    "missing text",
			data:    `{"userId":7}`,
			wantErr: ErrMissingText,
		},
		{
			name:    "missing sender",
			data:    `{"text":"hi"}`,
			wantErr: ErrMissingSender,
		},
		{
			name:    "unknown message type",
			data:    `{"text":"hi","userId":7,"message_type":"audio"}`,
			wantErr: ErrInvalidKind,
		},
		{
			name:    "not json",
			data:    `hello there`,
			wantErr: ErrMalformedFrame,
		},
		{
			name:    "wrong type for text",
			data:    `{"text":42,"userId":7}`,
			wantErr: ErrMalformedFrame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := decodeInbound([]byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("decodeInbound() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeInbound() error = %v", err)
			}
			if msg.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", msg.Text, tt.wantText)
			}
			if msg.UserID != tt.wantID {
				t.Errorf("UserID = %d, want %d", msg.UserID, tt.wantID)
			}
			if msg.Username != tt.wantUser {
				t.Errorf("Username = %q, want %q", msg.Username, tt.wantUser)
			}
			if msg.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", msg.Kind, tt.wantKind)
			}
		})
	}
}

package chat

import "testing"

func TestValidKind(t *testing.T) {
	tests := []struct {
		kind string
		want bool
	}{
		{KindText, true},
		{KindImage, true},
		{KindVideo, true},
		{"audio", false},
		{"", false},
		{"TEXT", false},
	}
	for _, tt := range tests {
		if got := ValidKind(tt.kind); got != tt.want {
			t.Errorf("ValidKind(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestRoomKey(t *testing.T) {
	if got := RoomKey("general"); got != "chat_general" {
		t.Errorf("RoomKey(general) = %q, want %q", got, "chat_general")
	}
	// Same name must always map to the same key.
	if RoomKey("lobby") != RoomKey("lobby") {
		t.Error("RoomKey is not deterministic")
	}
	if GlobalRoomKey != RoomKey(GlobalRoomName) {
		t.Errorf("GlobalRoomKey = %q, want %q", GlobalRoomKey, RoomKey(GlobalRoomName))
	}
}

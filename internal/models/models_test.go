package models

import (
	"testing"
)

func TestNormalizePair(t *testing.T) {
	tests := []struct {
		name  string
		a, b  uint
		want1 uint
		want2 uint
	}{
		{"Already ordered", 1, 2, 1, 2},
		{"Reversed", 9, 3, 3, 9},
		{"Equal", 5, 5, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got1, got2 := NormalizePair(tt.a, tt.b)
			if got1 != tt.want1 || got2 != tt.want2 {
				t.Errorf("NormalizePair(%d, %d) = (%d, %d), want (%d, %d)", tt.a, tt.b, got1, got2, tt.want1, tt.want2)
			}
		})
	}
}

func TestConversationParticipants(t *testing.T) {
	conv := &Conversation{ID: 1, User1ID: 3, User2ID: 9}

	if !conv.HasParticipant(3) || !conv.HasParticipant(9) {
		t.Errorf("expected users 3 and 9 to be participants")
	}
	if conv.HasParticipant(4) {
		t.Errorf("user 4 should not be a participant")
	}
	if conv.HasParticipant(0) {
		t.Errorf("zero user id should never be a participant")
	}

	if got := conv.PeerOf(3); got != 9 {
		t.Errorf("PeerOf(3) = %d, want 9", got)
	}
	if got := conv.PeerOf(9); got != 3 {
		t.Errorf("PeerOf(9) = %d, want 3", got)
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"Full name", User{FirstName: "Asha", LastName: "Patel"}, "Asha Patel"},
		{"First only", User{FirstName: "Asha"}, "Asha"},
		{"Last only", User{LastName: "Patel"}, "Patel"},
		{"Empty", User{}, ""},
		{"Whitespace", User{FirstName: "  ", LastName: " "}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMessageToResponse(t *testing.T) {
	msg := &Message{
		ID:             7,
		ConversationID: 2,
		SenderID:       3,
		Content:        "hello",
		Sender:         User{ID: 3, Phone: "+8801700000001", FirstName: "Asha"},
	}

	resp := msg.ToResponse()
	if resp.ID != 7 || resp.ConversationID != 2 || resp.SenderID != 3 {
		t.Errorf("unexpected identifiers in response: %+v", resp)
	}
	if resp.Sender.FirstName != "Asha" {
		t.Errorf("sender not embedded in response")
	}
	if resp.ReadAt != nil {
		t.Errorf("fresh message must have nil read_at")
	}
}

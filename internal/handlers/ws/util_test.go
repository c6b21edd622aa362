package ws

import "testing"

func TestDeserializeKnownTypes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		check   func(t *testing.T, msg Message)
	}{
		{
			name: "register",
			raw:  `{"type":"registerUser","payload":{"userId":7}}`,
			check: func(t *testing.T, msg Message) {
				reg, ok := msg.(*MessageRegister)
				if !ok {
					t.Fatalf("expected *MessageRegister, got %T", msg)
				}
				if reg.UserID != 7 {
					t.Errorf("expected user 7, got %d", reg.UserID)
				}
			},
		},
		{
			name: "send message",
			raw:  `{"type":"sendMessage","payload":{"senderId":3,"conversationId":55,"content":"hello"}}`,
			check: func(t *testing.T, msg Message) {
				send, ok := msg.(*MessageSend)
				if !ok {
					t.Fatalf("expected *MessageSend, got %T", msg)
				}
				if send.SenderID != 3 || send.ConversationID != 55 || send.Content != "hello" {
					t.Errorf("payload not decoded: %+v", send)
				}
			},
		},
		{
			name: "find or create with product",
			raw:  `{"type":"findOrCreateConversation","payload":{"user1Id":1,"user2Id":2,"productId":9}}`,
			check: func(t *testing.T, msg Message) {
				find, ok := msg.(*MessageFindOrCreate)
				if !ok {
					t.Fatalf("expected *MessageFindOrCreate, got %T", msg)
				}
				if find.ProductID == nil || *find.ProductID != 9 {
					t.Errorf("expected product 9, got %v", find.ProductID)
				}
			},
		},
		{
			name: "active conversation toggle",
			raw:  `{"type":"user:conversation","payload":{"userId":7,"conversationId":55,"active":true}}`,
			check: func(t *testing.T, msg Message) {
				act, ok := msg.(*MessageActiveConversation)
				if !ok {
					t.Fatalf("expected *MessageActiveConversation, got %T", msg)
				}
				if !act.Active || act.ConversationID != 55 {
					t.Errorf("payload not decoded: %+v", act)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := Deserialize([]byte(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, msg)
		})
	}
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	if _, err := Deserialize([]byte(`{"type":"no-such-event","payload":{}}`)); err == nil {
		t.Error("unknown event type should be rejected")
	}
	if _, err := Deserialize([]byte(`not json`)); err == nil {
		t.Error("malformed frame should be rejected")
	}
	if _, err := Deserialize([]byte(`{"type":"sendMessage","payload":"not-an-object"}`)); err == nil {
		t.Error("mistyped payload should be rejected")
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original := &MessageMarkRead{ConversationID: 55, ReaderID: 7}

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	decoded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	mark, ok := decoded.(*MessageMarkRead)
	if !ok {
		t.Fatalf("expected *MessageMarkRead, got %T", decoded)
	}
	if mark.ConversationID != 55 || mark.ReaderID != 7 {
		t.Errorf("round trip lost fields: %+v", mark)
	}
}

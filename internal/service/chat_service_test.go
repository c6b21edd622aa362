package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/agrilink/agrichat-backend/internal/models"
)

func newChatFixture() (*ChatService, *MockConversationRepository, *MockMessageRepository, *MockUserRepository, *MockProductRepository, *FakeBroadcaster, *FakePresence, *FakeActivity, *FakeDispatcher) {
	convRepo := NewMockConversationRepository()
	msgRepo := NewMockMessageRepository()
	userRepo := NewMockUserRepository()
	productRepo := NewMockProductRepository()
	broadcaster := &FakeBroadcaster{}
	presence := &FakePresence{Online: map[uint]bool{}}
	activity := &FakeActivity{Entries: map[uint]ActivitySnapshot{}}
	dispatcher := &FakeDispatcher{}

	svc := NewChatService(convRepo, msgRepo, userRepo, productRepo, broadcaster, presence, activity, dispatcher, nil)
	return svc, convRepo, msgRepo, userRepo, productRepo, broadcaster, presence, activity, dispatcher
}

func TestFindOrCreateUnorderedPair(t *testing.T) {
	svc, _, _, _, _, _, _, _, _ := newChatFixture()

	first, err := svc.FindOrCreate(7, 3, nil)
	if err != nil {
		t.Fatalf("FindOrCreate(7,3) error: %v", err)
	}
	second, err := svc.FindOrCreate(3, 7, nil)
	if err != nil {
		t.Fatalf("FindOrCreate(3,7) error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("pair order changed conversation identity: %d vs %d", first.ID, second.ID)
	}
	if first.User1ID != 3 || first.User2ID != 7 {
		t.Errorf("pair not normalized: (%d, %d)", first.User1ID, first.User2ID)
	}
}

func TestFindOrCreateAttachesProductContext(t *testing.T) {
	svc, _, _, _, _, _, _, _, _ := newChatFixture()

	plain, err := svc.FindOrCreate(1, 2, nil)
	if err != nil {
		t.Fatalf("FindOrCreate error: %v", err)
	}
	if plain.ProductID != nil {
		t.Fatalf("expected no product context on creation")
	}

	productID := uint(44)
	updated, err := svc.FindOrCreate(2, 1, &productID)
	if err != nil {
		t.Fatalf("FindOrCreate with product error: %v", err)
	}
	if updated.ID != plain.ID {
		t.Fatalf("product context created a duplicate conversation")
	}
	if updated.ProductID == nil || *updated.ProductID != 44 {
		t.Errorf("product context not attached: %v", updated.ProductID)
	}
}

func TestFindOrCreateValidation(t *testing.T) {
	svc, _, _, _, _, _, _, _, _ := newChatFixture()

	tests := []struct {
		name   string
		a, b   uint
	}{
		{"Missing first user", 0, 2},
		{"Missing second user", 1, 0},
		{"Self conversation", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.FindOrCreate(tt.a, tt.b, nil); !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSendMessageValidation(t *testing.T) {
	svc, convRepo, msgRepo, _, _, _, _, _, _ := newChatFixture()
	convRepo.Create(&models.Conversation{User1ID: 1, User2ID: 2})

	tests := []struct {
		name     string
		senderID uint
		convID   uint
		content  string
	}{
		{"Missing sender", 0, 1, "hi"},
		{"Missing conversation", 1, 0, "hi"},
		{"Empty content", 1, 1, ""},
		{"Whitespace content", 1, 1, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SendMessage(tt.senderID, tt.convID, tt.content); !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if len(msgRepo.messages) != 0 {
		t.Errorf("rejected sends must not persist messages, found %d", len(msgRepo.messages))
	}
}

func TestSendMessageRejectsOutsider(t *testing.T) {
	svc, convRepo, _, _, _, _, _, _, _ := newChatFixture()
	convRepo.Create(&models.Conversation{User1ID: 1, User2ID: 2})

	if _, err := svc.SendMessage(9, 1, "hello"); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
}

func TestSendMessageUnknownConversation(t *testing.T) {
	svc, _, _, _, _, _, _, _, _ := newChatFixture()

	if _, err := svc.SendMessage(1, 99, "hello"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSendMessageOfflineRecipientGetsPush(t *testing.T) {
	svc, convRepo, _, userRepo, _, broadcaster, _, _, dispatcher := newChatFixture()
	convRepo.Create(&models.Conversation{User1ID: 1, User2ID: 2})
	userRepo.Create(&models.User{ID: 1, FirstName: "Asha", LastName: "Patel"})

	msg, err := svc.SendMessage(1, 1, "Hello")
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if msg.ReadAt != nil {
		t.Errorf("fresh message must be unread")
	}

	if len(broadcaster.Deliveries) != 1 {
		t.Fatalf("expected 1 live delivery pass, got %d", len(broadcaster.Deliveries))
	}
	if broadcaster.Deliveries[0].Event != EventReceiveMessage || broadcaster.Deliveries[0].UserID != 2 {
		t.Errorf("unexpected delivery: %+v", broadcaster.Deliveries[0])
	}

	if len(dispatcher.Calls) != 1 {
		t.Fatalf("offline recipient should trigger exactly one dispatch, got %d", len(dispatcher.Calls))
	}
	call := dispatcher.Calls[0]
	if call.UserID != 2 {
		t.Errorf("dispatched to user %d, want 2", call.UserID)
	}
	if call.Notification.Title != "New message from Asha Patel" {
		t.Errorf("unexpected title %q", call.Notification.Title)
	}
	if call.Notification.Data["conversationId"] != "1" || call.Notification.Data["url"] != "/chat/1" {
		t.Errorf("unexpected data payload: %v", call.Notification.Data)
	}
}

func TestSendMessageActiveReaderSuppressesPush(t *testing.T) {
	svc, convRepo, _, userRepo, _, _, presence, activity, dispatcher := newChatFixture()
	convRepo.Create(&models.Conversation{User1ID: 1, User2ID: 2})
	userRepo.Create(&models.User{ID: 1, FirstName: "Asha"})

	presence.Online[2] = true
	activity.Entries[2] = ActivitySnapshot{Page: "chats", ActiveConversationID: 1}

	if _, err := svc.SendMessage(1, 1, "Hello"); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if len(dispatcher.Calls) != 0 {
		t.Errorf("recipient reading this conversation must not get a push")
	}
}

func TestSendMessageOnlineElsewhereStillGetsPush(t *testing.T) {
	tests := []struct {
		name     string
		snapshot ActivitySnapshot
	}{
		{"Different page", ActivitySnapshot{Page: "market", ActiveConversationID: 1}},
		{"Different conversation", ActivitySnapshot{Page: "chats", ActiveConversationID: 8}},
		{"No activity reported", ActivitySnapshot{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, convRepo, _, userRepo, _, _, presence, activity, dispatcher := newChatFixture()
			convRepo.Create(&models.Conversation{User1ID: 1, User2ID: 2})
			userRepo.Create(&models.User{ID: 1, FirstName: "Asha"})

			presence.Online[2] = true
			activity.Entries[2] = tt.snapshot

			if _, err := svc.SendMessage(1, 1, "Hello"); err != nil {
				t.Fatalf("SendMessage error: %v", err)
			}
			if len(dispatcher.Calls) != 1 {
				t.Errorf("online-but-elsewhere recipient should get a push, got %d dispatches", len(dispatcher.Calls))
			}
		})
	}
}

func TestSendMessageProductInquiryFraming(t *testing.T) {
	svc, convRepo, _, userRepo, productRepo, _, _, _, dispatcher := newChatFixture()

	productID := uint(5)
	productRepo.Add(&models.Product{ID: 5, Title: "Tomatoes"})
	convRepo.Create(&models.Conversation{User1ID: 1, User2ID: 2, ProductID: &productID})
	userRepo.Create(&models.User{ID: 1, FirstName: "Asha"})

	if _, err := svc.SendMessage(1, 1, "Are these fresh?"); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if len(dispatcher.Calls) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(dispatcher.Calls))
	}
	if got := dispatcher.Calls[0].Notification.Title; got != "New inquiry about Tomatoes" {
		t.Errorf("title = %q, want product-inquiry framing", got)
	}
}

func TestSendMessageSurvivesDispatchFailure(t *testing.T) {
	svc, convRepo, _, userRepo, _, _, _, _, dispatcher := newChatFixture()
	convRepo.Create(&models.Conversation{User1ID: 1, User2ID: 2})
	userRepo.Create(&models.User{ID: 1})
	dispatcher.Err = errors.New("gateway down")

	msg, err := svc.SendMessage(1, 1, "Hello")
	if err != nil {
		t.Fatalf("message send must not fail on notification errors, got %v", err)
	}
	if msg == nil || msg.ID == 0 {
		t.Errorf("message was not persisted")
	}
}

func TestSendMessageTrimsContent(t *testing.T) {
	svc, convRepo, _, _, _, _, _, _, _ := newChatFixture()
	convRepo.Create(&models.Conversation{User1ID: 1, User2ID: 2})

	msg, err := svc.SendMessage(1, 1, "  hello  ")
	if err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if strings.TrimSpace(msg.Content) != msg.Content {
		t.Errorf("content not trimmed: %q", msg.Content)
	}
}

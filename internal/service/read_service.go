package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/agrilink/agrichat-backend/internal/repository"
	"gorm.io/gorm"
)

// EventMessagesSeen is broadcast to the room and sent directly to the
// original senders whenever read state is reconciled.
const EventMessagesSeen = "messagesSeen"

// MessagesSeenEvent reports a reconciliation outcome. It is emitted even when
// no rows changed so a late or duplicate mark-as-read still returns the
// current unread count.
type MessagesSeenEvent struct {
	ConversationID uint   `json:"conversationId"`
	ReaderID       uint   `json:"readerId"`
	SeenMessageIDs []uint `json:"seenMessageIds"`
	UnreadCount    int64  `json:"unreadCount"`
}

type ReadService struct {
	conversationRepo repository.ConversationRepositoryInterface
	messageRepo      repository.MessageRepositoryInterface
	broadcaster      Broadcaster
}

func NewReadService(
	conversationRepo repository.ConversationRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	broadcaster Broadcaster,
) *ReadService {
	return &ReadService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		broadcaster:      broadcaster,
	}
}

// MarkRead flips every unread message from others to read, tells the room,
// and separately tells each original sender's live connections so a sender
// not currently in the room still learns their messages were seen.
func (s *ReadService) MarkRead(conversationID, readerID uint) (*MessagesSeenEvent, error) {
	if conversationID == 0 {
		return nil, &ValidationError{Field: "conversationId"}
	}
	if readerID == 0 {
		return nil, &ValidationError{Field: "readerId"}
	}

	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
		}
		return nil, err
	}
	if !conv.HasParticipant(readerID) {
		return nil, ErrNotParticipant
	}

	rows, err := s.messageRepo.MarkConversationRead(conversationID, readerID, time.Now())
	if err != nil {
		return nil, err
	}

	// Recomputed on every call, including no-op calls.
	unread, err := s.messageRepo.CountUnread(conversationID, readerID)
	if err != nil {
		return nil, err
	}

	seenIDs := make([]uint, 0, len(rows))
	senders := make(map[uint]struct{})
	for _, row := range rows {
		seenIDs = append(seenIDs, row.MessageID)
		senders[row.SenderID] = struct{}{}
	}

	event := &MessagesSeenEvent{
		ConversationID: conversationID,
		ReaderID:       readerID,
		SeenMessageIDs: seenIDs,
		UnreadCount:    unread,
	}

	s.broadcaster.BroadcastToRoom(conversationID, EventMessagesSeen, event)
	for senderID := range senders {
		sent := s.broadcaster.SendToUser(senderID, EventMessagesSeen, event)
		log.Printf("seen receipt user_id=%d conversation_id=%d connections=%d", senderID, conversationID, sent)
	}

	return event, nil
}

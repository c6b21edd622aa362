package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/agrilink/agrichat-backend/internal/cache"
	"github.com/agrilink/agrichat-backend/internal/models"
	"github.com/agrilink/agrichat-backend/internal/repository"
	"github.com/agrilink/agrichat-backend/internal/validation"
	"gorm.io/gorm"
)

// conversationListPage is the page name clients report while the chat list is
// in the foreground. A recipient on this page with the conversation open is
// the only case where a push is suppressed.
const conversationListPage = "chats"

// EventReceiveMessage is emitted to the room and to the recipient's other
// live connections when a message is relayed.
const EventReceiveMessage = "receiveMessage"

type ChatService struct {
	conversationRepo repository.ConversationRepositoryInterface
	messageRepo      repository.MessageRepositoryInterface
	userRepo         repository.UserRepositoryInterface
	productRepo      repository.ProductRepositoryInterface

	broadcaster Broadcaster
	presence    PresenceSource
	activity    ActivitySource
	dispatcher  NotificationDispatcher
	userCache   *cache.UserCache
}

func NewChatService(
	conversationRepo repository.ConversationRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	broadcaster Broadcaster,
	presence PresenceSource,
	activity ActivitySource,
	dispatcher NotificationDispatcher,
	userCache *cache.UserCache,
) *ChatService {
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		userRepo:         userRepo,
		productRepo:      productRepo,
		broadcaster:      broadcaster,
		presence:         presence,
		activity:         activity,
		dispatcher:       dispatcher,
		userCache:        userCache,
	}
}

// FindOrCreate returns the unique non-deleted conversation for the unordered
// pair, creating it on first contact. A supplied product context is attached
// to an existing conversation when it differs from the stored one.
//
// Two racing first-contact calls can both miss the lookup and insert twice;
// the lookup-then-insert is not atomic across the store boundary. Pairs are
// stored normalized so a store-level unique index can close the race later.
func (s *ChatService) FindOrCreate(userA, userB uint, productID *uint) (*models.Conversation, error) {
	if userA == 0 {
		return nil, &ValidationError{Field: "user1Id"}
	}
	if userB == 0 {
		return nil, &ValidationError{Field: "user2Id"}
	}
	if userA == userB {
		return nil, &ValidationError{Field: "user2Id"}
	}

	conv, err := s.conversationRepo.FindByPair(userA, userB)
	if err == nil {
		if productID != nil && (conv.ProductID == nil || *conv.ProductID != *productID) {
			if err := s.conversationRepo.UpdateProduct(conv.ID, *productID); err != nil {
				// Context update is best-effort; the conversation itself is fine.
				log.Printf("failed to update product context conversation_id=%d: %v", conv.ID, err)
			} else {
				conv.ProductID = productID
			}
		}
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv = &models.Conversation{
		User1ID:       userA,
		User2ID:       userB,
		ProductID:     productID,
		LastMessageAt: time.Now(),
	}
	if err := s.conversationRepo.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// SendMessage persists and relays one message, then decides whether the
// recipient additionally needs a push notification.
func (s *ChatService) SendMessage(senderID, conversationID uint, content string) (*models.Message, error) {
	if senderID == 0 {
		return nil, &ValidationError{Field: "senderId"}
	}
	if conversationID == 0 {
		return nil, &ValidationError{Field: "conversationId"}
	}
	if !validation.ValidateMessageContent(content) {
		return nil, &ValidationError{Field: "content"}
	}

	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
		}
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        strings.TrimSpace(content),
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	if err := s.conversationRepo.TouchLastMessage(conversationID, message.CreatedAt); err != nil {
		log.Printf("failed to touch conversation %d: %v", conversationID, err)
	}

	// Reload with the sender profile for the broadcast payload.
	full, err := s.messageRepo.FindByID(message.ID)
	if err != nil {
		log.Printf("failed to reload message %d: %v", message.ID, err)
		full = message
	}

	recipientID := conv.PeerOf(senderID)

	// Deliver live wherever reachable: the room, plus every other connection
	// of the recipient, never twice to the same connection.
	delivered := s.broadcaster.DeliverToConversation(conversationID, recipientID, EventReceiveMessage, full.ToResponse())
	log.Printf("message %d relayed conversation_id=%d connections=%d", full.ID, conversationID, delivered)

	// Presence/activity snapshot is taken after live delivery on purpose;
	// a change between snapshot and send costs at most one extra or one
	// skipped push.
	if s.pushWarranted(senderID, recipientID, conversationID) {
		s.notifyRecipient(conv, full, recipientID)
	}

	return full, nil
}

// pushWarranted decides whether live delivery alone is insufficient. A push
// is suppressed only when the recipient is demonstrably looking at this exact
// conversation right now.
func (s *ChatService) pushWarranted(senderID, recipientID, conversationID uint) bool {
	if recipientID == senderID || recipientID == 0 {
		return false
	}
	if !s.presence.IsOnline(recipientID) {
		return true
	}
	act := s.activity.Snapshot(recipientID)
	if act.Page != conversationListPage {
		return true
	}
	return act.ActiveConversationID != conversationID
}

// notifyRecipient composes and dispatches the push for one message. Every
// failure here is logged and swallowed: message relay must never depend on
// notification-gateway health.
func (s *ChatService) notifyRecipient(conv *models.Conversation, message *models.Message, recipientID uint) {
	senderName := s.senderDisplayName(message.SenderID)

	productTitle := ""
	if conv.ProductID != nil {
		product, err := s.productRepo.FindByID(*conv.ProductID)
		if err != nil {
			log.Printf("failed to load product %d for notification: %v", *conv.ProductID, err)
		} else {
			productTitle = product.Title
		}
	}

	title, body := ComposeMessageNotification(senderName, message.Content, productTitle)

	convID := strconv.FormatUint(uint64(conv.ID), 10)
	result, err := s.dispatcher.DispatchToUser(recipientID, Notification{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":           "chat_message",
			"conversationId": convID,
			"senderId":       strconv.FormatUint(uint64(message.SenderID), 10),
			"url":            "/chat/" + convID,
		},
	})
	if err != nil {
		log.Printf("push dispatch failed user_id=%d conversation_id=%d: %v", recipientID, conv.ID, err)
		return
	}
	log.Printf("push dispatched user_id=%d succeeded=%d failed=%d", recipientID, result.Succeeded, result.Failed)
}

func (s *ChatService) senderDisplayName(senderID uint) string {
	if name, ok := s.userCache.DisplayName(senderID); ok {
		return name
	}
	sender, err := s.userRepo.FindByID(senderID)
	if err != nil {
		log.Printf("failed to load sender %d for notification: %v", senderID, err)
		return ""
	}
	name := sender.DisplayName()
	if err := s.userCache.SetDisplayName(senderID, name); err != nil {
		log.Printf("failed to cache display name user_id=%d: %v", senderID, err)
	}
	return name
}

// ListConversations returns the caller's conversation list with unread counts.
func (s *ChatService) ListConversations(userID uint, limit int) ([]repository.ConversationListRow, error) {
	if userID == 0 {
		return nil, &ValidationError{Field: "userId"}
	}
	return s.conversationRepo.ListForUser(userID, limit)
}

// GetMessages returns a page of a conversation's history, oldest first. The
// caller must be a participant.
func (s *ChatService) GetMessages(userID, conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	conv, err := s.conversationRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation %d: %w", conversationID, ErrNotFound)
		}
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return s.messageRepo.FindByConversation(conversationID, cursor, limit)
}

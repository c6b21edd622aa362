package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agrilink/agrichat-backend/internal/httpx"
	"github.com/agrilink/agrichat-backend/internal/models"
	"github.com/agrilink/agrichat-backend/internal/repository"
	"github.com/agrilink/agrichat-backend/internal/service"
)

type ConversationHandler struct {
	chatService *service.ChatService
	readService *service.ReadService
}

func NewConversationHandler(chatService *service.ChatService, readService *service.ReadService) *ConversationHandler {
	return &ConversationHandler{
		chatService: chatService,
		readService: readService,
	}
}

// conversationListItem is the REST shape of one conversation-list row.
type conversationListItem struct {
	ConversationID uint      `json:"conversationId"`
	ProductID      *uint     `json:"productId,omitempty"`
	LastMessageAt  time.Time `json:"lastMessageAt"`

	Peer struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"peer"`

	LastMessage struct {
		ID       uint   `json:"id"`
		SenderID uint   `json:"senderId"`
		Content  string `json:"content"`
		Read     bool   `json:"read"`
	} `json:"lastMessage"`

	UnreadCount int64 `json:"unreadCount"`
}

func toListItem(row repository.ConversationListRow) conversationListItem {
	var item conversationListItem
	item.ConversationID = row.ConversationID
	item.ProductID = row.ProductID
	item.LastMessageAt = row.LastMessageAt
	item.Peer.ID = row.PeerID
	item.Peer.Name = strings.TrimSpace(row.PeerFirstName + " " + row.PeerLastName)
	item.LastMessage.ID = row.LastMessageID
	item.LastMessage.SenderID = row.LastMessageSenderID
	item.LastMessage.Content = row.LastMessageContent
	item.LastMessage.Read = row.LastMessageReadAt != nil
	item.UnreadCount = row.UnreadCount
	return item
}

func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	rows, err := h.chatService.ListConversations(userID, limit)
	if err != nil {
		return httpx.Internal(c, "list_conversations_failed")
	}

	items := make([]conversationListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toListItem(row))
	}
	return c.JSON(fiber.Map{"conversations": items})
}

func (h *ConversationHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	conversationID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || conversationID == 0 {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	cursor, _ := strconv.ParseUint(c.Query("before", "0"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	messages, err := h.chatService.GetMessages(userID, uint(conversationID), uint(cursor), limit)
	if err != nil {
		return mapChatError(c, err, "get_messages_failed")
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, m.ToResponse())
	}
	return c.JSON(fiber.Map{"messages": responses})
}

type findOrCreateInput struct {
	User1ID   uint  `json:"user1Id"`
	User2ID   uint  `json:"user2Id"`
	ProductID *uint `json:"productId"`
}

func (h *ConversationHandler) FindOrCreate(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input findOrCreateInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if userID != input.User1ID && userID != input.User2ID {
		return httpx.Forbidden(c, "not_participant", "You must be one of the participants")
	}

	conv, err := h.chatService.FindOrCreate(input.User1ID, input.User2ID, input.ProductID)
	if err != nil {
		return mapChatError(c, err, "find_or_create_failed")
	}

	return c.JSON(conv.ToResponse())
}

func (h *ConversationHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	conversationID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || conversationID == 0 {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	event, err := h.readService.MarkRead(uint(conversationID), userID)
	if err != nil {
		return mapChatError(c, err, "mark_read_failed")
	}

	return c.JSON(event)
}

func mapChatError(c *fiber.Ctx, err error, fallbackCode string) error {
	switch {
	case service.IsValidation(err):
		return httpx.BadRequest(c, "invalid_input", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return httpx.NotFound(c, "not_found", "Conversation not found")
	case errors.Is(err, service.ErrNotParticipant):
		return httpx.Forbidden(c, "not_participant", "You are not part of this conversation")
	default:
		return httpx.Internal(c, fallbackCode)
	}
}

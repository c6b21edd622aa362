package ws

import (
	"errors"
	"log"

	"github.com/agrilink/agrichat-backend/internal/service"
)

// MessageSend carries a chat message into a conversation. Delivery fan-out
// and the push decision happen in the chat service; a processing error here
// is reported back on this connection only.
type MessageSend struct {
	SenderID       uint   `json:"senderId"`
	ConversationID uint   `json:"conversationId"`
	Content        string `json:"content"`
}

func (msg *MessageSend) GetType() string {
	return "sendMessage"
}

func (msg *MessageSend) Process(ctx *MessageContext) error {
	if msg.SenderID != 0 && msg.SenderID != ctx.UserID {
		return errors.New("cannot send a message as another user")
	}

	_, err := ctx.Chat.SendMessage(ctx.UserID, msg.ConversationID, msg.Content)
	if err != nil {
		log.Printf("sendMessage failed for user %d in conversation %d: %v", ctx.UserID, msg.ConversationID, err)
		return mapServiceError(err)
	}
	return nil
}

// mapServiceError keeps client-facing errors terse while the log carries the
// full cause.
func mapServiceError(err error) error {
	switch {
	case service.IsValidation(err):
		return err
	case errors.Is(err, service.ErrNotFound):
		return errors.New("conversation not found")
	case errors.Is(err, service.ErrNotParticipant):
		return errors.New("not a participant of this conversation")
	default:
		return errors.New("message could not be processed")
	}
}

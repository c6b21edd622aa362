package ws

import (
	"errors"
	"log"
)

// MessageMarkRead marks every unread message from the other participant as
// read. The reader is always the socket owner.
type MessageMarkRead struct {
	ConversationID uint `json:"conversationId"`
	ReaderID       uint `json:"readerId"`
}

func (msg *MessageMarkRead) GetType() string {
	return "markAsRead"
}

func (msg *MessageMarkRead) Process(ctx *MessageContext) error {
	if msg.ReaderID != 0 && msg.ReaderID != ctx.UserID {
		return errors.New("cannot mark messages read for another user")
	}

	_, err := ctx.Reads.MarkRead(msg.ConversationID, ctx.UserID)
	if err != nil {
		log.Printf("markAsRead failed for user %d in conversation %d: %v", ctx.UserID, msg.ConversationID, err)
		return mapServiceError(err)
	}
	return nil
}

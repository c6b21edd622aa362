package ws

import (
	"errors"
	"log"
)

// MessageFindOrCreate resolves the conversation between two users, creating
// it when missing. The caller must be one of the pair. The acknowledgment
// carries the conversation id, or an error marker when resolution failed.
type MessageFindOrCreate struct {
	User1ID   uint  `json:"user1Id"`
	User2ID   uint  `json:"user2Id"`
	ProductID *uint `json:"productId"`
}

func (msg *MessageFindOrCreate) GetType() string {
	return "findOrCreateConversation"
}

func (msg *MessageFindOrCreate) Process(ctx *MessageContext) error {
	if ctx.UserID != msg.User1ID && ctx.UserID != msg.User2ID {
		return errors.New("cannot open a conversation you are not part of")
	}

	conv, err := ctx.Chat.FindOrCreate(msg.User1ID, msg.User2ID, msg.ProductID)
	if err != nil {
		log.Printf("findOrCreateConversation failed for users %d/%d: %v", msg.User1ID, msg.User2ID, err)
		ctx.Hub.SendToConn(ctx.ConnID, "conversationReady", map[string]interface{}{
			"error": true,
		})
		return mapServiceError(err)
	}

	ctx.Hub.SendToConn(ctx.ConnID, "conversationReady", map[string]interface{}{
		"conversationId": conv.ID,
	})
	return nil
}

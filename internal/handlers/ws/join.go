package ws

import "errors"

// MessageJoinConversation subscribes this connection to a conversation room.
// Joining is pure transport grouping; participant checks happen when
// messages are sent or read, not here.
type MessageJoinConversation struct {
	ConversationID uint `json:"conversationId"`
}

func (msg *MessageJoinConversation) GetType() string {
	return "join_conversation"
}

func (msg *MessageJoinConversation) Process(ctx *MessageContext) error {
	if !ctx.Hub.JoinConversation(ctx.ConnID, msg.ConversationID) {
		return errors.New("invalid conversation id")
	}

	ctx.Hub.SendToConn(ctx.ConnID, "joined", map[string]interface{}{
		"conversationId": msg.ConversationID,
		"joined":         true,
	})
	return nil
}

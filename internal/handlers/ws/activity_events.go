package ws

// MessagePage reports which app page the user is currently viewing. The
// payload's userId is informational; the tracked user is the socket owner.
type MessagePage struct {
	UserID uint   `json:"userId"`
	Page   string `json:"page"`
}

func (msg *MessagePage) GetType() string {
	return "user:page"
}

func (msg *MessagePage) Process(ctx *MessageContext) error {
	ctx.Hub.SetPage(ctx.UserID, msg.Page)
	return nil
}

// MessageActiveConversation reports that the user opened or left a
// conversation view. active=false clears the marker.
type MessageActiveConversation struct {
	UserID         uint `json:"userId"`
	ConversationID uint `json:"conversationId"`
	Active         bool `json:"active"`
}

func (msg *MessageActiveConversation) GetType() string {
	return "user:conversation"
}

func (msg *MessageActiveConversation) Process(ctx *MessageContext) error {
	conversationID := msg.ConversationID
	if !msg.Active {
		conversationID = 0
	}
	ctx.Hub.SetActiveConversation(ctx.UserID, conversationID)
	return nil
}

package service

// Broadcaster is the live-delivery surface the routing services need from the
// websocket hub. Payloads are wrapped in the {type, payload} envelope by the
// implementation.
type Broadcaster interface {
	// BroadcastToRoom sends to every connection subscribed to the conversation room.
	BroadcastToRoom(conversationID uint, event string, payload interface{})
	// DeliverToConversation sends to the room plus every live connection of
	// the given user not already reachable via the room, exactly once per
	// connection. Returns the number of connections written to.
	DeliverToConversation(conversationID uint, userID uint, event string, payload interface{}) int
	// SendToUser sends directly to every live connection of the user.
	SendToUser(userID uint, event string, payload interface{}) int
}

// PresenceSource answers live-reachability questions.
type PresenceSource interface {
	IsOnline(userID uint) bool
}

// ActivitySnapshot is a user's last-reported UI focus. Zero values mean
// "unknown"; consumers must tolerate staleness.
type ActivitySnapshot struct {
	Page                 string
	ActiveConversationID uint
}

// ActivitySource exposes the activity tracker to the dispatch policy.
type ActivitySource interface {
	Snapshot(userID uint) ActivitySnapshot
}

// NotificationDispatcher fans a notification out across a user's devices.
type NotificationDispatcher interface {
	DispatchToUser(userID uint, n Notification) (DispatchResult, error)
}

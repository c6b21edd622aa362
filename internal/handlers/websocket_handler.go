package handlers

import (
	"log"
	"os"

	"github.com/gofiber/websocket/v2"

	"github.com/agrilink/agrichat-backend/internal/handlers/ws"
	"github.com/agrilink/agrichat-backend/internal/service"
)

type WebSocketHandler struct {
	chatService *service.ChatService
	readService *service.ReadService
	hub         *ws.Hub
}

// NewWebSocketHandler wires the read loop to an existing hub. The hub is
// built before the services because they broadcast through it.
func NewWebSocketHandler(hub *ws.Hub, chatService *service.ChatService, readService *service.ReadService) *WebSocketHandler {
	return &WebSocketHandler{
		chatService: chatService,
		readService: readService,
		hub:         hub,
	}
}

// GetHub returns the hub instance (useful for sending messages from other handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)
	wsDebug := os.Getenv("WS_DEBUG") == "true"

	client := h.hub.Attach(c)

	// Presence starts when the client sends registerUser, not on attach, so
	// a freshly upgraded socket that never announces itself stays invisible.
	defer func() {
		ownerID, wentOffline, lastSeen := h.hub.Detach(client.ID)
		if wentOffline {
			h.hub.BroadcastAll(ws.EventOnlineStatus, ws.OnlineStatus{
				UserID:   ownerID,
				Online:   false,
				LastSeen: &lastSeen,
			})
		}
	}()

	log.Printf("User %d connected via WebSocket (conn %s)", userID, client.ID)

	ctx := &ws.MessageContext{
		ConnID: client.ID,
		UserID: userID,
		Conn:   c,
		Hub:    h.hub,
		Chat:   h.chatService,
		Reads:  h.readService,
	}

	for {
		messageType, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %d: %v", userID, err)
			break
		}

		if wsDebug {
			log.Printf("ws_recv user_id=%d frame_type=%d size=%d", userID, messageType, len(messageBytes))
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %d: %v", userID, err)
			ctx.SendError("invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %d: %v", msg.GetType(), userID, err)
			ctx.SendError("processing_failed", "Failed to process message", err.Error())
		}
	}

	log.Printf("User %d disconnected from WebSocket (conn %s)", userID, client.ID)
}

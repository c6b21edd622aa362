package ws

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/gofiber/websocket/v2"

	"github.com/agrilink/agrichat-backend/internal/service"
)

// MessageContext provides all dependencies needed for message processing.
// UserID is the authenticated socket owner from the JWT, not whatever the
// payload claims.
type MessageContext struct {
	ConnID string
	UserID uint
	Conn   *websocket.Conn
	Hub    *Hub
	Chat   *service.ChatService
	Reads  *service.ReadService
}

// Message interface for all WebSocket message types
type Message interface {
	GetType() string
	Process(ctx *MessageContext) error
}

// SerializedMessage is the wire format wrapper
type SerializedMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ErrorResponse is sent when message processing fails
type ErrorResponse struct {
	Type    string `json:"type"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

func ToJson(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func FromJson(jsonBytes []byte, msg Message) error {
	return json.Unmarshal(jsonBytes, msg)
}

func CreateMessage(msgType string, typeRegistry map[string]reflect.Type) (Message, error) {
	msgTypeReflect, ok := typeRegistry[msgType]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msgType)
	}

	instance := reflect.New(msgTypeReflect).Interface()
	return instance.(Message), nil
}

// SendError sends an error response to the client through the hub's
// serialized write path. Errors go unwrapped, the type lives on the object
// itself.
func (ctx *MessageContext) SendError(code, message, details string) {
	ctx.Hub.SendRaw(ctx.ConnID, ErrorResponse{
		Type:    "error",
		Error:   message,
		Code:    code,
		Details: details,
	})
}

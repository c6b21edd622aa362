package ws

import (
	"reflect"
)

var typeRegistry = map[string]reflect.Type{}

func init() {
	// Register all message types
	RegisterType(&MessageRegister{})
	RegisterType(&MessageUserOnline{})
	RegisterType(&MessageJoinConversation{})
	RegisterType(&MessagePage{})
	RegisterType(&MessageActiveConversation{})
	RegisterType(&MessageSend{})
	RegisterType(&MessageMarkRead{})
	RegisterType(&MessageFindOrCreate{})
	RegisterType(&MessagePing{})
	RegisterType(&MessagePong{})
}

func RegisterType(msg Message) {
	typeRegistry[msg.GetType()] = reflect.TypeOf(msg).Elem()
}

// GetTypeRegistry returns the type registry for testing
func GetTypeRegistry() map[string]reflect.Type {
	return typeRegistry
}

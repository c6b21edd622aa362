package ws

import "encoding/json"

// Serialize wraps a typed message in the wire envelope. Outbound server
// events normally go through the hub's encodeEvent; this exists for tests
// and for echoing typed messages back verbatim.
func Serialize(msg Message) ([]byte, error) {
	payload, err := ToJson(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SerializedMessage{
		Type:    msg.GetType(),
		Payload: payload,
	})
}

// Deserialize decodes one inbound frame: envelope first, then the payload
// into the registered type for the envelope's type string. Unknown types and
// mistyped payloads are both rejected.
func Deserialize(jsonBytes []byte) (Message, error) {
	var wrapper SerializedMessage
	if err := json.Unmarshal(jsonBytes, &wrapper); err != nil {
		return nil, err
	}

	msg, err := CreateMessage(wrapper.Type, typeRegistry)
	if err != nil {
		return nil, err
	}
	if err := FromJson(wrapper.Payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

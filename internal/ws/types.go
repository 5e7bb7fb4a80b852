package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	MessageTypeMove            MessageType = "move"
	MessageTypePromote         MessageType = "promote"
	MessageTypeCancelPromotion MessageType = "cancelPromotion"
	MessageTypeEngineMove      MessageType = "engineMove"
	MessageTypeGameState       MessageType = "gameState"
	MessageTypeError           MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PromotePayload carries the chosen piece, by name ("queen") or letter ("q").
type PromotePayload struct {
	Piece string `json:"piece"`
}

// ErrorPayload reports a failed request. Reason is set for rejected moves.
type ErrorPayload struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// NewMessage encodes v as the payload of a message of type t.
func NewMessage(t MessageType, v any) (Message, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: payload}, nil
}

package websocket

import (
	"encoding/json"
	"fmt"
)

const (
	actionConnect   = "connect"
	actionUtterance = "utterance"
	actionSay       = "say"
	actionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Error     string `json:"error,omitempty"`
}

func marshalMessage(action string, payload Payload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

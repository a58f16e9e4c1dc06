package server

import (
	"encoding/json"
	"time"

	"github.com/gnpanschur/Schwimmen/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(m.Data, v)
}

// Server → Client Messages

type RoomCreatedData struct {
	RoomID   string        `json:"roomId"`
	PlayerID game.PlayerID `json:"playerId"`
}

type RoomJoinedData struct {
	RoomID   string        `json:"roomId"`
	PlayerID game.PlayerID `json:"playerId"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ToastData struct {
	Message string `json:"message"`
}

type PlayerJoinedData struct {
	Name string `json:"name"`
}

type PlayerLeftData struct {
	Name string `json:"name"`
}

// StateData is the per-recipient room snapshot.
type StateData = game.Snapshot

package twink

import (
	"encoding/json"
	"time"
)

// Frame type discriminators. Every frame on the live channel is a flat JSON
// object tagged by a "type" field.
const (
	frameChat     = "chat"
	frameRead     = "read"
	frameReadAck  = "read-ack"
	framePresence = "presence"
)

// Frame is a raw inbound frame from the live channel: the discriminator plus
// the undecoded body. The dispatcher decodes Raw per Type.
type Frame struct {
	Type string
	Raw  json.RawMessage
}

// frameHeader is used to peek at the discriminator before a full decode.
type frameHeader struct {
	Type string `json:"type"`
}

// chatFrame is the outbound chat payload.
type chatFrame struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// readFrame acknowledges that a received message has been seen locally.
type readFrame struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id,omitempty"`
}

// ChatEvent is an inbound chat frame. The server does not always populate ID,
// Read or AvatarURL; zero values are expected.
type ChatEvent struct {
	ID          json.Number `json:"id"`
	Sender      string      `json:"sender"`
	DisplayName string      `json:"display_name"`
	Message     string      `json:"message"`
	Timestamp   time.Time   `json:"timestamp"`
	Read        bool        `json:"read"`
	AvatarURL   string      `json:"avatar_url"`
}

// ReadAckEvent is an inbound read acknowledgment. MessageID is empty when the
// server acknowledges without correlating a specific message.
type ReadAckEvent struct {
	MessageID json.Number `json:"message_id"`
}

// UnmarshalData decodes RawMessage into target.
func UnmarshalData(data json.RawMessage, v any) error {
	return json.Unmarshal(data, v)
}

package rest

import (
	"encoding/json"
	"time"
)

// HistoryMessage is a single entry of a room's stored history, oldest first.
type HistoryMessage struct {
	Sender      string    `json:"sender"`
	DisplayName string    `json:"display_name"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
	AvatarURL   string    `json:"avatar_url"`
}

// historyResponse wraps the room history payload.
type historyResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

// sendMessageRequest is the fallback delivery request body.
type sendMessageRequest struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// StoredMessage echoes the message as the server stored it.
type StoredMessage struct {
	ID        json.Number `json:"id"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// SendResult confirms the server accepted a fallback send for storage. It
// says nothing about the recipient's read state.
type SendResult struct {
	OK      bool          `json:"ok"`
	Message StoredMessage `json:"message"`
}

// UserSummary is one entry of a user search result.
type UserSummary struct {
	ID          json.Number `json:"id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name"`
	Bio         string      `json:"bio"`
}

// searchResponse wraps the user search payload.
type searchResponse struct {
	Results []UserSummary `json:"results"`
}

// PersonalRoomInfo is the canonical one-to-one room for the current user and
// a peer.
type PersonalRoomInfo struct {
	Room  string `json:"room"`
	Other string `json:"other"`
}

// usernameCheckResponse wraps the username existence check payload.
type usernameCheckResponse struct {
	Exists bool `json:"exists"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

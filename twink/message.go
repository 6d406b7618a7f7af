package twink

import "time"

// Origin tells where a message entered the timeline.
type Origin int

const (
	// OriginRemote is a message authored by another user, delivered via
	// history fetch or a live chat frame.
	OriginRemote Origin = iota

	// OriginLocalPending is a locally authored message appended before any
	// server confirmation.
	OriginLocalPending

	// OriginLocalConfirmed is a locally authored message whose server echo
	// has been observed and carries the server-assigned id.
	OriginLocalConfirmed
)

// String returns the string representation of an Origin.
func (o Origin) String() string {
	switch o {
	case OriginRemote:
		return "remote"
	case OriginLocalPending:
		return "local-pending"
	case OriginLocalConfirmed:
		return "local-confirmed"
	default:
		return "unknown"
	}
}

// Message is one entry in a room's timeline. Once appended it is never
// removed; the only mutable field is Read, which transitions false->true
// exactly once.
type Message struct {
	// LocalID is assigned at creation for locally authored messages and is
	// stable across the message's life. Empty for remote messages.
	LocalID string

	// ServerID is the server-assigned identifier. Empty until the server
	// confirms a locally authored message.
	ServerID string

	Sender      string
	DisplayName string
	Body        string
	Timestamp   time.Time
	AvatarURL   string
	Origin      Origin
	Read        bool
}

// ID returns the server id when known, falling back to the local id.
func (m *Message) ID() string {
	if m.ServerID != "" {
		return m.ServerID
	}
	return m.LocalID
}

// Mine reports whether the message was authored locally.
func (m *Message) Mine() bool {
	return m.Origin != OriginRemote
}

package twink

// ChannelState represents the lifecycle of one live channel instance.
// A channel is one-shot: once Closed it never reopens.
type ChannelState int

const (
	// ChannelClosed means the channel is not connected. Terminal once the
	// channel has been open.
	ChannelClosed ChannelState = iota

	// ChannelConnecting means the channel is establishing a connection.
	ChannelConnecting

	// ChannelOpen means the channel is connected and accepting sends.
	ChannelOpen
)

// String returns the string representation of a ChannelState.
func (s ChannelState) String() string {
	switch s {
	case ChannelClosed:
		return "closed"
	case ChannelConnecting:
		return "connecting"
	case ChannelOpen:
		return "open"
	default:
		return "unknown"
	}
}

// SessionState represents the orchestration state of a ChatSession.
type SessionState int

const (
	// NoRoomOpen means no room has been opened yet, or the session is closed.
	NoRoomOpen SessionState = iota

	// RoomLoading means a room switch is in progress: the previous channel
	// has been invalidated and history is being fetched.
	RoomLoading

	// RoomActive means a room is open and sends are accepted, with or
	// without a live channel.
	RoomActive
)

// String returns the string representation of a SessionState.
func (s SessionState) String() string {
	switch s {
	case NoRoomOpen:
		return "no_room_open"
	case RoomLoading:
		return "room_loading"
	case RoomActive:
		return "room_active"
	default:
		return "unknown"
	}
}

package twink

import "time"

// Config controls how the session connects.
type Config struct {
	// SocketBaseURL is the websocket origin, e.g. "ws://localhost:8000".
	// Rooms connect at <SocketBaseURL>/ws/chat/<room>/.
	SocketBaseURL string

	// Username is the local identity; inbound chat frames from this sender
	// are treated as echoes of our own sends.
	Username string

	// DisplayName is attached to locally authored messages for rendering.
	// Falls back to Username when empty.
	DisplayName string

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration

	// ReadPromotionDelay is how long after a successful fallback send the
	// newest pending local message is optimistically marked read. The
	// fallback transport cannot observe real read state; this is a
	// documented approximation, not a guarantee.
	ReadPromotionDelay time.Duration
}

// DefaultConfig returns sensible defaults.
// Set a timeout to 0 to disable it.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:   10 * time.Second,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       10 * time.Second,
		ReadPromotionDelay: time.Second,
	}
}

func (c Config) displayName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Username
}

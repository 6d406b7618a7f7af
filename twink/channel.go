package twink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/twink-chat/twink-client-go/twink/internal"

	"github.com/coder/websocket"
)

// Channel is one live connection to one room. It is one-shot: Closed ->
// Connecting -> Open -> Closed, and a closed channel never reopens. A room
// switch discards the channel and dials a fresh one.
//
// Inbound frames go to the single listener registered at construction. The
// channel delivers frames in arrival order and does not reorder; ordering is
// whatever the underlying connection delivers.
type Channel struct {
	cfg      Config
	room     string
	gen      uint64
	logger   Logger
	listener func(Frame)

	writeCh chan any

	mu     sync.Mutex
	state  ChannelState
	closed bool
	conn   *internal.Conn
	cancel context.CancelFunc
}

func newChannel(cfg Config, room string, gen uint64, listener func(Frame), logger Logger) *Channel {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Channel{
		cfg:      cfg,
		room:     room,
		gen:      gen,
		logger:   logger,
		listener: listener,
		writeCh:  make(chan any, 16),
	}
}

// Room returns the room this channel is bound to.
func (c *Channel) Room() string { return c.room }

// Generation returns the channel's generation number. The session advances
// its current generation on every room switch; events from an older
// generation are discarded.
func (c *Channel) Generation() uint64 { return c.gen }

// State returns the current lifecycle state.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open dials the room's websocket endpoint and starts the read and write
// loops. Close during Open forces the channel to Closed and suppresses the
// Open transition, so a connect can never race a later room switch.
func (c *Channel) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewError(ErrorTransportOpenFailed, "channel closed")
	}
	if c.state != ChannelClosed {
		c.mu.Unlock()
		return NewError(ErrorTransportOpenFailed, "channel already opened")
	}
	c.state = ChannelConnecting
	c.mu.Unlock()

	if c.cfg.SocketBaseURL == "" {
		c.forceClosed()
		return NewError(ErrorInvalidConfig, "empty socket base URL")
	}
	target := strings.TrimRight(c.cfg.SocketBaseURL, "/") + "/ws/chat/" + url.PathEscape(c.room) + "/"

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, target, nil)
	if err != nil {
		c.forceClosed()
		return WrapError(ErrorTransportOpenFailed, "dial "+target, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.closed {
		// Close raced the dial; drop the connection without going Open.
		c.mu.Unlock()
		cancel()
		_ = ws.Close(websocket.StatusGoingAway, "superseded")
		return NewError(ErrorTransportOpenFailed, "closed while connecting")
	}
	c.conn = internal.NewConn(ws, c.cfg.ReadTimeout, c.cfg.WriteTimeout)
	c.cancel = cancel
	c.state = ChannelOpen
	c.mu.Unlock()

	go c.readLoop(runCtx)
	go c.writeLoop(runCtx)
	return nil
}

// Send queues a frame for delivery. Fails with ErrorTransportUnavailable
// unless the channel is Open.
func (c *Channel) Send(ctx context.Context, v any) error {
	c.mu.Lock()
	open := c.state == ChannelOpen
	c.mu.Unlock()
	if !open {
		return NewError(ErrorTransportUnavailable, "channel not open")
	}

	select {
	case c.writeCh <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts the channel down. Idempotent; safe to call in any state.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.state = ChannelClosed
	if c.cancel != nil {
		c.cancel()
	}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "channel close")
	}
	return nil
}

// forceClosed marks the channel Closed after a failed or aborted connect.
func (c *Channel) forceClosed() {
	c.mu.Lock()
	c.closed = true
	c.state = ChannelClosed
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
}

func (c *Channel) readLoop(ctx context.Context) {
	for {
		raw, err := c.conn.Read(ctx)
		if err != nil {
			if !isExpectedDisconnect(ctx, err) {
				c.logger.Warn("read loop exit", map[string]any{"room": c.room, "error": err.Error()})
			}
			c.forceClosed()
			return
		}
		var hdr frameHeader
		if err := json.Unmarshal(raw, &hdr); err != nil {
			c.logger.Debug("dropping unparseable frame", map[string]any{"room": c.room, "error": err.Error()})
			continue
		}
		c.listener(Frame{Type: hdr.Type, Raw: raw})
	}
}

func (c *Channel) writeLoop(ctx context.Context) {
	for {
		select {
		case v := <-c.writeCh:
			if err := c.conn.Write(ctx, v); err != nil {
				c.logger.Warn("write loop exit", map[string]any{"room": c.room, "error": err.Error()})
				c.forceClosed()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}

package twink

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/twink-chat/twink-client-go/twink/rest"

	"github.com/google/uuid"
)

// API is the request/response surface the session depends on: history fetch,
// fallback delivery, and one-to-one room resolution. *rest.Client satisfies
// it.
type API interface {
	RoomMessages(ctx context.Context, room string) ([]rest.HistoryMessage, error)
	SendMessage(ctx context.Context, room, text string) (*rest.SendResult, error)
	PersonalRoom(ctx context.Context, username string) (*rest.PersonalRoomInfo, error)
}

// liveChannel is the slice of Channel the session drives.
type liveChannel interface {
	State() ChannelState
	Send(ctx context.Context, v any) error
	Close() error
}

// dialFunc opens a live channel for a room. Swapped out in tests.
type dialFunc func(ctx context.Context, cfg Config, room string, gen uint64, listener func(Frame), logger Logger) (liveChannel, error)

func defaultDial(ctx context.Context, cfg Config, room string, gen uint64, listener func(Frame), logger Logger) (liveChannel, error) {
	ch := newChannel(cfg, room, gen, listener, logger)
	if err := ch.Open(ctx); err != nil {
		return nil, err
	}
	return ch, nil
}

// Session orchestrates one open room at a time: it merges history with live
// events, routes outgoing sends over the live channel with request/response
// fallback, and reconciles read-receipt state.
//
// All store and pending-set mutation happens under the session's own lock,
// and every inbound handler closes over the channel generation it was
// registered with: events from a superseded channel are discarded even when
// they arrive after a newer room has opened.
type Session struct {
	cfg       Config
	api       API
	logger    Logger
	dial      dialFunc
	afterFunc func(d time.Duration, fn func()) *time.Timer

	mu      sync.Mutex
	state   SessionState
	room    string
	label   string
	gen     uint64
	channel liveChannel
	store   *Store

	onMessage  func(*Message)
	onRead     func(*Message)
	onPresence func(json.RawMessage)
	onError    func(error)
}

// NewSession constructs a session over the given API surface.
// Use DefaultConfig() as a starting point and modify as needed.
func NewSession(cfg Config, api API) *Session {
	return &Session{
		cfg:       cfg,
		api:       api,
		logger:    noopLogger{},
		dial:      defaultDial,
		afterFunc: time.AfterFunc,
		store:     NewStore(),
	}
}

// SetLogger overrides logger (optional).
func (s *Session) SetLogger(l Logger) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.logger = l
	s.mu.Unlock()
}

// OnMessage registers the callback for messages entering the timeline, both
// remote arrivals and optimistic local appends. The message pointer stays
// live: a later read-receipt mutates its Read flag.
func (s *Session) OnMessage(fn func(*Message)) {
	s.mu.Lock()
	s.onMessage = fn
	s.mu.Unlock()
}

// OnRead registers the callback for read-flag promotions.
func (s *Session) OnRead(fn func(*Message)) {
	s.mu.Lock()
	s.onRead = fn
	s.mu.Unlock()
}

// OnPresence registers the callback for presence frames, forwarded undecoded.
func (s *Session) OnPresence(fn func(json.RawMessage)) {
	s.mu.Lock()
	s.onPresence = fn
	s.mu.Unlock()
}

// OnError registers the callback for asynchronous errors (frame decode
// failures, live-channel errors). Send failures are returned from SendText
// instead.
func (s *Session) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// State returns the current orchestration state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room returns the identifier of the open room, or "".
func (s *Session) Room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// Label returns the display label of the open room.
func (s *Session) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// Live reports whether the open room has a live channel in the Open state.
func (s *Session) Live() bool {
	s.mu.Lock()
	ch := s.channel
	s.mu.Unlock()
	return ch != nil && ch.State() == ChannelOpen
}

// Messages returns a snapshot of the open room's timeline in arrival order.
func (s *Session) Messages() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.store.Messages()
	out := make([]*Message, len(msgs))
	copy(out, msgs)
	return out
}

// PendingCount returns the number of local sends still awaiting a read ack.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.PendingCount()
}

// OpenRoom switches the session to a room: the previous channel is
// invalidated first, then the store is reset, history is fetched, and a
// fresh live channel is dialed.
//
// History fetch failure is non-fatal; the room opens with an empty timeline.
// Channel open failure is non-fatal; the room stays active in fallback-only
// mode and the next room switch re-attempts.
func (s *Session) OpenRoom(ctx context.Context, room, label string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	old := s.channel
	s.channel = nil
	s.state = RoomLoading
	s.room = room
	s.label = label
	s.store.Reset()
	logger := s.logger
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}

	history, err := s.api.RoomMessages(ctx, room)
	var appended []*Message
	s.mu.Lock()
	if s.gen != gen {
		// Superseded by a newer OpenRoom while fetching.
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		logger.Warn("history fetch failed", map[string]any{"room": room, "error": err.Error()})
	} else {
		for _, h := range history {
			m := &Message{
				Sender:      h.Sender,
				DisplayName: h.DisplayName,
				Body:        h.Content,
				Timestamp:   h.Timestamp,
				AvatarURL:   h.AvatarURL,
				Origin:      OriginRemote,
				Read:        h.Read,
			}
			s.store.Append(m)
			appended = append(appended, m)
		}
	}
	s.state = RoomActive
	s.mu.Unlock()

	for _, m := range appended {
		s.fireMessage(m)
	}

	d := &Dispatcher{}
	d.SetOnChat(func(ev ChatEvent) { s.handleChat(gen, ev) })
	d.SetOnReadAck(func(ev ReadAckEvent) { s.handleReadAck(gen, ev) })
	d.SetOnPresence(func(raw json.RawMessage) { s.handlePresence(gen, raw) })
	d.SetOnError(s.fireError)

	ch, err := s.dial(ctx, s.cfg, room, gen, d.Dispatch, logger)
	if err != nil {
		logger.Warn("live channel unavailable, fallback only", map[string]any{"room": room, "error": err.Error()})
		return nil
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		_ = ch.Close()
		return nil
	}
	s.channel = ch
	s.mu.Unlock()
	return nil
}

// OpenPersonalChat resolves the canonical one-to-one room with a user and
// opens it. The label falls back to the resolved peer username.
func (s *Session) OpenPersonalChat(ctx context.Context, username, label string) error {
	info, err := s.api.PersonalRoom(ctx, username)
	if err != nil {
		return WrapError(ErrorDeliveryFailed, "resolve personal room for "+username, err)
	}
	if label == "" {
		label = info.Other
	}
	return s.OpenRoom(ctx, info.Room, label)
}

// SendText delivers a message to the open room. The local message is
// appended, and surfaced via OnMessage, before any network call: the UI
// reflects the send immediately regardless of transport outcome.
//
// The live channel is tried first; when it is not Open or the send fails
// synchronously, the fallback carries the message exactly once. A successful
// fallback arms the timed read promotion, since that path can never observe
// a real read ack.
//
// A no-op outside RoomActive, or when the text is empty after trimming.
func (s *Session) SendText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if s.state != RoomActive || text == "" {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	room := s.room
	m := &Message{
		LocalID:     uuid.NewString(),
		Sender:      s.cfg.Username,
		DisplayName: s.cfg.displayName(),
		Body:        text,
		Timestamp:   time.Now().UTC(),
		Origin:      OriginLocalPending,
	}
	s.store.Append(m)
	ch := s.channel
	logger := s.logger
	s.mu.Unlock()

	s.fireMessage(m)

	if ch != nil {
		err := ch.Send(ctx, chatFrame{Type: frameChat, Message: text, Timestamp: m.Timestamp})
		if err == nil {
			return nil
		}
		logger.Debug("live send failed, using fallback", map[string]any{"room": room, "error": err.Error()})
	}

	res, err := s.api.SendMessage(ctx, room, text)
	if err != nil {
		return WrapError(ErrorDeliveryFailed, "send to room "+room, err)
	}
	if !res.OK {
		return NewError(ErrorDeliveryFailed, "server rejected message for room "+room)
	}

	s.schedulePromotion(gen, m)
	return nil
}

// Close tears down the open room and its channel. The session can open a new
// room afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	s.gen++
	ch := s.channel
	s.channel = nil
	s.state = NoRoomOpen
	s.room = ""
	s.label = ""
	s.store.Reset()
	s.mu.Unlock()

	if ch != nil {
		return ch.Close()
	}
	return nil
}

// handleChat merges an inbound chat frame into the timeline. An echo of our
// own pending send is folded into the existing entry instead of appended
// twice; a remote message is appended and acknowledged with a fire-and-forget
// read frame.
func (s *Session) handleChat(gen uint64, ev ChatEvent) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	id := ev.ID.String()

	if ev.Sender != "" && ev.Sender == s.cfg.Username {
		if m := s.store.ConfirmLocal(id); m != nil {
			s.mu.Unlock()
			return
		}
		// Our identity but nothing pending: a send from another device.
		m := messageFromEvent(ev)
		s.store.Append(m)
		s.mu.Unlock()
		s.fireMessage(m)
		return
	}

	m := messageFromEvent(ev)
	s.store.Append(m)
	ch := s.channel
	logger := s.logger
	s.mu.Unlock()

	s.fireMessage(m)

	if ch != nil {
		// Failure only costs the peer a read tick; swallow it.
		if err := ch.Send(context.Background(), readFrame{Type: frameRead, MessageID: id}); err != nil {
			logger.Debug("read ack dropped", map[string]any{"room": s.Room(), "error": err.Error()})
		}
	}
}

// handleReadAck resolves an inbound read acknowledgment against the pending
// set. Bare acks resolve last-pending-wins; see Store.ResolveReadAck.
func (s *Session) handleReadAck(gen uint64, ev ReadAckEvent) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	m := s.store.ResolveReadAck(ev.MessageID.String())
	s.mu.Unlock()

	if m != nil {
		s.fireRead(m)
	}
}

func (s *Session) handlePresence(gen uint64, raw json.RawMessage) {
	s.mu.Lock()
	stale := s.gen != gen
	fn := s.onPresence
	s.mu.Unlock()
	if stale || fn == nil {
		return
	}
	fn(raw)
}

// schedulePromotion arms the timed optimistic read promotion after a
// fallback delivery: if no real ack resolves the message within the delay,
// its read flag is promoted anyway. A UX approximation, not a guarantee.
func (s *Session) schedulePromotion(gen uint64, m *Message) {
	delay := s.cfg.ReadPromotionDelay
	if delay <= 0 {
		delay = time.Second
	}
	s.afterFunc(delay, func() {
		s.mu.Lock()
		if s.gen != gen || !s.store.ResolvePending(m) {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.fireRead(m)
	})
}

func messageFromEvent(ev ChatEvent) *Message {
	return &Message{
		ServerID:    ev.ID.String(),
		Sender:      ev.Sender,
		DisplayName: ev.DisplayName,
		Body:        ev.Message,
		Timestamp:   ev.Timestamp,
		AvatarURL:   ev.AvatarURL,
		Origin:      OriginRemote,
		Read:        ev.Read,
	}
}

func (s *Session) fireMessage(m *Message) {
	s.mu.Lock()
	fn := s.onMessage
	s.mu.Unlock()
	if fn != nil {
		fn(m)
	}
}

func (s *Session) fireRead(m *Message) {
	s.mu.Lock()
	fn := s.onRead
	s.mu.Unlock()
	if fn != nil {
		fn(m)
	}
}

func (s *Session) fireError(err error) {
	s.mu.Lock()
	fn := s.onError
	s.mu.Unlock()
	if fn != nil && err != nil {
		fn(err)
	}
}

package twink

// Store is the in-memory timeline of the currently open room plus the set of
// locally sent messages still awaiting a read acknowledgment.
//
// The store is not safe for concurrent use: it is exclusively owned by a
// Session, which serializes all access on its own event handling.
//
// Render order is arrival order. Append never reorders by timestamp, and a
// message is never removed once appended; the only mutation is the read flag.
type Store struct {
	messages []*Message
	pending  []*Message
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds a message to the end of the timeline. Messages with
// OriginLocalPending also enter the pending set.
func (s *Store) Append(m *Message) {
	s.messages = append(s.messages, m)
	if m.Origin == OriginLocalPending {
		s.pending = append(s.pending, m)
	}
}

// Messages returns the timeline in arrival order. The returned slice is
// shared with the store; callers must not mutate it.
func (s *Store) Messages() []*Message {
	return s.messages
}

// Len returns the number of messages in the timeline.
func (s *Store) Len() int {
	return len(s.messages)
}

// PendingCount returns the number of unacknowledged local messages.
func (s *Store) PendingCount() int {
	return len(s.pending)
}

// ResolveReadAck applies the last-pending-wins policy. A bare ack (empty id)
// marks the most recently appended pending message as read; an ack carrying
// an id marks that specific pending entry. The resolved message leaves the
// pending set. Returns nil when nothing matched.
//
// The bare-ack heuristic can mark the wrong message under concurrent
// multi-message bursts; the server does not always correlate an id, so there
// is nothing better to key on. See ResolvePending for the timed promotion
// path, which shares the same single-transition rule.
func (s *Store) ResolveReadAck(id string) *Message {
	if len(s.pending) == 0 {
		return nil
	}
	idx := len(s.pending) - 1
	if id != "" {
		idx = -1
		for i, m := range s.pending {
			if m.ServerID == id || m.LocalID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
	}
	m := s.pending[idx]
	s.pending = append(s.pending[:idx], s.pending[idx+1:]...)
	m.Read = true
	return m
}

// ResolvePending marks a specific pending message as read, used by the timed
// optimistic promotion after a fallback send. Returns false when the message
// is no longer pending (a real ack already resolved it, or the room was
// switched).
func (s *Store) ResolvePending(m *Message) bool {
	for i, p := range s.pending {
		if p == m {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			p.Read = true
			return true
		}
	}
	return false
}

// ConfirmLocal attaches the server-assigned id to the oldest unconfirmed
// local message and promotes its origin to OriginLocalConfirmed. The message
// stays pending: confirmation means stored, not read. Returns nil when no
// unconfirmed local message exists.
func (s *Store) ConfirmLocal(serverID string) *Message {
	for _, m := range s.pending {
		if m.ServerID == "" {
			m.ServerID = serverID
			m.Origin = OriginLocalConfirmed
			return m
		}
	}
	return nil
}

// Reset clears the timeline and the pending set for a room switch. Pending
// entries are dropped, not carried over.
func (s *Store) Reset() {
	s.messages = nil
	s.pending = nil
}

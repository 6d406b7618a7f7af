package twink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localMsg(body string) *Message {
	return &Message{
		LocalID:   "local-" + body,
		Sender:    "me",
		Body:      body,
		Timestamp: time.Now().UTC(),
		Origin:    OriginLocalPending,
	}
}

func remoteMsg(body string) *Message {
	return &Message{
		ServerID:  "srv-" + body,
		Sender:    "alice",
		Body:      body,
		Timestamp: time.Now().UTC(),
		Origin:    OriginRemote,
	}
}

func TestStoreAppendOrder(t *testing.T) {
	s := NewStore()
	s.Append(remoteMsg("one"))
	s.Append(localMsg("two"))
	s.Append(remoteMsg("three"))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, "two", msgs[1].Body)
	assert.Equal(t, "three", msgs[2].Body)
	assert.Equal(t, 1, s.PendingCount())
}

func TestStoreBareAckMarksNewestPending(t *testing.T) {
	s := NewStore()
	m1 := localMsg("older")
	m2 := localMsg("newer")
	s.Append(m1)
	s.Append(m2)

	got := s.ResolveReadAck("")
	require.Same(t, m2, got)
	assert.True(t, m2.Read)
	assert.False(t, m1.Read)
	assert.Equal(t, 1, s.PendingCount())

	// A second bare ack resolves the remaining entry.
	got = s.ResolveReadAck("")
	require.Same(t, m1, got)
	assert.True(t, m1.Read)
	assert.Equal(t, 0, s.PendingCount())
}

func TestStoreAckByIDMarksSpecificEntry(t *testing.T) {
	s := NewStore()
	m1 := localMsg("older")
	m1.ServerID = "10"
	m2 := localMsg("newer")
	m2.ServerID = "11"
	s.Append(m1)
	s.Append(m2)

	got := s.ResolveReadAck("10")
	require.Same(t, m1, got)
	assert.True(t, m1.Read)
	assert.False(t, m2.Read)
}

func TestStoreAckUnknownID(t *testing.T) {
	s := NewStore()
	m := localMsg("a")
	s.Append(m)

	assert.Nil(t, s.ResolveReadAck("nope"))
	assert.False(t, m.Read)
	assert.Equal(t, 1, s.PendingCount())
}

func TestStoreAckWithoutPending(t *testing.T) {
	s := NewStore()
	s.Append(remoteMsg("a"))
	assert.Nil(t, s.ResolveReadAck(""))
}

func TestStoreResolvePending(t *testing.T) {
	s := NewStore()
	m := localMsg("a")
	s.Append(m)

	require.True(t, s.ResolvePending(m))
	assert.True(t, m.Read)
	assert.Equal(t, 0, s.PendingCount())

	// Already resolved: the read flag has transitioned once and stays set.
	assert.False(t, s.ResolvePending(m))
	assert.True(t, m.Read)
}

func TestStoreResolvePendingAfterRealAck(t *testing.T) {
	s := NewStore()
	m := localMsg("a")
	s.Append(m)

	require.Same(t, m, s.ResolveReadAck(""))
	assert.False(t, s.ResolvePending(m))
	assert.True(t, m.Read)
}

func TestStoreConfirmLocal(t *testing.T) {
	s := NewStore()
	m1 := localMsg("first")
	m2 := localMsg("second")
	s.Append(m1)
	s.Append(m2)

	got := s.ConfirmLocal("77")
	require.Same(t, m1, got)
	assert.Equal(t, "77", m1.ServerID)
	assert.Equal(t, OriginLocalConfirmed, m1.Origin)
	assert.False(t, m1.Read, "confirmation means stored, not read")
	assert.Equal(t, 2, s.PendingCount())

	// Next confirmation folds into the next unconfirmed entry.
	got = s.ConfirmLocal("78")
	require.Same(t, m2, got)
}

func TestStoreConfirmLocalNothingPending(t *testing.T) {
	s := NewStore()
	s.Append(remoteMsg("a"))
	assert.Nil(t, s.ConfirmLocal("5"))
}

func TestStoreReset(t *testing.T) {
	s := NewStore()
	s.Append(localMsg("a"))
	s.Append(remoteMsg("b"))

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.PendingCount())
	assert.Nil(t, s.ResolveReadAck(""))
}

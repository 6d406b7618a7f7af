package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/room-messages/", r.URL.Path)
		assert.Equal(t, "personal_1_2", r.URL.Query().Get("room"))
		_, _ = w.Write([]byte(`{"messages":[
			{"sender":"alice","display_name":"Alice A","content":"hey","timestamp":"2025-02-03T10:00:00+00:00","read":true},
			{"sender":"me","display_name":"Me M","content":"hi","timestamp":"2025-02-03T10:00:05+00:00","read":false}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	msgs, err := c.RoomMessages(context.Background(), "personal_1_2")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "alice", msgs[0].Sender)
	assert.True(t, msgs[0].Read)
	assert.Equal(t, "hi", msgs[1].Content)
	assert.False(t, msgs[1].Read)
}

func TestSendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/send-message/", r.URL.Path)
		assert.Equal(t, "tok123", r.Header.Get("X-CSRFToken"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "r1", req["room"])
		assert.Equal(t, "hello", req["message"])

		_, _ = w.Write([]byte(`{"ok":true,"message":{"id":5,"sender":"me","content":"hello","timestamp":"2025-02-03T10:00:00+00:00"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.SetCSRFToken("tok123")

	res, err := c.SendMessage(context.Background(), "r1", "hello")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "5", res.Message.ID.String())
	assert.Equal(t, "hello", res.Message.Content)
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"missing room or message"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.SendMessage(context.Background(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing room or message")
	assert.Contains(t, err.Error(), "400")
}

func TestSearchUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/search-users/", r.URL.Path)
		assert.Equal(t, "ali", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"results":[{"id":1,"username":"alice","display_name":"Alice A","bio":"Loves photos"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	users, err := c.SearchUsers(context.Background(), "ali")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "Loves photos", users[0].Bio)
}

func TestPersonalRoom(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/personal-room/", r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		_, _ = w.Write([]byte(`{"room":"personal_1_2","other":"alice"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	info, err := c.PersonalRoom(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "personal_1_2", info.Room)
	assert.Equal(t, "alice", info.Other)
}

func TestPersonalRoomNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"user not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.PersonalRoom(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user not found")
}

func TestUsernameCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/username-check/", r.URL.Path)
		_, _ = w.Write([]byte(`{"exists":true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	exists, err := c.UsernameCheck(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

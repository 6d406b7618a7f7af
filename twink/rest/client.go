package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client provides request/response access to the chat server: message
// history, the fallback send, and user/room lookups.
//
// The fallback send is NOT idempotent. Callers must not auto-retry a failed
// send; a duplicate delivery is worse than a missing one.
type Client struct {
	baseURL    string
	csrfToken  string
	httpClient *http.Client
}

// NewClient creates a new API client.
// baseURL should be the base URL of the chat API, e.g. "http://localhost:8000/chat".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// SetCSRFToken sets the anti-forgery credential sent with mutating requests.
func (c *Client) SetCSRFToken(token string) {
	c.csrfToken = token
}

// RoomMessages retrieves the stored history for a room, oldest first.
func (c *Client) RoomMessages(ctx context.Context, room string) ([]HistoryMessage, error) {
	var resp historyResponse
	if err := c.get(ctx, "/api/room-messages/?room="+url.QueryEscape(room), &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage delivers a message over the request/response path. Used when
// no live channel is open or a live send failed. The result confirms storage
// only, never the recipient's read state.
func (c *Client) SendMessage(ctx context.Context, room, text string) (*SendResult, error) {
	var resp SendResult
	req := sendMessageRequest{Room: room, Message: text}
	if err := c.post(ctx, "/api/send-message/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchUsers returns users matching the free-text query. An empty query
// lists users.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]UserSummary, error) {
	var resp searchResponse
	if err := c.get(ctx, "/api/search-users/?q="+url.QueryEscape(query), &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// PersonalRoom resolves the canonical one-to-one room with another user.
func (c *Client) PersonalRoom(ctx context.Context, username string) (*PersonalRoomInfo, error) {
	var resp PersonalRoomInfo
	if err := c.get(ctx, "/api/personal-room/?username="+url.QueryEscape(username), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UsernameCheck reports whether a username is taken.
func (c *Client) UsernameCheck(ctx context.Context, username string) (bool, error) {
	var resp usernameCheckResponse
	if err := c.get(ctx, "/api/username-check/?q="+url.QueryEscape(username), &resp); err != nil {
		return false, err
	}
	return resp.Exists, nil
}

// Helper methods

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrfToken != "" {
		req.Header.Set("X-CSRFToken", c.csrfToken)
	}

	return c.do(req, dest)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Handle error responses
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("http error: %s (status %d)", string(body), resp.StatusCode)
	}

	// Unmarshal success response
	if dest != nil {
		if err := json.Unmarshal(body, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

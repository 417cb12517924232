package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codepairhq/codepair/internal/config"
)

// Client talks to the Stream chat/video platform's server-side REST API.
// It implements domain.RoomProvisioner: every session has a chat channel and
// a video call keyed by the session's callId.
type Client struct {
	apiKey    string
	apiSecret []byte
	baseURL   string
	client    *http.Client
}

// NewClient creates a new Stream client
func NewClient(cfg config.StreamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:    cfg.APIKey,
		apiSecret: []byte(cfg.APISecret),
		baseURL:   cfg.BaseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

// serverToken mints the server-side JWT Stream expects on every API call.
func (c *Client) serverToken() (string, error) {
	claims := jwt.MapClaims{"server": true}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.apiSecret)
}

// CreateUserToken mints a client-side token the browser SDK uses to connect
// as the given user.
func (c *Client) CreateUserToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.apiSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign user token: %w", err)
	}
	return signed, nil
}

// APIKey returns the public API key clients need alongside their token
func (c *Client) APIKey() string {
	return c.apiKey
}

func (c *Client) do(ctx context.Context, method, path string, body any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		buf = bytes.NewReader(data)
	}

	u := fmt.Sprintf("%s%s?api_key=%s", c.baseURL, path, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.serverToken()
	if err != nil {
		return fmt.Errorf("failed to sign server token: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("Stream-Auth-Type", "jwt")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("stream API error (%d): %s", resp.StatusCode, string(data))
	}

	return nil
}

// Provision creates the video call and the chat channel for a session. The
// channel initially contains only the host.
func (c *Client) Provision(ctx context.Context, callID, hostID, name string) error {
	callBody := map[string]any{
		"data": map[string]any{
			"created_by_id": hostID,
		},
	}
	if err := c.do(ctx, http.MethodPost, "/api/v2/video/call/default/"+url.PathEscape(callID), callBody); err != nil {
		return fmt.Errorf("failed to create video call: %w", err)
	}

	channelBody := map[string]any{
		"data": map[string]any{
			"name":          name,
			"created_by_id": hostID,
			"members":       []string{hostID},
		},
	}
	if err := c.do(ctx, http.MethodPost, "/channels/messaging/"+url.PathEscape(callID)+"/query", channelBody); err != nil {
		return fmt.Errorf("failed to create chat channel: %w", err)
	}

	return nil
}

// Teardown hard-deletes the video call and the chat channel
func (c *Client) Teardown(ctx context.Context, callID string) error {
	callBody := map[string]any{"hard": true}
	if err := c.do(ctx, http.MethodPost, "/api/v2/video/call/default/"+url.PathEscape(callID)+"/delete", callBody); err != nil {
		return fmt.Errorf("failed to delete video call: %w", err)
	}

	if err := c.do(ctx, http.MethodDelete, "/channels/messaging/"+url.PathEscape(callID), nil); err != nil {
		return fmt.Errorf("failed to delete chat channel: %w", err)
	}

	return nil
}

// AddMember adds a user to the session's chat channel
func (c *Client) AddMember(ctx context.Context, callID, userID string) error {
	body := map[string]any{"add_members": []string{userID}}
	if err := c.do(ctx, http.MethodPost, "/channels/messaging/"+url.PathEscape(callID), body); err != nil {
		return fmt.Errorf("failed to add channel member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from the session's chat channel
func (c *Client) RemoveMember(ctx context.Context, callID, userID string) error {
	body := map[string]any{"remove_members": []string{userID}}
	if err := c.do(ctx, http.MethodPost, "/channels/messaging/"+url.PathEscape(callID), body); err != nil {
		return fmt.Errorf("failed to remove channel member: %w", err)
	}
	return nil
}

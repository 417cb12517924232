package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codepairhq/codepair/internal/domain"
)

const (
	activeSessionsKey = "sessions:active"
	activeSessionsTTL = 10 * time.Second
)

// SessionCache caches the active-session listing in Redis. The lobby view
// polls this endpoint, so even a short TTL takes most of the read load off
// the database. Mutating operations invalidate the key.
type SessionCache struct {
	client *Client
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *Client) *SessionCache {
	return &SessionCache{client: client}
}

// GetActive retrieves the cached active-session listing
func (c *SessionCache) GetActive(ctx context.Context) ([]domain.Session, error) {
	data, err := c.client.rdb.Get(ctx, activeSessionsKey).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var sessions []domain.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}

	return sessions, nil
}

// SetActive caches the active-session listing
func (c *SessionCache) SetActive(ctx context.Context, sessions []domain.Session) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	return c.client.rdb.Set(ctx, activeSessionsKey, data, activeSessionsTTL).Err()
}

// Invalidate drops the cached listing
func (c *SessionCache) Invalidate(ctx context.Context) error {
	return c.client.rdb.Del(ctx, activeSessionsKey).Err()
}

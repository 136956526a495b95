// Package session maps browser session ids to the Gmail OAuth token of that session.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"advisor-ai/internal/common/config"
	"advisor-ai/internal/common/database"
)

// ErrNotFound is returned when no token is stored for a session id.
var ErrNotFound = errors.New("session not found")

// Store persists OAuth tokens keyed by session id.
type Store interface {
	Save(ctx context.Context, id string, token *oauth2.Token) error
	Get(ctx context.Context, id string) (*oauth2.Token, error)
	Delete(ctx context.Context, id string) error
}

// NewID returns a random 16-byte hex session id.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewFromConfig builds the store selected by server.session.store.
func NewFromConfig(cfg config.SessionConfig, redis *database.RedisClient) (Store, error) {
	ttl := config.GetDuration(cfg.TTL)
	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(ttl), nil
	case "redis":
		if redis == nil {
			return nil, fmt.Errorf("redis session store requires a redis client")
		}
		return NewRedisStore(redis.Client, ttl), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

func expiryFrom(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

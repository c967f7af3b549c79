package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry tracks issued token IDs in Redis so tokens can be revoked
// before their JWT expiry. Entries expire together with the token.
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRegistry constructs a SessionRegistry.
func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{client: client, ttl: ttl}
}

// Register records a freshly issued token.
func (sr *SessionRegistry) Register(ctx context.Context, tokenID string, userID int64) error {
	return sr.client.Set(ctx, sr.key(tokenID), strconv.FormatInt(userID, 10), sr.ttl).Err()
}

// Active reports whether the token is still registered.
func (sr *SessionRegistry) Active(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	_, err := sr.client.Get(ctx, sr.key(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Revoke removes the token from the registry.
func (sr *SessionRegistry) Revoke(ctx context.Context, tokenID string) error {
	err := sr.client.Del(ctx, sr.key(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (sr *SessionRegistry) key(tokenID string) string {
	return "session:" + tokenID
}

package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps refresh tokens in redis; a token is valid while its key exists.
type SessionStore struct {
	client redis.Cmdable
}

func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{client: client}
}

func (c *SessionStore) SaveRefresh(ctx context.Context, userID string, refreshToken string, ttl time.Duration) error {
	return c.client.Set(ctx, refreshKey(refreshToken), userID, ttl).Err()
}

func (c *SessionStore) CheckRefresh(ctx context.Context, refreshToken string) (string, error) {
	return c.client.Get(ctx, refreshKey(refreshToken)).Result()
}

func (c *SessionStore) DeleteRefresh(ctx context.Context, refreshToken string) error {
	return c.client.Del(ctx, refreshKey(refreshToken)).Err()
}

func refreshKey(token string) string {
	return "refresh_token:" + token
}

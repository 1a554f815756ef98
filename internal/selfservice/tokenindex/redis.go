// Package tokenindex maps self-checkout QR tokens to record ids. The index
// is an accelerator for kiosk lookups; the visitor store remains the source
// of truth and carries the same expiry on the record itself.
package tokenindex

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"gatehouse/pkg/platform/sentinel"
)

const tokenKeyPrefix = "gatehouse:qr:"

// RedisIndex is the Redis-backed token index. TTL handling is delegated to
// Redis key expiry, which matches the record's qr_expiry by construction.
type RedisIndex struct {
	client *redis.Client
}

// NewRedisIndex constructs a Redis-backed token index.
func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

// Register stores token -> recordID with the given TTL.
func (i *RedisIndex) Register(ctx context.Context, token, recordID string, ttl time.Duration) error {
	return i.client.Set(ctx, tokenKeyPrefix+token, recordID, ttl).Err()
}

// Resolve returns the record id for a token, or sentinel.ErrNotFound when the
// key is absent or expired.
func (i *RedisIndex) Resolve(ctx context.Context, token string) (string, error) {
	recordID, err := i.client.Get(ctx, tokenKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return recordID, nil
}

// Remove drops a token after checkout or record deletion.
func (i *RedisIndex) Remove(ctx context.Context, token string) error {
	return i.client.Del(ctx, tokenKeyPrefix+token).Err()
}

package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupPrefix = "huntboard:webhook:dedup:"

// RedisDeduper remembers webhook deliveries for ttl using SET NX.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

// Claim reports true the first time kind/key is seen within the window.
func (d *RedisDeduper) Claim(ctx context.Context, kind, key string) (bool, error) {
	return d.client.SetNX(ctx, DedupKey(kind, key), time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
}

func (d *RedisDeduper) Release(ctx context.Context, kind, key string) error {
	return d.client.Del(ctx, DedupKey(kind, key)).Err()
}

// DedupKey hashes the delivery key so arbitrary payload ids stay bounded.
func DedupKey(kind, key string) string {
	sum := sha256.Sum256([]byte(key))
	return dedupPrefix + kind + ":" + hex.EncodeToString(sum[:])
}

package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ContentHash identifies document content independently of its name.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ResultCache stores routed processing results keyed by content hash.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{client: client, ttl: ttl}
}

func (c *ResultCache) key(hash string) string { return "result:" + hash }

// Get returns the cached result for hash, if any.
func (c *ResultCache) Get(ctx context.Context, hash string) (map[string]any, bool, error) {
	raw, err := c.client.Get(ctx, c.key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode cached result: %w", err)
	}
	return out, true, nil
}

// Put stores result under hash for the cache TTL.
func (c *ResultCache) Put(ctx context.Context, hash string, result map[string]any) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return c.client.Set(ctx, c.key(hash), raw, c.ttl).Err()
}

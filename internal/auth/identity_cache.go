package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-registration/internal/models"
)

const identityKeyPrefix = "identity_cache:"

// IdentityCache caches token -> resolved identity lookups in Redis so the
// middleware can skip a user query per request. Keys are keyed by the SHA-256
// of the token, never the raw token.
type IdentityCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{Client: client, TTL: ttl}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return identityKeyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached identity for a token, or nil on a miss.
func (c *IdentityCache) Get(ctx context.Context, token string) (*models.Identity, error) {
	if c == nil || c.Client == nil {
		return nil, nil
	}

	payload, err := c.Client.Get(ctx, cacheKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get identity from redis: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal([]byte(payload), &identity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached identity: %w", err)
	}
	return &identity, nil
}

func (c *IdentityCache) Set(ctx context.Context, token string, identity *models.Identity) error {
	if c == nil || c.Client == nil {
		return nil
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	if err := c.Client.Set(ctx, cacheKey(token), payload, c.TTL).Err(); err != nil {
		return fmt.Errorf("failed to cache identity: %w", err)
	}
	return nil
}

// InitializeIdentityCache connects to Redis and verifies it is usable.
func InitializeIdentityCache(redisAddr string, ttl time.Duration) (*IdentityCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
	}

	return NewIdentityCache(client, ttl), nil
}

// Package blacklist revokes access tokens before they expire.
//
// Signing out blacklists the jti of the access token for its remaining
// lifetime. Redis is used when configured so every API instance sees the
// same list; otherwise a process-local map is used.
package blacklist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pulsmedic/pulsmedic-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "token:blacklist:"

// TokenBlacklist records revoked token IDs
type TokenBlacklist interface {
	// AddToBlacklist revokes jti for ttl, which should be the token's remaining lifetime
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Redis implements TokenBlacklist on a Redis client
type Redis struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Redis{client: client}, nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// AddToBlacklist stores the jti with a TTL so Redis expires it with the token
func (b *Redis) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks for the jti key
func (b *Redis) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// Health returns the health status of the Redis connection
func (b *Redis) Health(ctx context.Context) map[string]string {
	status := map[string]string{"status": "up"}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := b.client.Ping(ctx).Err(); err != nil {
		status["status"] = "down"
		status["error"] = err.Error()
	}
	return status
}

// Close closes the Redis client
func (b *Redis) Close() error {
	return b.client.Close()
}

// Memory is a process-local TokenBlacklist. Entries vanish on restart and are
// not shared between instances.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemory creates an empty in-memory blacklist
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Time), now: time.Now}
}

// AddToBlacklist records the jti until now+ttl
func (b *Memory) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[jti] = b.now().Add(ttl)
	b.sweep()
	return nil
}

// IsBlacklisted reports whether jti is revoked and not yet expired
func (b *Memory) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.entries[jti]
	if !ok {
		return false, nil
	}
	if !b.now().Before(expiry) {
		delete(b.entries, jti)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries; callers hold mu
func (b *Memory) sweep() {
	now := b.now()
	for jti, expiry := range b.entries {
		if !now.Before(expiry) {
			delete(b.entries, jti)
		}
	}
}

var (
	_ TokenBlacklist = (*Redis)(nil)
	_ TokenBlacklist = (*Memory)(nil)
)

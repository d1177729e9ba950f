package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/threadline/threadline/internal/model"
)

// Cache key prefixes and TTLs.
const (
	realmKeyPrefix = "realm:"

	// DefaultRealmTTL is the TTL for cached realm data.
	DefaultRealmTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetRealm retrieves a realm from cache by string ID.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetRealm(ctx context.Context, stringID string) (*model.CachedRealm, error) {
	key := realmKeyPrefix + stringID

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedRealm{
		ID:            result["id"],
		Name:          result["name"],
		DeactivatedAt: result["deactivated_at"],
	}

	return cached, nil
}

// SetRealm stores a realm in cache.
func (c *Cache) SetRealm(ctx context.Context, realm *model.Realm) error {
	key := realmKeyPrefix + realm.StringID
	cached := realm.ToCachedRealm()

	fields := map[string]any{
		"id":   cached.ID,
		"name": cached.Name,
	}

	// Only set optional fields if they have values
	if cached.DeactivatedAt != "" {
		fields["deactivated_at"] = cached.DeactivatedAt
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, DefaultRealmTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache realm: %w", err)
	}

	return nil
}

// DeleteRealm removes a realm from cache. Called on realm writes so the
// next lookup refills from the database.
func (c *Cache) DeleteRealm(ctx context.Context, stringID string) error {
	key := realmKeyPrefix + stringID

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cached realm: %w", err)
	}

	return nil
}

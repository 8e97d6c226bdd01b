package rbac

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const permCachePrefix = "rbac:perms:"

// PermissionCache keeps resolved role permission sets in Redis for a
// short window. It is constructor-injected rather than process-global
// and is invalidated whenever a role definition changes. Lookups fail
// open: a Redis error reads as a cache miss.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPermissionCache constructs a PermissionCache.
func NewPermissionCache(client *redis.Client, ttl time.Duration) *PermissionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PermissionCache{client: client, ttl: ttl}
}

// Get returns the cached permission set for a role, if present.
func (c *PermissionCache) Get(ctx context.Context, role string) ([]string, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, permCachePrefix+role).Bytes()
	if err != nil {
		return nil, false
	}
	var perms []string
	if err := json.Unmarshal(data, &perms); err != nil {
		return nil, false
	}
	return perms, true
}

// Set stores the permission set for a role.
func (c *PermissionCache) Set(ctx context.Context, role string, perms []string) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, permCachePrefix+role, data, c.ttl).Err()
}

// Invalidate drops the cached entry for a role.
func (c *PermissionCache) Invalidate(ctx context.Context, role string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, permCachePrefix+role).Err()
}

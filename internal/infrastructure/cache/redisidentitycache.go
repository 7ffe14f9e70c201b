package cache

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// DefaultIdentityKey is the redis key holding the station identity.
const DefaultIdentityKey = "storedesk:identity"

// RedisIdentityCache keeps the identity under a single redis key without
// expiry. Suitable when the station UI and agent share a local redis.
type RedisIdentityCache struct {
	client *redis.Client
	key    string
	logger logger.Interface
}

func NewRedisIdentityCache(client *redis.Client, key string, log logger.Interface) *RedisIdentityCache {
	if key == "" {
		key = DefaultIdentityKey
	}
	return &RedisIdentityCache{client: client, key: key, logger: log}
}

func (c *RedisIdentityCache) Save(ctx context.Context, identity *session.Identity) error {
	data, err := encodeIdentity(identity)
	if err != nil {
		c.logger.Warnw("rejected malformed identity", "error", err)
		return nil
	}
	if err := c.client.Set(ctx, c.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store identity in redis: %w", err)
	}
	return nil
}

func (c *RedisIdentityCache) Load(ctx context.Context) (*session.Identity, bool) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			c.logger.Warnw("failed to read identity from redis", "key", c.key, "error", err)
		}
		return nil, false
	}

	identity, err := decodeIdentity(data)
	if err != nil {
		c.logger.Warnw("ignoring malformed identity in redis", "key", c.key, "error", err)
		return nil, false
	}
	return identity, true
}

func (c *RedisIdentityCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to delete identity from redis: %w", err)
	}
	return nil
}

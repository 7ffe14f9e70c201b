package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/shared/config"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"

	identityFileName = "identity.json"
)

// NewRedisClient connects to redis and pings it.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewIdentityCache builds the backend selected by cfg. client may be nil
// for the file backend.
func NewIdentityCache(cfg *config.IdentityConfig, dataDir string, client *redis.Client, log logger.Interface) (session.IdentityCache, error) {
	log = log.With("component", "identity_cache")
	switch strings.ToLower(cfg.Backend) {
	case BackendFile, "":
		path := cfg.Path
		if path == "" {
			path = filepath.Join(dataDir, identityFileName)
		}
		return NewFileIdentityCache(path, log), nil
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("redis identity cache requires a redis client")
		}
		return NewRedisIdentityCache(client, cfg.Key, log), nil
	default:
		return nil, fmt.Errorf("unknown identity cache backend %q", cfg.Backend)
	}
}

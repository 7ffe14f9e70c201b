package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/config"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func testIdentity() *session.Identity {
	return &session.Identity{
		Employee: &employee.Employee{
			ID:          "9b2f6a0e-4c1d-4b8e-9f00-1a2b3c4d5e6f",
			EmployeeNo:  "E001",
			Name:        "Alice",
			Role:        "cashier",
			Permissions: []string{"sales", "products"},
		},
		SessionID: "session_01HZX3T8Q9M2N4P6R8S0V2W4Y6",
		LoginTime: biztime.Normalize(time.Date(2026, 3, 1, 9, 30, 15, 123456000, time.UTC)),
		DeviceInfo: session.DeviceInfo{
			Platform: "linux",
			Hostname: "till-2",
			Station:  "front",
		},
	}
}

type cacheFactory func(t *testing.T) session.IdentityCache

func backends() map[string]cacheFactory {
	return map[string]cacheFactory{
		"file": func(t *testing.T) session.IdentityCache {
			return NewFileIdentityCache(filepath.Join(t.TempDir(), "identity.json"), logger.NewDiscard())
		},
		"redis": func(t *testing.T) session.IdentityCache {
			_, client := setupTestRedis(t)
			return NewRedisIdentityCache(client, "", logger.NewDiscard())
		},
	}
}

func TestIdentityCache_RoundTrip(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := newCache(t)

			want := testIdentity()
			require.NoError(t, c.Save(ctx, want))

			got, ok := c.Load(ctx)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestIdentityCache_LoadAbsent(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			got, ok := newCache(t).Load(context.Background())
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestIdentityCache_SaveOverwrites(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := newCache(t)

			first := testIdentity()
			require.NoError(t, c.Save(ctx, first))

			second := testIdentity()
			second.SessionID = "session_01HZX3T8Q9M2N4P6R8S0V2W4Y7"
			second.Employee.Name = "Alice B."
			require.NoError(t, c.Save(ctx, second))

			got, ok := c.Load(ctx)
			require.True(t, ok)
			assert.Equal(t, second.SessionID, got.SessionID)
			assert.Equal(t, "Alice B.", got.Employee.Name)
		})
	}
}

func TestIdentityCache_RejectsMalformedSave(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*session.Identity)
	}{
		{"missing employee", func(i *session.Identity) { i.Employee = nil }},
		{"missing session id", func(i *session.Identity) { i.SessionID = "" }},
		{"missing role", func(i *session.Identity) { i.Employee.Role = "" }},
		{"missing login time", func(i *session.Identity) { i.LoginTime = time.Time{} }},
	}

	for name, newCache := range backends() {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				ctx := context.Background()
				c := newCache(t)

				bad := testIdentity()
				tt.mutate(bad)
				assert.NoError(t, c.Save(ctx, bad))

				_, ok := c.Load(ctx)
				assert.False(t, ok)
			})
		}
	}
}

func TestIdentityCache_MalformedSaveKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	c := NewFileIdentityCache(filepath.Join(t.TempDir(), "identity.json"), logger.NewDiscard())

	require.NoError(t, c.Save(ctx, testIdentity()))
	require.NoError(t, c.Save(ctx, nil))

	got, ok := c.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, "E001", got.Employee.EmployeeNo)
}

func TestIdentityCache_ClearIsIdempotent(t *testing.T) {
	for name, newCache := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := newCache(t)

			require.NoError(t, c.Save(ctx, testIdentity()))
			require.NoError(t, c.Clear(ctx))
			require.NoError(t, c.Clear(ctx))

			_, ok := c.Load(ctx)
			assert.False(t, ok)
		})
	}
}

func TestFileIdentityCache_MalformedFileIsAbsent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{not-json"},
		{"empty object", "{}"},
		{"employee without id", `{"employee":{"employee_id":"E1","name":"A","role":"staff"},"session_id":"s","login_time":"2026-01-01T00:00:00Z"}`},
		{"wrong type", `{"employee":"E1","session_id":"s","login_time":"2026-01-01T00:00:00Z"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "identity.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			c := NewFileIdentityCache(path, logger.NewDiscard())
			got, ok := c.Load(context.Background())
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestFileIdentityCache_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	c := NewFileIdentityCache(filepath.Join(dir, "nested", "identity.json"), logger.NewDiscard())
	require.NoError(t, c.Save(context.Background(), testIdentity()))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "identity.json", entries[0].Name())
}

func TestRedisIdentityCache_MalformedValueIsAbsent(t *testing.T) {
	mr, client := setupTestRedis(t)
	require.NoError(t, mr.Set("station:identity", `{"session_id":42}`))

	c := NewRedisIdentityCache(client, "station:identity", logger.NewDiscard())
	_, ok := c.Load(context.Background())
	assert.False(t, ok)
}

func TestRedisIdentityCache_NoExpiry(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisIdentityCache(client, "", logger.NewDiscard())
	require.NoError(t, c.Save(context.Background(), testIdentity()))

	assert.True(t, mr.Exists(DefaultIdentityKey))
	assert.Equal(t, time.Duration(0), mr.TTL(DefaultIdentityKey))
}

func TestRedisIdentityCache_UnavailableIsAbsent(t *testing.T) {
	mr, client := setupTestRedis(t)
	c := NewRedisIdentityCache(client, "", logger.NewDiscard())
	mr.Close()

	_, ok := c.Load(context.Background())
	assert.False(t, ok)
}

func TestNewIdentityCache(t *testing.T) {
	_, client := setupTestRedis(t)
	dir := t.TempDir()

	c, err := NewIdentityCache(&config.IdentityConfig{Backend: "file"}, dir, nil, logger.NewDiscard())
	require.NoError(t, err)
	fc, ok := c.(*FileIdentityCache)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "identity.json"), fc.Path())

	c, err = NewIdentityCache(&config.IdentityConfig{Backend: "redis"}, dir, client, logger.NewDiscard())
	require.NoError(t, err)
	assert.IsType(t, &RedisIdentityCache{}, c)

	_, err = NewIdentityCache(&config.IdentityConfig{Backend: "redis"}, dir, nil, logger.NewDiscard())
	assert.Error(t, err)

	_, err = NewIdentityCache(&config.IdentityConfig{Backend: "memcache"}, dir, nil, logger.NewDiscard())
	assert.Error(t, err)
}

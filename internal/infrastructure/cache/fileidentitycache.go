package cache

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// FileIdentityCache keeps the identity in a JSON file in the station data
// directory. Writes go to a temporary file renamed over the target.
type FileIdentityCache struct {
	path   string
	mu     sync.Mutex
	logger logger.Interface
}

func NewFileIdentityCache(path string, log logger.Interface) *FileIdentityCache {
	return &FileIdentityCache{path: path, logger: log}
}

func (c *FileIdentityCache) Path() string {
	return c.path
}

// Save drops a malformed identity with a warning and reports success.
func (c *FileIdentityCache) Save(ctx context.Context, identity *session.Identity) error {
	data, err := encodeIdentity(identity)
	if err != nil {
		c.logger.Warnw("rejected malformed identity", "error", err)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create identity directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".identity-*.json")
	if err != nil {
		return fmt.Errorf("failed to create identity file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync identity file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close identity file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("failed to replace identity file: %w", err)
	}
	return nil
}

func (c *FileIdentityCache) Load(ctx context.Context) (*session.Identity, bool) {
	c.mu.Lock()
	data, err := os.ReadFile(c.path)
	c.mu.Unlock()

	if err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			c.logger.Warnw("failed to read identity file", "path", c.path, "error", err)
		}
		return nil, false
	}

	identity, err := decodeIdentity(data)
	if err != nil {
		c.logger.Warnw("ignoring malformed identity file", "path", c.path, "error", err)
		return nil, false
	}
	return identity, true
}

func (c *FileIdentityCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove identity file: %w", err)
	}
	return nil
}

package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
)

// Cache memoizes parsed tables for the lifetime of one analysis
// session. Entries are keyed by the SHA-256 of the file content, so the
// same bytes are parsed exactly once and a different upload is a new
// identity. There is no eviction; the cache is discarded with its
// session.
type Cache struct {
	mu      sync.Mutex
	loader  *Loader
	logger  *slog.Logger
	entries map[string]Table
	parses  int
}

// NewCache creates a session-scoped parse cache around loader.
func NewCache(loader *Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:  loader,
		logger:  logger.With(slog.String("component", "load_cache")),
		entries: make(map[string]Table),
	}
}

// Load returns the parsed table for content, parsing at most once per
// distinct content hash.
func (c *Cache) Load(ctx context.Context, content []byte) (Table, error) {
	sum := sha256.Sum256(content)
	key := hex.EncodeToString(sum[:])

	c.mu.Lock()
	defer c.mu.Unlock()

	if table, ok := c.entries[key]; ok {
		c.logger.DebugContext(ctx, "load served from cache", slog.String("content_hash", key))
		return table, nil
	}

	table, err := c.loader.Parse(ctx, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	c.entries[key] = table
	c.parses++

	c.logger.InfoContext(ctx, "load parsed and cached",
		slog.String("content_hash", key),
		slog.Int("rows", len(table)))

	return table, nil
}

// ParseCount reports how many distinct parses the cache has performed.
func (c *Cache) ParseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parses
}

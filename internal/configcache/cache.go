// Package configcache keeps the console's copy of the backend configuration.
// The copy is only ever replaced wholesale by a successful fetch.
package configcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/configtree"
	"github.com/matheus3301/botadmin/internal/logging"
)

// ErrReconcile wraps a failed follow-up fetch after an accepted push.
var ErrReconcile = errors.New("config pushed but reconcile fetch failed")

// Backend is the subset of the gateway the cache uses.
type Backend interface {
	Config(ctx context.Context) (*configtree.Node, error)
	PushConfig(ctx context.Context, doc *configtree.Node) error
}

// Cache holds the last fetched configuration document.
type Cache struct {
	mu        sync.RWMutex
	snapshot  *configtree.Node
	fetchedAt time.Time

	backend Backend
	bus     *bus.Bus
	logger  *zap.Logger
}

// New creates an empty cache.
func New(backend Backend, b *bus.Bus, logger *zap.Logger) *Cache {
	return &Cache{
		backend: backend,
		bus:     b,
		logger:  logging.OrNop(logger),
	}
}

// Fetch replaces the snapshot with the backend's current document. On
// failure the previous snapshot is kept.
func (c *Cache) Fetch(ctx context.Context) error {
	doc, err := c.backend.Config(ctx)
	if err != nil {
		c.logger.Warn("config fetch failed", zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.snapshot = doc
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	c.logger.Debug("config fetched", zap.Int("keys", doc.Len()))
	c.bus.Emit(bus.ConfigUpdated, nil)
	return nil
}

// Push sends doc as the complete replacement configuration and then
// re-fetches, so the cache holds what the backend actually stored.
func (c *Cache) Push(ctx context.Context, doc *configtree.Node) error {
	if err := c.backend.PushConfig(ctx, doc); err != nil {
		c.logger.Warn("config push failed", zap.Error(err))
		return err
	}
	c.logger.Info("config pushed")
	if err := c.Fetch(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrReconcile, err)
	}
	return nil
}

// Snapshot returns a deep copy of the cached document, or nil before the
// first successful fetch.
func (c *Cache) Snapshot() *configtree.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.Clone()
}

// FetchedAt returns when the snapshot was last replaced.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

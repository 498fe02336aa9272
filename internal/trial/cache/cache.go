// Package cache provides a Redis read-through cache in front of a trial
// catalog. Catalog reads dominate the screening path while the definitions
// change rarely, so a short TTL keeps runs cheap without a refresh protocol.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"trialmatch/internal/trial"
	"trialmatch/internal/trial/store"
)

const catalogKey = "trialmatch:catalog"

// CachedCatalog decorates a Catalog with Redis caching of the full list.
// Cache failures degrade to the underlying catalog, never to an error.
type CachedCatalog struct {
	next   store.Catalog
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(next store.Catalog, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedCatalog {
	return &CachedCatalog{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) List(ctx context.Context) ([]trial.Definition, error) {
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err == nil {
		var defs []trial.Definition
		if err := json.Unmarshal(raw, &defs); err == nil {
			return defs, nil
		}
		// Corrupt cache entry: fall through to the source and overwrite.
		c.logger.WarnContext(ctx, "catalog cache entry is corrupt, refreshing")
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "catalog cache read failed", "error", err)
	}

	defs, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(defs); err == nil {
		if err := c.client.Set(ctx, catalogKey, encoded, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "catalog cache write failed", "error", err)
		}
	}
	return defs, nil
}

func (c *CachedCatalog) Get(ctx context.Context, trialID string) (trial.Definition, error) {
	return c.next.Get(ctx, trialID)
}

// Put writes through and invalidates the cached list.
func (c *CachedCatalog) Put(ctx context.Context, def trial.Definition) error {
	if err := c.next.Put(ctx, def); err != nil {
		return err
	}
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}

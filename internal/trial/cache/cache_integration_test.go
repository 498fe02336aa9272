//go:build integration

package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trialmatch/internal/trial"
	"trialmatch/internal/trial/store"
	"trialmatch/pkg/testutil/containers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingCatalog counts List calls so cache hits are observable.
type countingCatalog struct {
	store.Catalog
	lists int
}

func (c *countingCatalog) List(ctx context.Context) ([]trial.Definition, error) {
	c.lists++
	return c.Catalog.List(ctx)
}

func TestCachedCatalog(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	memory := store.NewMemoryCatalog()
	require.NoError(t, store.Seed(ctx, memory))
	source := &countingCatalog{Catalog: memory}

	cached := New(source, rc.Client, time.Minute, testLogger())

	first, err := cached.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, 1, source.lists)

	second, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.lists, "second list is served from the cache")

	// Put invalidates the cached list.
	require.NoError(t, cached.Put(ctx, trial.Definition{ID: "NCT009", RequiredDiagnosis: "Asthma"}))

	third, err := cached.List(ctx)
	require.NoError(t, err)
	require.Len(t, third, 4)
	assert.Equal(t, 2, source.lists)
}

func TestCachedCatalog_CorruptEntryRefreshes(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	memory := store.NewMemoryCatalog()
	require.NoError(t, store.Seed(ctx, memory))

	cached := New(memory, rc.Client, time.Minute, testLogger())

	require.NoError(t, rc.Client.Set(ctx, "trialmatch:catalog", "not json", time.Minute).Err())

	defs, err := cached.List(ctx)
	require.NoError(t, err)
	assert.Len(t, defs, 3)
}

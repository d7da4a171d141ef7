// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acervohiphopdf/acervomapa/atom"
	"github.com/acervohiphopdf/acervomapa/cache"
	"github.com/acervohiphopdf/acervomapa/geocode"
	"github.com/acervohiphopdf/acervomapa/mapdata"
)

// stubCatalog serves fixed records and counts upstream passes.
type stubCatalog struct {
	items   []atom.InformationObject
	err     error
	delay   time.Duration
	fetches atomic.Int32
}

func (c *stubCatalog) FetchAll(_ context.Context, _ string) ([]atom.InformationObject, error) {
	c.fetches.Add(1)

	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	if c.err != nil {
		return nil, c.err
	}

	return c.items, nil
}

func (c *stubCatalog) EnrichAll(_ context.Context, items []atom.InformationObject) []atom.InformationObject {
	return items
}

// memRepo is an in-memory cache.Repository with injectable failures.
type memRepo struct {
	mu      sync.Mutex
	entries map[string]*cache.Entry
	getErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{entries: map[string]*cache.Entry{}}
}

func (r *memRepo) CreateSchema() error { return nil }

func (r *memRepo) Get(_ context.Context, key string) (*cache.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return nil, r.getErr
	}

	return r.entries[key], nil
}

func (r *memRepo) Put(_ context.Context, key string, entry *cache.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[key] = entry

	return nil
}

func (r *memRepo) Clear(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, key)

	return nil
}

func (r *memRepo) ClearAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = map[string]*cache.Entry{}

	return nil
}

func (r *memRepo) Stats(_ context.Context) ([]cache.KeyStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make([]cache.KeyStat, 0, len(r.entries))
	for key := range r.entries {
		stats = append(stats, cache.KeyStat{Key: key, Fresh: true})
	}

	return stats, nil
}

func testStore(catalog *stubCatalog, repo cache.Repository) *Store {
	builder := mapdata.NewBuilder(geocode.NewChain(geocode.GazetteerExact{}))

	return NewStore(catalog, builder, repo)
}

func sampleItems() []atom.InformationObject {
	return []atom.InformationObject{
		{Slug: "oficina-ceilandia", Title: "Oficina", PlaceAccessPoints: []string{"Ceilândia"}},
		{Slug: "fita-perdida", Title: "Fita"},
	}
}

func TestMapDataBuildsAndCaches(t *testing.T) {
	catalog := &stubCatalog{items: sampleItems()}
	store := testStore(catalog, newMemRepo())

	fc, err := store.MapData(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, int32(1), catalog.fetches.Load())

	// Second call must be served from cache.
	fc, err = store.MapData(t.Context(), "")
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, int32(1), catalog.fetches.Load(), "cache hit must not refetch")
}

func TestMapDataSeparateKeysPerFilter(t *testing.T) {
	catalog := &stubCatalog{items: sampleItems()}
	store := testStore(catalog, newMemRepo())

	_, err := store.MapData(t.Context(), "")
	require.NoError(t, err)

	_, err = store.MapData(t.Context(), "dj-jamaika")
	require.NoError(t, err)

	assert.Equal(t, int32(2), catalog.fetches.Load(), "each filter has its own cache row")
}

func TestItemsSharesCacheWithMapData(t *testing.T) {
	catalog := &stubCatalog{items: sampleItems()}
	store := testStore(catalog, newMemRepo())

	_, err := store.MapData(t.Context(), "")
	require.NoError(t, err)

	items, err := store.Items(t.Context(), "")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, int32(1), catalog.fetches.Load())
}

func TestRefreshBypassesCache(t *testing.T) {
	catalog := &stubCatalog{items: sampleItems()}
	store := testStore(catalog, newMemRepo())

	_, err := store.MapData(t.Context(), "")
	require.NoError(t, err)

	_, err = store.Refresh(t.Context(), "")
	require.NoError(t, err)

	assert.Equal(t, int32(2), catalog.fetches.Load())
}

func TestMapDataUpstreamFailure(t *testing.T) {
	catalog := &stubCatalog{err: errors.New("atom is down")}
	store := testStore(catalog, newMemRepo())

	_, err := store.MapData(t.Context(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching catalog")
}

func TestMapDataCacheFailureDegradesToRebuild(t *testing.T) {
	catalog := &stubCatalog{items: sampleItems()}
	repo := newMemRepo()
	repo.getErr = errors.New("duckdb file is corrupt")
	store := testStore(catalog, repo)

	fc, err := store.MapData(t.Context(), "")
	require.NoError(t, err, "a broken cache must not take the map down")
	assert.Len(t, fc.Features, 2)
}

func TestConcurrentRequestsShareOneRebuild(t *testing.T) {
	catalog := &stubCatalog{items: sampleItems(), delay: 50 * time.Millisecond}
	repo := newMemRepo()
	// Force every request down the rebuild path.
	repo.getErr = errors.New("unavailable")
	store := testStore(catalog, repo)

	var wg sync.WaitGroup

	for range 8 {
		wg.Go(func() {
			_, err := store.MapData(context.Background(), "")
			assert.NoError(t, err)
		})
	}

	wg.Wait()

	assert.LessOrEqual(t, catalog.fetches.Load(), int32(2),
		"concurrent requests for one key must share rebuilds")
}

func TestClearCache(t *testing.T) {
	catalog := &stubCatalog{items: sampleItems()}
	repo := newMemRepo()
	store := testStore(catalog, repo)

	_, err := store.MapData(t.Context(), "")
	require.NoError(t, err)
	_, err = store.MapData(t.Context(), "dj-jamaika")
	require.NoError(t, err)

	require.NoError(t, store.ClearCache(t.Context(), "dj-jamaika"))

	stats, err := store.CacheStats(t.Context())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "all", stats[0].Key)

	require.NoError(t, store.ClearCache(t.Context(), ""))

	stats, err = store.CacheStats(t.Context())
	require.NoError(t, err)
	assert.Empty(t, stats)
}

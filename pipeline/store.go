// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline glues the catalog client, the resolution chain and
// the cache into the refresh flow the HTTP API serves from.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/acervohiphopdf/acervomapa/atom"
	"github.com/acervohiphopdf/acervomapa/cache"
	"github.com/acervohiphopdf/acervomapa/mapdata"
)

// allKey is the cache key for the unfiltered collection.
const allKey = "all"

// Catalog is the slice of the AtoM client the pipeline needs.
type Catalog interface {
	FetchAll(ctx context.Context, creator string) ([]atom.InformationObject, error)
	EnrichAll(ctx context.Context, items []atom.InformationObject) []atom.InformationObject
}

// Store serves map payloads, rebuilding through the full pipeline on a
// cache miss. Concurrent requests for the same key share one rebuild.
type Store struct {
	catalog Catalog
	builder *mapdata.Builder
	repo    cache.Repository

	group singleflight.Group
}

// NewStore wires the pipeline together.
func NewStore(catalog Catalog, builder *mapdata.Builder, repo cache.Repository) *Store {
	return &Store{
		catalog: catalog,
		builder: builder,
		repo:    repo,
	}
}

// cacheKey maps a creator filter to its cache row.
func cacheKey(creator string) string {
	if creator == "" {
		return allKey
	}

	return creator
}

// MapData returns the collection for the given creator filter, serving
// from cache when fresh. Cache read failures degrade to a rebuild.
func (s *Store) MapData(ctx context.Context, creator string) (*mapdata.FeatureCollection, error) {
	key := cacheKey(creator)

	if entry := s.cached(ctx, key); entry != nil {
		return entry.GeoJSON, nil
	}

	entry, err := s.rebuild(ctx, key, creator)
	if err != nil {
		return nil, err
	}

	return entry.GeoJSON, nil
}

// Items returns the enriched records behind the collection, for the
// list view.
func (s *Store) Items(ctx context.Context, creator string) ([]atom.InformationObject, error) {
	key := cacheKey(creator)

	if entry := s.cached(ctx, key); entry != nil {
		return entry.Items, nil
	}

	entry, err := s.rebuild(ctx, key, creator)
	if err != nil {
		return nil, err
	}

	return entry.Items, nil
}

// Refresh rebuilds the collection for the filter regardless of cache
// freshness and stores the result.
func (s *Store) Refresh(ctx context.Context, creator string) (*mapdata.FeatureCollection, error) {
	entry, err := s.rebuild(ctx, cacheKey(creator), creator)
	if err != nil {
		return nil, err
	}

	return entry.GeoJSON, nil
}

// ClearCache drops the cached payload for creator, or everything when
// creator is empty.
func (s *Store) ClearCache(ctx context.Context, creator string) error {
	if creator == "" {
		return s.repo.ClearAll(ctx)
	}

	return s.repo.Clear(ctx, cacheKey(creator))
}

// CacheStats lists the cached keys and their ages.
func (s *Store) CacheStats(ctx context.Context) ([]cache.KeyStat, error) {
	return s.repo.Stats(ctx)
}

func (s *Store) cached(ctx context.Context, key string) *cache.Entry {
	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		// A broken cache must not take the map down.
		log.Printf("Pipeline - cache read for %q failed: %s", key, err)

		return nil
	}

	return entry
}

// rebuild runs the full fetch, enrich, resolve, cache sequence. The
// singleflight group folds concurrent rebuilds of the same key into one
// upstream pass.
func (s *Store) rebuild(ctx context.Context, key, creator string) (*cache.Entry, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		started := time.Now()

		items, err := s.catalog.FetchAll(ctx, creator)
		if err != nil {
			return nil, fmt.Errorf("fetching catalog: %w", err)
		}

		items = s.catalog.EnrichAll(ctx, items)

		fc, err := s.builder.Build(ctx, items, creator)
		if err != nil {
			return nil, fmt.Errorf("building map data: %w", err)
		}

		entry := &cache.Entry{
			GeoJSON: fc,
			Items:   items,
		}

		if err := s.repo.Put(ctx, key, entry); err != nil {
			// Serve the fresh build even when persisting it fails.
			log.Printf("Pipeline - cache write for %q failed: %s", key, err)
		}

		log.Printf("Pipeline - rebuilt %q: %d records, %.1f%% placed in %s",
			key, fc.Metadata.TotalItems, fc.Metadata.SuccessRate,
			time.Since(started).Round(time.Millisecond))

		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*cache.Entry), nil
}

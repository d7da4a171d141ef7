// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache persists built map payloads in DuckDB so a refresh is
// only paid once per TTL window.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/acervohiphopdf/acervomapa/atom"
	"github.com/acervohiphopdf/acervomapa/mapdata"
)

// DefaultTTL is how long a cached payload stays fresh.
const DefaultTTL = 24 * time.Hour

// Entry is one cached build: the rendered collection plus the enriched
// records it was built from.
type Entry struct {
	GeoJSON   *mapdata.FeatureCollection
	Items     []atom.InformationObject
	CreatedAt time.Time
}

// KeyStat describes one cache row for the stats endpoint.
type KeyStat struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	Age       string    `json:"age"`
	Fresh     bool      `json:"fresh"`
}

// Repository stores map payloads keyed by filter.
type Repository interface {
	// CreateSchema creates the cache table.
	CreateSchema() error

	// Get returns the fresh entry for key, or nil on a miss. Stale
	// rows are dropped on read.
	Get(ctx context.Context, key string) (*Entry, error)

	// Put inserts or replaces the entry for key.
	Put(ctx context.Context, key string, entry *Entry) error

	// Clear drops the entry for key.
	Clear(ctx context.Context, key string) error

	// ClearAll drops every entry.
	ClearAll(ctx context.Context) error

	// Stats lists the stored keys with their ages.
	Stats(ctx context.Context) ([]KeyStat, error)
}

type sqlCacheRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewRepository creates a DuckDB-backed cache with the given TTL.
// A zero ttl means DefaultTTL.
func NewRepository(db *sql.DB, ttl time.Duration) Repository {
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &sqlCacheRepository{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

func (r *sqlCacheRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS map_cache (
			cache_key VARCHAR PRIMARY KEY,
			geojson TEXT NOT NULL,
			items TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
	`)

	return err
}

func (r *sqlCacheRepository) Get(ctx context.Context, key string) (*Entry, error) {
	var (
		geojsonRaw string
		itemsRaw   string
		createdAt  time.Time
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT geojson, items, created_at
		FROM map_cache
		WHERE cache_key = ?
	`, key).Scan(&geojsonRaw, &itemsRaw, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading cache row %q: %w", key, err)
	}

	// An entry is served only while strictly younger than the TTL.
	if r.now().Sub(createdAt) >= r.ttl {
		if err := r.Clear(ctx, key); err != nil {
			return nil, fmt.Errorf("dropping stale cache row %q: %w", key, err)
		}

		return nil, nil
	}

	entry := &Entry{CreatedAt: createdAt}

	if err := json.Unmarshal([]byte(geojsonRaw), &entry.GeoJSON); err != nil {
		return nil, fmt.Errorf("decoding cached geojson %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(itemsRaw), &entry.Items); err != nil {
		return nil, fmt.Errorf("decoding cached items %q: %w", key, err)
	}

	return entry, nil
}

func (r *sqlCacheRepository) Put(ctx context.Context, key string, entry *Entry) error {
	geojsonRaw, err := json.Marshal(entry.GeoJSON)
	if err != nil {
		return fmt.Errorf("encoding geojson for cache: %w", err)
	}

	itemsRaw, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("encoding items for cache: %w", err)
	}

	// TIMESTAMP has no zone, so store UTC wall time.
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}

	createdAt = createdAt.UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO map_cache (cache_key, geojson, items, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET
			geojson = excluded.geojson,
			items = excluded.items,
			created_at = excluded.created_at
	`, key, string(geojsonRaw), string(itemsRaw), createdAt)

	if err != nil {
		return fmt.Errorf("writing cache row %q: %w", key, err)
	}

	return nil
}

func (r *sqlCacheRepository) Clear(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM map_cache WHERE cache_key = ?`, key)

	return err
}

func (r *sqlCacheRepository) ClearAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM map_cache`)

	return err
}

func (r *sqlCacheRepository) Stats(ctx context.Context) (_ []KeyStat, err error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cache_key, created_at
		FROM map_cache
		ORDER BY cache_key
	`)
	if err != nil {
		return nil, fmt.Errorf("listing cache rows: %w", err)
	}

	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	var stats []KeyStat

	for rows.Next() {
		var s KeyStat
		if err := rows.Scan(&s.Key, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning cache row: %w", err)
		}

		age := r.now().Sub(s.CreatedAt)
		s.Age = age.Round(time.Second).String()
		s.Fresh = age <= r.ttl

		stats = append(stats, s)
	}

	return stats, rows.Err()
}

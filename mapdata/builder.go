// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package mapdata

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/uber/h3-go/v4"

	"github.com/acervohiphopdf/acervomapa/atom"
	"github.com/acervohiphopdf/acervomapa/geocode"
	"github.com/acervohiphopdf/acervomapa/spatial"
	"github.com/acervohiphopdf/acervomapa/utils/textutils"
)

const (
	// h3Resolution is fine enough to distinguish neighboring venues
	// (~460m hexagons) without leaking exact positions.
	h3Resolution = 8

	// clusterThreshold groups markers closer than this many meters.
	clusterThreshold = 250.0

	// descriptionLimit caps the popup text length in runes.
	descriptionLimit = 280
)

// Builder resolves catalog records to coordinates and assembles the
// FeatureCollection. Safe for concurrent use.
type Builder struct {
	chain *geocode.Chain
	now   func() time.Time
}

// NewBuilder creates a builder over the given resolution chain.
func NewBuilder(chain *geocode.Chain) *Builder {
	return &Builder{
		chain: chain,
		now:   time.Now,
	}
}

// Build produces exactly one feature per record. Records with embedded
// note coordinates keep them; everything else goes through the chain,
// and records no stage can place land on the default center.
func (b *Builder) Build(ctx context.Context, items []atom.InformationObject, filter string) (*FeatureCollection, error) {
	fc := &FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]*Feature, 0, len(items)),
	}

	counts := make(map[geocode.Provenance]int)

	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("map build interrupted: %w", err)
		}

		feature := b.buildFeature(ctx, &items[i])
		counts[feature.Properties.Provenance]++

		fc.Features = append(fc.Features, feature)
	}

	fc.Metadata = b.buildMetadata(fc.Features, counts, filter)

	return fc, nil
}

func (b *Builder) buildFeature(ctx context.Context, item *atom.InformationObject) *Feature {
	point, provenance, displayName := b.resolve(ctx, item)

	thumbnail := item.ThumbnailURL
	if thumbnail == "" && item.DigitalObject != nil {
		thumbnail = item.DigitalObject.ThumbnailURL
	}

	f := &Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{point.Lng, point.Lat},
		},
		Properties: FeatureProperties{
			Slug:               item.Slug,
			Title:              item.Title,
			Description:        textutils.Truncate(textutils.HTMLToText(item.ScopeAndContent), descriptionLimit),
			Dates:              item.CreationDates,
			Places:             item.PlaceAccessPoints,
			Thumbnail:          thumbnail,
			Provenance:         provenance,
			HasRealCoordinates: provenance.Real(),
			DisplayName:        displayName,
		},
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(point.Lat, point.Lng), h3Resolution)
	if err != nil {
		log.Printf("MapData - h3 cell for %q: %s", item.Slug, err)
	} else {
		f.Properties.H3Cell = cell.String()
	}

	return f
}

func (b *Builder) resolve(ctx context.Context, item *atom.InformationObject) (spatial.Point, geocode.Provenance, string) {
	if p := geocode.ExtractNoteCoordinates(item.Notes); p != nil {
		return *p, geocode.ProvenanceNotes, ""
	}

	if res := b.chain.Resolve(ctx, item.PlaceAccessPoints); res != nil {
		return res.Point, res.Provenance, res.DisplayName
	}

	return geocode.DefaultCenter, geocode.ProvenanceDefault, ""
}

func (b *Builder) buildMetadata(features []*Feature, counts map[geocode.Provenance]int, filter string) Metadata {
	total := len(features)

	md := Metadata{
		GeneratedAt: b.now().UTC(),
		Filter:      filter,
		TotalItems:  total,
		Clusters:    len(clusterFeatures(features, clusterThreshold)),
		Provenance:  make(map[geocode.Provenance]ProvenanceStat, len(counts)),
	}

	for provenance, count := range counts {
		md.Provenance[provenance] = ProvenanceStat{
			Count:      count,
			Percentage: percentage(count, total),
		}

		if provenance.Real() {
			md.RealCoordinates += count
		}
	}

	// Success counts every record placed somewhere, however approximate;
	// only the default-center fallback is a failure.
	md.SuccessRate = percentage(total-counts[geocode.ProvenanceDefault], total)

	return md
}

// percentage returns count/total as percent, rounded to one decimal.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}

	return math.Round(float64(count)/float64(total)*1000) / 10
}

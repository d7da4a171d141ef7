// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves archive place names to coordinates inside the
// Distrito Federal. Resolution runs as a chain of stages ordered from most
// to least trustworthy; the first stage that answers wins.
package geocode

import (
	"context"
	"log"
	"strings"

	"github.com/acervohiphopdf/acervomapa/spatial"
)

// Bounds is the bounding box used to sanity-check every resolved
// coordinate. Roughly the Distrito Federal plus a small margin.
var Bounds = spatial.BoundingBox{
	MinLat: -16.06,
	MaxLat: -15.45,
	MinLng: -48.30,
	MaxLng: -47.30,
}

// DefaultCenter is the fallback position for records no stage can place.
// Rodoviária do Plano Piloto, the symbolic center of DF hip hop.
var DefaultCenter = spatial.Point{Lat: -15.7939, Lng: -47.8828}

// Provenance records which stage produced a coordinate.
type Provenance string

const (
	// ProvenanceNotes coordinate embedded in the record's own notes.
	ProvenanceNotes Provenance = "notes"
	// ProvenanceGazetteerExact exact match against the DF region gazetteer.
	ProvenanceGazetteerExact Provenance = "gazetteer_exact"
	// ProvenanceGazetteerPartial substring match against the gazetteer.
	ProvenanceGazetteerPartial Provenance = "gazetteer_partial"
	// ProvenanceLocalDataset match against the curated venue dataset.
	ProvenanceLocalDataset Provenance = "local_dataset"
	// ProvenanceMunicipality match against the municipality reference service.
	ProvenanceMunicipality Provenance = "municipality"
	// ProvenanceGeocoder answer from the external geocoder.
	ProvenanceGeocoder Provenance = "geocoder"
	// ProvenanceDefault fallback to DefaultCenter.
	ProvenanceDefault Provenance = "default"
)

// Real reports whether the coordinate pinpoints the actual spot rather
// than a regional or fallback approximation. Only note-embedded and
// geocoder answers qualify.
func (p Provenance) Real() bool {
	return p == ProvenanceNotes || p == ProvenanceGeocoder
}

// Resolution is a resolved coordinate plus where it came from.
type Resolution struct {
	Point       spatial.Point
	Provenance  Provenance
	DisplayName string
}

// Resolver is one stage of the resolution chain. A nil Resolution with a
// nil error means "no answer here, ask the next stage".
type Resolver interface {
	// Name identifies the stage in logs.
	Name() string
	Resolve(ctx context.Context, place string) (*Resolution, error)
}

// Chain runs stages in order. Within a stage every place name is tried
// before falling through to the next stage, so a weak match on the first
// name never shadows a strong match on the second.
type Chain struct {
	stages []Resolver
}

// NewChain builds a chain from stages ordered most trustworthy first.
func NewChain(stages ...Resolver) *Chain {
	return &Chain{stages: stages}
}

// Resolve returns the first valid answer, or nil when every stage passes.
// Stage errors are logged and treated as a miss for that place name.
func (c *Chain) Resolve(ctx context.Context, places []string) *Resolution {
	for _, stage := range c.stages {
		for _, place := range places {
			place = strings.TrimSpace(place)
			if place == "" {
				continue
			}

			if err := ctx.Err(); err != nil {
				return nil
			}

			res, err := stage.Resolve(ctx, place)
			if err != nil {
				log.Printf("Geocode - %s failed for %q: %s", stage.Name(), place, err)

				continue
			}

			if res == nil {
				continue
			}

			if !res.Point.Valid() {
				log.Printf("Geocode - %s returned invalid point %s for %q, discarding",
					stage.Name(), res.Point, place)

				continue
			}

			// Free-text geocoding wanders to homonyms elsewhere in the
			// country, so its answers must land inside the DF box. The
			// curated stages may legitimately point outside it: the
			// municipality fallback exists for records filed under
			// towns beyond the DF.
			if res.Provenance == ProvenanceGeocoder && !Bounds.Contains(res.Point) {
				log.Printf("Geocode - %s returned out-of-range point %s for %q, discarding",
					stage.Name(), res.Point, place)

				continue
			}

			return res
		}
	}

	return nil
}

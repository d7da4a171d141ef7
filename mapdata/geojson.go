// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapdata turns enriched catalog records into the GeoJSON
// FeatureCollection the map front end consumes.
package mapdata

import (
	"time"

	"github.com/acervohiphopdf/acervomapa/geocode"
)

// Geometry is a GeoJSON point geometry. Coordinates are [lng, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// FeatureProperties carries the record attributes the map renders.
type FeatureProperties struct {
	Slug               string             `json:"slug"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	Dates              []string           `json:"dates,omitempty"`
	Places             []string           `json:"places,omitempty"`
	Thumbnail          string             `json:"thumbnail,omitempty"`
	Provenance         geocode.Provenance `json:"provenance"`
	HasRealCoordinates bool               `json:"has_real_coordinates"`
	DisplayName        string             `json:"display_name,omitempty"`
	H3Cell             string             `json:"h3_cell,omitempty"`
}

// Feature is one catalog record placed on the map.
type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// ProvenanceStat is the share of records resolved by one stage.
type ProvenanceStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Metadata summarizes how the collection was built.
type Metadata struct {
	GeneratedAt     time.Time                             `json:"generated_at"`
	Filter          string                                `json:"filter,omitempty"`
	TotalItems      int                                   `json:"total_items"`
	RealCoordinates int                                   `json:"real_coordinates"`
	SuccessRate     float64                               `json:"success_rate"`
	Clusters        int                                   `json:"clusters"`
	Provenance      map[geocode.Provenance]ProvenanceStat `json:"provenance"`
}

// FeatureCollection is the complete map payload.
type FeatureCollection struct {
	Type     string     `json:"type"`
	Features []*Feature `json:"features"`
	Metadata Metadata   `json:"metadata"`
}

// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package atom

// InformationObject is an archival description record as returned by the
// AtoM REST API. Browse results carry the identifying subset; the detail
// endpoint fills in the longer descriptive fields.
type InformationObject struct {
	Slug              string   `json:"slug"`
	Title             string   `json:"title"`
	Notes             []string `json:"notes,omitempty"`
	PlaceAccessPoints []string `json:"place_access_points,omitempty"`
	CreationDates     []string `json:"creation_dates,omitempty"`
	ScopeAndContent   string   `json:"scope_and_content,omitempty"`
	ThumbnailURL      string   `json:"thumbnail_url,omitempty"`

	// Detail-only fields.
	ArchivalHistory         string         `json:"archival_history,omitempty"`
	PhysicalCharacteristics string         `json:"physical_characteristics,omitempty"`
	DigitalObject           *DigitalObject `json:"digital_object,omitempty"`
}

// DigitalObject points at the digitized artifact attached to a record.
type DigitalObject struct {
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// listResponse is the envelope of the browse endpoint.
type listResponse struct {
	Total   int                 `json:"total"`
	Results []InformationObject `json:"results"`
}

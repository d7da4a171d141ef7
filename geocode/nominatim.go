// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/acervohiphopdf/acervomapa/spatial"
	"github.com/acervohiphopdf/acervomapa/utils/httputils"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder resolves place names through the public Nominatim
// instance. Queries are scoped to the DF bounding box and paced to honor
// the usage policy of the shared service.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	bounds     spatial.BoundingBox
	httpClient *http.Client
}

// NominatimOptions configuration for the geocoder.
type NominatimOptions struct {
	// BaseURL overrides the public instance, mainly for tests.
	BaseURL string
	// UserAgent identifies this deployment, required by the usage policy.
	UserAgent string
	// MinInterval spacing between successive queries. Defaults to one
	// second, the public instance's absolute maximum rate.
	MinInterval time.Duration
}

// NewNominatimGeocoder creates the geocoder stage.
func NewNominatimGeocoder(opts NominatimOptions) *NominatimGeocoder {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = nominatimBaseURL
	}

	minInterval := opts.MinInterval
	if minInterval == 0 {
		minInterval = time.Second
	}

	return &NominatimGeocoder{
		baseURL:   baseURL,
		userAgent: opts.UserAgent,
		bounds:    Bounds,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &httputils.ThrottledRoundTripper{
				Transport:   http.DefaultTransport,
				MinInterval: minInterval,
			},
		},
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *NominatimGeocoder) Name() string { return "nominatim" }

// Resolve queries Nominatim with the place name anchored to the Distrito
// Federal. Results outside the bounding box are discarded.
func (g *NominatimGeocoder) Resolve(ctx context.Context, place string) (_ *Resolution, err error) {
	params := url.Values{}
	params.Set("q", place+", Distrito Federal, Brasil")
	params.Set("format", "jsonv2")
	params.Set("limit", "3")
	params.Set("viewbox", g.bounds.Viewbox())
	params.Set("bounded", "1")

	reqURL := g.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoder request: %w", err)
	}

	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request failed: %w", err)
	}

	defer func() {
		err = errors.Join(err, resp.Body.Close())
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, "nominatim")
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding geocoder response: %w", err)
	}

	for _, r := range results {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lng, errLng := strconv.ParseFloat(r.Lon, 64)

		if errLat != nil || errLng != nil {
			continue
		}

		point := spatial.Point{Lat: lat, Lng: lng}
		if !g.bounds.Contains(point) {
			continue
		}

		return &Resolution{
			Point:       point,
			Provenance:  ProvenanceGeocoder,
			DisplayName: r.DisplayName,
		}, nil
	}

	return nil, nil
}

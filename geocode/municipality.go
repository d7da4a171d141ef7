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
	"time"

	"github.com/acervohiphopdf/acervomapa/spatial"
	"github.com/acervohiphopdf/acervomapa/utils/textutils"
)

// Municipality is one entry from the municipality reference service.
type Municipality struct {
	Name  string `json:"nome"`
	State string `json:"uf"`
	Point spatial.Point
}

// MunicipalityService looks up Brazilian municipalities by name. A nil
// Municipality with a nil error means the name is unknown.
type MunicipalityService interface {
	LookupMunicipality(ctx context.Context, name string) (*Municipality, error)
}

// HTTPMunicipalityService queries a hosted municipality reference API
// that serves IBGE records enriched with centroid coordinates.
type HTTPMunicipalityService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPMunicipalityService creates a client for the given API root.
func NewHTTPMunicipalityService(baseURL string) *HTTPMunicipalityService {
	return &HTTPMunicipalityService{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type municipalityRecord struct {
	Name      string  `json:"nome"`
	State     string  `json:"uf"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LookupMunicipality returns the municipality whose name matches after
// accent folding, preferring entries in the Distrito Federal when the
// name is ambiguous across states.
func (s *HTTPMunicipalityService) LookupMunicipality(ctx context.Context, name string) (_ *Municipality, err error) {
	params := url.Values{}
	params.Set("nome", name)

	reqURL := s.baseURL + "/municipios?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building municipality request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("municipality request failed: %w", err)
	}

	defer func() {
		err = errors.Join(err, resp.Body.Close())
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, "municipality service")
	}

	var records []municipalityRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding municipality response: %w", err)
	}

	folded := textutils.Fold(name)

	var match *municipalityRecord

	for i := range records {
		if textutils.Fold(records[i].Name) != folded {
			continue
		}

		if match == nil || records[i].State == "DF" {
			match = &records[i]
		}
	}

	if match == nil {
		return nil, nil
	}

	return &Municipality{
		Name:  match.Name,
		State: match.State,
		Point: spatial.Point{Lat: match.Latitude, Lng: match.Longitude},
	}, nil
}

// MunicipalityResolver adapts a MunicipalityService into a chain stage.
type MunicipalityResolver struct {
	Service MunicipalityService
}

func (r MunicipalityResolver) Name() string { return "municipality lookup" }

func (r MunicipalityResolver) Resolve(ctx context.Context, place string) (*Resolution, error) {
	m, err := r.Service.LookupMunicipality(ctx, place)
	if err != nil {
		return nil, err
	}

	if m == nil {
		return nil, nil
	}

	return &Resolution{
		Point:       m.Point,
		Provenance:  ProvenanceMunicipality,
		DisplayName: fmt.Sprintf("%s, %s", m.Name, m.State),
	}, nil
}

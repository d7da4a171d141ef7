// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/acervohiphopdf/acervomapa/spatial"
	"github.com/acervohiphopdf/acervomapa/utils/textutils"
)

// DatasetEntry is one curated venue from the cultural locations layer.
type DatasetEntry struct {
	Name  string        `json:"name"`
	Point spatial.Point `json:"point"`
}

type datasetEntry struct {
	DatasetEntry
	folded string
}

// LocalDataset resolves place names against a curated list of venues that
// recur across the archive but are too specific for the region gazetteer.
type LocalDataset struct {
	entries []datasetEntry
}

// defaultVenues are the venues the archive records reference most often.
var defaultVenues = []DatasetEntry{
	{Name: "Quarentão", Point: spatial.Point{Lat: -15.8190, Lng: -48.1030}},
	{Name: "Casa do Cantador", Point: spatial.Point{Lat: -15.8180, Lng: -48.1070}},
	{Name: "Feira da Ceilândia", Point: spatial.Point{Lat: -15.8160, Lng: -48.1110}},
	{Name: "Praça do Relógio", Point: spatial.Point{Lat: -15.8380, Lng: -48.0540}},
	{Name: "Museu Nacional da República", Point: spatial.Point{Lat: -15.7980, Lng: -47.8760}},
	{Name: "Teatro Nacional Claudio Santoro", Point: spatial.Point{Lat: -15.7920, Lng: -47.8780}},
	{Name: "Concha Acústica", Point: spatial.Point{Lat: -15.7810, Lng: -47.8360}},
	{Name: "Espaço Cultural Renato Russo", Point: spatial.Point{Lat: -15.8210, Lng: -47.9060}},
	{Name: "Torre de TV", Point: spatial.Point{Lat: -15.7900, Lng: -47.8930}},
	{Name: "Parque da Cidade", Point: spatial.Point{Lat: -15.8030, Lng: -47.9090}},
	{Name: "Estádio Mané Garrincha", Point: spatial.Point{Lat: -15.7830, Lng: -47.8990}},
	{Name: "Museu Vivo da Memória Candanga", Point: spatial.Point{Lat: -15.8680, Lng: -47.9530}},
	{Name: "CCBB Brasília", Point: spatial.Point{Lat: -15.8050, Lng: -47.9440}},
	{Name: "Biblioteca Nacional de Brasília", Point: spatial.Point{Lat: -15.7960, Lng: -47.8770}},
}

// NewLocalDataset builds the resolver from the bundled venue list.
func NewLocalDataset() *LocalDataset {
	return newLocalDataset(defaultVenues)
}

// LoadDataset reads a venue list from a JSON file, for deployments that
// maintain their own curated layer.
func LoadDataset(filepath string) (*LocalDataset, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading venues file: %w", err)
	}

	var entries []DatasetEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing venues JSON: %w", err)
	}

	return newLocalDataset(entries), nil
}

func newLocalDataset(entries []DatasetEntry) *LocalDataset {
	ds := &LocalDataset{
		entries: make([]datasetEntry, 0, len(entries)),
	}

	for _, e := range entries {
		ds.entries = append(ds.entries, datasetEntry{
			DatasetEntry: e,
			folded:       textutils.Fold(e.Name),
		})
	}

	return ds
}

func (d *LocalDataset) Name() string { return "local dataset" }

func (d *LocalDataset) Resolve(_ context.Context, place string) (*Resolution, error) {
	folded := textutils.Fold(place)
	if folded == "" {
		return nil, nil
	}

	for _, e := range d.entries {
		if strings.Contains(folded, e.folded) || strings.Contains(e.folded, folded) {
			return &Resolution{
				Point:       e.Point,
				Provenance:  ProvenanceLocalDataset,
				DisplayName: e.Name,
			}, nil
		}
	}

	return nil, nil
}

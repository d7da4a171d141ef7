// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"sort"
	"strings"

	"github.com/acervohiphopdf/acervomapa/spatial"
	"github.com/acervohiphopdf/acervomapa/utils/textutils"
)

// regionCoordinates maps folded DF administrative region names (plus the
// aliases that show up in archive records) to their approximate centers.
var regionCoordinates = map[string]spatial.Point{
	"brasilia":                   {Lat: -15.7939, Lng: -47.8828},
	"plano piloto":               {Lat: -15.7939, Lng: -47.8828},
	"asa norte":                  {Lat: -15.7650, Lng: -47.8820},
	"asa sul":                    {Lat: -15.8190, Lng: -47.9030},
	"gama":                       {Lat: -16.0150, Lng: -48.0640},
	"taguatinga":                 {Lat: -15.8330, Lng: -48.0570},
	"brazlandia":                 {Lat: -15.6760, Lng: -48.2010},
	"sobradinho":                 {Lat: -15.6530, Lng: -47.7860},
	"sobradinho ii":              {Lat: -15.6330, Lng: -47.8250},
	"planaltina":                 {Lat: -15.6180, Lng: -47.6540},
	"paranoa":                    {Lat: -15.7700, Lng: -47.7800},
	"nucleo bandeirante":         {Lat: -15.8710, Lng: -47.9660},
	"ceilandia":                  {Lat: -15.8419, Lng: -48.1094},
	"guara":                      {Lat: -15.8260, Lng: -47.9820},
	"cruzeiro":                   {Lat: -15.7920, Lng: -47.9370},
	"samambaia":                  {Lat: -15.8760, Lng: -48.0890},
	"santa maria":                {Lat: -16.0180, Lng: -48.0150},
	"sao sebastiao":              {Lat: -15.9010, Lng: -47.7770},
	"recanto das emas":           {Lat: -15.9050, Lng: -48.0630},
	"lago sul":                   {Lat: -15.8480, Lng: -47.8560},
	"lago norte":                 {Lat: -15.7290, Lng: -47.8520},
	"riacho fundo":               {Lat: -15.8810, Lng: -48.0180},
	"riacho fundo ii":            {Lat: -15.9000, Lng: -48.0450},
	"candangolandia":             {Lat: -15.8530, Lng: -47.9520},
	"aguas claras":               {Lat: -15.8350, Lng: -48.0280},
	"varjao":                     {Lat: -15.7110, Lng: -47.8780},
	"park way":                   {Lat: -15.9010, Lng: -47.9650},
	"scia":                       {Lat: -15.7860, Lng: -47.9540},
	"estrutural":                 {Lat: -15.7860, Lng: -47.9950},
	"sudoeste":                   {Lat: -15.7940, Lng: -47.9250},
	"octogonal":                  {Lat: -15.8000, Lng: -47.9320},
	"jardim botanico":            {Lat: -15.8680, Lng: -47.8030},
	"itapoa":                     {Lat: -15.7490, Lng: -47.7680},
	"sia":                        {Lat: -15.8030, Lng: -47.9500},
	"vicente pires":              {Lat: -15.8040, Lng: -48.0290},
	"fercal":                     {Lat: -15.6020, Lng: -47.8700},
	"sol nascente":               {Lat: -15.8120, Lng: -48.1470},
	"por do sol":                 {Lat: -15.8280, Lng: -48.1380},
	"arniqueira":                 {Lat: -15.8550, Lng: -48.0120},
	"setor comercial sul":        {Lat: -15.7970, Lng: -47.8900},
	"setor comercial norte":      {Lat: -15.7880, Lng: -47.8870},
	"rodoviaria do plano piloto": {Lat: -15.7939, Lng: -47.8828},
}

// partialKeys holds the gazetteer keys ordered longest first so substring
// matching is deterministic and prefers the most specific region.
var partialKeys = func() []string {
	keys := make([]string, 0, len(regionCoordinates))
	for k := range regionCoordinates {
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}

		return keys[i] < keys[j]
	})

	return keys
}()

// GazetteerExact matches a place name against the region table after
// accent folding. Stage one of the chain.
type GazetteerExact struct{}

func (GazetteerExact) Name() string { return "gazetteer exact" }

func (GazetteerExact) Resolve(_ context.Context, place string) (*Resolution, error) {
	key := textutils.Fold(place)

	point, ok := regionCoordinates[key]
	if !ok {
		return nil, nil
	}

	return &Resolution{
		Point:       point,
		Provenance:  ProvenanceGazetteerExact,
		DisplayName: place,
	}, nil
}

// GazetteerPartial matches when the folded place name contains a region
// name or vice versa, so "Feira da Ceilândia Norte" still lands on
// Ceilândia. Stage two.
type GazetteerPartial struct{}

func (GazetteerPartial) Name() string { return "gazetteer partial" }

func (GazetteerPartial) Resolve(_ context.Context, place string) (*Resolution, error) {
	folded := textutils.Fold(place)
	if folded == "" {
		return nil, nil
	}

	for _, key := range partialKeys {
		if strings.Contains(folded, key) || strings.Contains(key, folded) {
			return &Resolution{
				Point:       regionCoordinates[key],
				Provenance:  ProvenanceGazetteerPartial,
				DisplayName: place,
			}, nil
		}
	}

	return nil, nil
}

// Copyright 2026 The AcervoMapa Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/acervohiphopdf/acervomapa/spatial"
)

// Archivists embed coordinates in free-text notes in a handful of shapes.
// Patterns are ordered from most to least explicit; group 1 is always the
// latitude and group 2 the longitude.
var notePatterns = []*regexp.Regexp{
	// "lat: -15.8419, long: -48.1094" / "Latitude -15,84 Longitude -48,10"
	regexp.MustCompile(`(?i)lat(?:itude)?\.?\s*[:=]?\s*(-?\d{1,2}[.,]\d+)\s*[,;/\s]+\s*(?:lng|lon|long|longitude)\.?\s*[:=]?\s*(-?\d{1,3}[.,]\d+)`),
	// "-15.8419 | -48.1094"
	regexp.MustCompile(`(-?\d{1,2}[.,]\d+)\s*\|\s*(-?\d{1,3}[.,]\d+)`),
	// Bare decimal pair: "-15.8419, -48.1094". At least three decimals
	// to avoid swallowing dates and ordinary numbers.
	regexp.MustCompile(`(-?\d{1,2}\.\d{3,})\s*,\s*(-?\d{1,3}\.\d{3,})`),
}

// ExtractNoteCoordinates scans the given notes for an embedded coordinate
// pair. The first match that decodes to a plausible latitude/longitude
// wins; nil when no note carries one.
func ExtractNoteCoordinates(notes []string) *spatial.Point {
	for _, note := range notes {
		for _, pattern := range notePatterns {
			m := pattern.FindStringSubmatch(note)
			if m == nil {
				continue
			}

			lat, errLat := parseDecimal(m[1])
			lng, errLng := parseDecimal(m[2])

			if errLat != nil || errLng != nil {
				continue
			}

			if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
				continue
			}

			return &spatial.Point{Lat: lat, Lng: lng}
		}
	}

	return nil
}

// parseDecimal accepts both dot and comma decimal separators.
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

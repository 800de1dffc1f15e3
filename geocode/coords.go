// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode resolves free text location descriptions for Jamaica into
// coordinates and administrative areas, combining the Google Maps geocoding
// and Places APIs with local heuristics.
package geocode

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jamaicageo/jamlocate/spatial"
)

// Jamaica bounding box. Everything the resolver returns falls inside it.
const (
	MinLat = 17.0
	MaxLat = 19.0
	MinLng = -79.0
	MaxLng = -76.0
)

var coordPattern = regexp.MustCompile(`^([+-]?\d+\.?\d*)\s*[,\s]\s*([+-]?\d+\.?\d*)$`)

// InBounds reports whether the point falls inside the Jamaica bounding box.
func InBounds(p spatial.Point) bool {
	return p.Lat >= MinLat && p.Lat <= MaxLat && p.Lng >= MinLng && p.Lng <= MaxLng
}

// ParseCoordinates recognizes input that already is a "lat, lng" pair,
// tolerating surrounding parentheses, a missing minus sign on the longitude
// (Jamaica is entirely west of Greenwich) and transposed components. Input
// that does not normalize into the bounding box is not recognized, so the
// caller falls through to geocoding.
func ParseCoordinates(text string) (spatial.Point, bool) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)

	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return spatial.Point{}, false
	}

	a, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return spatial.Point{}, false
	}

	b, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return spatial.Point{}, false
	}

	if p, ok := correctPair(a, b); ok {
		return p, true
	}

	// The pair may be written longitude first.
	return correctPair(b, a)
}

// correctPair interprets (lat, lng), fixing the longitude sign, and
// validates the result against the bounding box.
func correctPair(lat, lng float64) (spatial.Point, bool) {
	if lat < MinLat || lat > MaxLat {
		return spatial.Point{}, false
	}

	if lng > 0 {
		lng = -lng
	}

	if lng < MinLng || lng > MaxLng {
		return spatial.Point{}, false
	}

	return spatial.Point{Lat: lat, Lng: lng}, true
}

// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"

	"github.com/jamaicageo/jamlocate/spatial"
)

// Candidate is a single provider answer. The resolver validates and ranks
// candidates; providers only report what the API returned.
type Candidate struct {
	Point       spatial.Point
	Quality     Quality
	Strategy    Strategy
	Types       []string // result type tags as reported by the provider
	DisplayName string
	Provider    string
}

// Geocoder turns an address-like query into candidate coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]Candidate, error)
}

// PlaceSearcher finds places by free text where address geocoding gives up.
type PlaceSearcher interface {
	SearchText(ctx context.Context, query string) ([]Candidate, error)
}

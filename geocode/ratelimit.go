// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

type rateLimitedGeocoder struct {
	geocoder Geocoder
	limiter  *rate.Limiter
}

// NewRateLimitedGeocoder gates every geocoding call through the limiter, so
// parallel batch workers collectively respect the provider's rate. A nil
// limiter returns the geocoder unchanged.
func NewRateLimitedGeocoder(g Geocoder, limiter *rate.Limiter) Geocoder {
	if limiter == nil {
		return g
	}

	return &rateLimitedGeocoder{geocoder: g, limiter: limiter}
}

func (r *rateLimitedGeocoder) Geocode(ctx context.Context, query string) ([]Candidate, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return r.geocoder.Geocode(ctx, query)
}

type rateLimitedSearcher struct {
	searcher PlaceSearcher
	limiter  *rate.Limiter
}

// NewRateLimitedSearcher gates every places call through the limiter. Pass
// the same limiter as the geocoder's to share one provider budget.
func NewRateLimitedSearcher(s PlaceSearcher, limiter *rate.Limiter) PlaceSearcher {
	if limiter == nil {
		return s
	}

	return &rateLimitedSearcher{searcher: s, limiter: limiter}
}

func (r *rateLimitedSearcher) SearchText(ctx context.Context, query string) ([]Candidate, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return r.searcher.SearchText(ctx, query)
}

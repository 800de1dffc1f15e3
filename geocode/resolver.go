// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"
	"log"

	"github.com/jamaicageo/jamlocate/boundary"
	"github.com/jamaicageo/jamlocate/spatial"
)

// DefaultParishes lists the fourteen parishes in pcode order (JM01..JM14).
// Strategy retries append them to the query one at a time.
var DefaultParishes = []string{
	"Kingston",
	"St. Andrew",
	"St. Thomas",
	"Portland",
	"St. Mary",
	"St. Ann",
	"Trelawny",
	"St. James",
	"Hanover",
	"Westmoreland",
	"St. Elizabeth",
	"Manchester",
	"Clarendon",
	"St. Catherine",
}

// acceptedLocationTypes are the result tags that make a geocoding candidate
// trustworthy. Anything tagged only country-wide or unrecognized is dropped.
var acceptedLocationTypes = map[string]bool{
	"street_address":              true,
	"premise":                     true,
	"subpremise":                  true,
	"route":                       true,
	"postal_code":                 true,
	"locality":                    true,
	"sublocality":                 true,
	"sublocality_level_1":         true,
	"sublocality_level_2":         true,
	"sublocality_level_3":         true,
	"sublocality_level_4":         true,
	"sublocality_level_5":         true,
	"neighborhood":                true,
	"administrative_area_level_1": true,
	"administrative_area_level_2": true,
	"point_of_interest":           true,
	"establishment":               true,
	"natural_feature":             true,
}

// Resolution is the combined outcome of a resolution: the winning
// coordinate, its quality tier and the administrative identity it falls in.
type Resolution struct {
	Point         spatial.Point `json:"point"`
	Quality       Quality       `json:"quality"`
	Strategy      Strategy      `json:"strategy"`
	Types         []string      `json:"location_types,omitempty"`
	DisplayName   string        `json:"display_name,omitempty"`
	ParishCode    string        `json:"parish_pcode,omitempty"`
	ParishName    string        `json:"parish_name,omitempty"`
	CommunityCode string        `json:"community_pcode,omitempty"`
	CommunityName string        `json:"community_name,omitempty"`
	// NearestBoundary is true when the point fell outside every boundary
	// polygon and the closest feature was assigned instead.
	NearestBoundary bool `json:"nearest_boundary,omitempty"`
}

// Resolver turns free text location descriptions into coordinates with
// administrative identity. Read-only after construction, safe for
// concurrent use.
type Resolver struct {
	normalizer *Normalizer
	geocoder   Geocoder
	places     PlaceSearcher
	boundaries *boundary.Index
	parishes   []string
}

// NewResolver wires the pipeline. A nil normalizer gets the default
// correction table; the places searcher and the boundary index may be nil,
// in which case the corresponding steps are skipped.
func NewResolver(normalizer *Normalizer, geocoder Geocoder, places PlaceSearcher, boundaries *boundary.Index) *Resolver {
	if normalizer == nil {
		normalizer = NewNormalizer(DefaultCorrections)
	}

	return &Resolver{
		normalizer: normalizer,
		geocoder:   geocoder,
		places:     places,
		boundaries: boundaries,
		parishes:   DefaultParishes,
	}
}

// Resolve runs the strategy ladder for one query:
//
//  1. Coordinate fast path, no remote calls.
//  2. Direct geocode, every returned candidate validated.
//  3. Parish suffix retries when the direct attempt yielded nothing valid,
//     stopping early on a ROOFTOP or RANGE_INTERPOLATED hit.
//  4. Places text search, only when nothing of GEOMETRIC_CENTER grade or
//     better was collected.
//
// Candidates from all strategies accumulate; the best quality tier wins and
// ties go to the earlier strategy. Provider failures are absorbed per
// strategy so later strategies still run. On exhaustion a ResolutionError
// reports whether anything was seen at all, or only out of bounds results.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Resolution, error) {
	if pt, ok := ParseCoordinates(query); ok {
		return r.finish(Candidate{
			Point:    pt,
			Quality:  QualityCoordinates,
			Strategy: StrategyCoordinates,
		}), nil
	}

	normalized := r.normalizer.Normalize(query)
	if normalized == "" {
		return nil, &ResolutionError{Reason: ReasonAmbiguousInput, Query: query}
	}

	var candidates []Candidate

	var sawRaw, sawInBounds bool

	// Strategy A: direct geocode.
	valid, raw, inBounds := r.attempt(ctx, StrategyDirect, normalized)
	candidates = append(candidates, valid...)
	sawRaw = sawRaw || raw > 0
	sawInBounds = sawInBounds || inBounds > 0

	// Strategy B: parish suffix retries, only when A came up empty.
	if len(candidates) == 0 {
		for _, parish := range r.parishes {
			suffixed := fmt.Sprintf("%s, %s, Jamaica", normalized, parish)

			valid, raw, inBounds := r.attempt(ctx, StrategyParish, suffixed)
			candidates = append(candidates, valid...)
			sawRaw = sawRaw || raw > 0
			sawInBounds = sawInBounds || inBounds > 0

			if hasQualityAtLeast(valid, QualityRangeInterpolated) {
				break
			}
		}
	}

	// Strategy C: places text search, the cost-sensitive last resort.
	if r.places != nil && !hasQualityAtLeast(candidates, QualityGeometricCenter) {
		results, err := r.places.SearchText(ctx, normalized)
		if err != nil {
			log.Printf("places search %q: %v", normalized, err)
		}

		for _, c := range results {
			sawRaw = true

			if !InBounds(c.Point) {
				continue
			}

			sawInBounds = true
			c.Strategy = StrategyPlaces
			c.Quality = QualityPlacesAPI
			candidates = append(candidates, c)
		}
	}

	best, ok := bestCandidate(candidates)
	if !ok {
		reason := ReasonNoResult
		if sawRaw && !sawInBounds {
			reason = ReasonOutOfBounds
		}

		return nil, &ResolutionError{Reason: reason, Query: query}
	}

	return r.finish(best), nil
}

// attempt issues one geocoding call and validates every result: bounding
// box first, then the accepted location-type tags. Provider errors are
// logged and swallowed.
func (r *Resolver) attempt(ctx context.Context, strategy Strategy, query string) (valid []Candidate, raw, inBounds int) {
	results, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		log.Printf("geocode %q: %v", query, err)

		return nil, 0, 0
	}

	raw = len(results)

	for _, c := range results {
		if !InBounds(c.Point) {
			continue
		}

		inBounds++

		if !hasAcceptedType(c.Types) {
			continue
		}

		c.Strategy = strategy
		valid = append(valid, c)
	}

	return valid, raw, inBounds
}

func hasAcceptedType(types []string) bool {
	for _, t := range types {
		if acceptedLocationTypes[t] {
			return true
		}
	}

	return false
}

func hasQualityAtLeast(candidates []Candidate, q Quality) bool {
	for _, c := range candidates {
		if c.Quality.AtLeast(q) {
			return true
		}
	}

	return false
}

// bestCandidate reduces the accumulated pool: highest tier wins, ties go to
// the strategy that ran first.
func bestCandidate(candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Quality > best.Quality ||
			(c.Quality == best.Quality && c.Strategy < best.Strategy) {
			best = c
		}
	}

	return best, true
}

// finish attaches the administrative identity to the winning candidate.
func (r *Resolver) finish(c Candidate) *Resolution {
	res := &Resolution{
		Point:       c.Point,
		Quality:     c.Quality,
		Strategy:    c.Strategy,
		Types:       c.Types,
		DisplayName: c.DisplayName,
	}

	if r.boundaries != nil {
		if m := r.boundaries.Locate(c.Point); m != nil {
			res.ParishCode = m.Area.ParishCode
			res.ParishName = m.Area.ParishName
			res.CommunityCode = m.Area.CommunityCode
			res.CommunityName = m.Area.CommunityName
			res.NearestBoundary = m.Nearest
		}
	}

	return res
}

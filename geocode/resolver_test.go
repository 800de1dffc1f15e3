// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jamaicageo/jamlocate/boundary"
	"github.com/jamaicageo/jamlocate/spatial"
)

// fakeGeocoder records every query and answers through respond.
type fakeGeocoder struct {
	calls   int
	queries []string
	respond func(query string) ([]Candidate, error)
}

func (f *fakeGeocoder) Geocode(_ context.Context, query string) ([]Candidate, error) {
	f.calls++
	f.queries = append(f.queries, query)

	if f.respond == nil {
		return nil, nil
	}

	return f.respond(query)
}

type fakePlaces struct {
	calls   int
	results []Candidate
	err     error
}

func (f *fakePlaces) SearchText(_ context.Context, _ string) ([]Candidate, error) {
	f.calls++

	return f.results, f.err
}

func geocoded(lat, lng float64, quality Quality, types ...string) []Candidate {
	return []Candidate{{
		Point:    spatial.Point{Lat: lat, Lng: lng},
		Quality:  quality,
		Types:    types,
		Provider: "google_maps",
	}}
}

func square(parishCode, parishName, commCode, commName string, lat, lng, side float64) *boundary.Area {
	return &boundary.Area{
		ParishCode:    parishCode,
		ParishName:    parishName,
		CommunityCode: commCode,
		CommunityName: commName,
		Polygons: []spatial.Polygon{{Outer: spatial.Ring{
			{Lat: lat, Lng: lng},
			{Lat: lat, Lng: lng + side},
			{Lat: lat + side, Lng: lng + side},
			{Lat: lat + side, Lng: lng},
			{Lat: lat, Lng: lng},
		}}},
	}
}

// testBoundaries covers Maroon Town and the Defence Force camp east of
// Falmouth, the two end-to-end scenarios below.
func testBoundaries(t *testing.T) *boundary.Index {
	t.Helper()

	idx, err := boundary.NewIndex([]*boundary.Area{
		square("JM08", "St. James", "JM08130", "Maroon Town", 18.30, -77.85, 0.1),
		square("JM07", "Trelawny", "JM07060", "Hampden", 18.42, -77.45, 0.1),
	})
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	return idx
}

func TestResolveCoordinateFastPath(t *testing.T) {
	geocoder := &fakeGeocoder{}
	places := &fakePlaces{}

	r := NewResolver(nil, geocoder, places, testBoundaries(t))

	res, err := r.Resolve(context.Background(), "18.3459, -77.7953")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if geocoder.calls != 0 || places.calls != 0 {
		t.Errorf("coordinate input must not reach providers: geocoder=%d places=%d",
			geocoder.calls, places.calls)
	}

	if res.Quality != QualityCoordinates {
		t.Errorf("quality = %v, want COORDINATES", res.Quality)
	}

	if res.CommunityName != "Maroon Town" {
		t.Errorf("community = %q, want Maroon Town", res.CommunityName)
	}
}

func TestResolveMorroon(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(query string) ([]Candidate, error) {
			if query == "Maroon Town" {
				return geocoded(18.3459, -77.7953, QualityApproximate, "locality", "political"), nil
			}

			return nil, nil
		},
	}
	places := &fakePlaces{}

	r := NewResolver(nil, geocoder, places, testBoundaries(t))

	res, err := r.Resolve(context.Background(), "Morroon")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if res.Quality != QualityApproximate {
		t.Errorf("quality = %v, want APPROXIMATE", res.Quality)
	}

	if res.Strategy != StrategyDirect {
		t.Errorf("strategy = %v, want direct", res.Strategy)
	}

	if res.ParishName != "St. James" || res.CommunityName != "Maroon Town" {
		t.Errorf("assigned to %s / %s, want St. James / Maroon Town",
			res.ParishName, res.CommunityName)
	}
}

func TestResolveJDFFallsThroughToPlaces(t *testing.T) {
	geocoder := &fakeGeocoder{} // zero results everywhere
	places := &fakePlaces{
		results: []Candidate{{
			Point:       spatial.Point{Lat: 18.4606, Lng: -77.4011},
			DisplayName: "Jamaica Defence Force Camp",
			Types:       []string{"point_of_interest", "establishment"},
		}},
	}

	r := NewResolver(nil, geocoder, places, testBoundaries(t))

	res, err := r.Resolve(context.Background(), "JDF")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// Direct attempt plus one retry per parish.
	if want := 1 + len(DefaultParishes); geocoder.calls != want {
		t.Errorf("geocoder calls = %d, want %d", geocoder.calls, want)
	}

	if places.calls != 1 {
		t.Errorf("places calls = %d, want 1", places.calls)
	}

	if geocoder.queries[0] != "Jamaica Defence Force Camp" {
		t.Errorf("normalized query = %q, want Jamaica Defence Force Camp", geocoder.queries[0])
	}

	if res.Quality != QualityPlacesAPI || res.Strategy != StrategyPlaces {
		t.Errorf("got %v via %v, want PLACES_API via places", res.Quality, res.Strategy)
	}

	if res.ParishName != "Trelawny" {
		t.Errorf("parish = %q, want Trelawny", res.ParishName)
	}
}

func TestResolveParishSuffixFormat(t *testing.T) {
	geocoder := &fakeGeocoder{}

	r := NewResolver(nil, geocoder, nil, nil)

	_, err := r.Resolve(context.Background(), "Chelsea Avenue")
	if err == nil {
		t.Fatal("expected failure with no provider results")
	}

	if len(geocoder.queries) < 2 {
		t.Fatalf("expected parish retries, got %d queries", len(geocoder.queries))
	}

	if got := geocoder.queries[1]; got != "Chelsea Avenue, Kingston, Jamaica" {
		t.Errorf("first parish retry = %q", got)
	}

	if got := geocoder.queries[len(geocoder.queries)-1]; got != "Chelsea Avenue, St. Catherine, Jamaica" {
		t.Errorf("last parish retry = %q", got)
	}
}

func TestResolveParishRetryStopsEarly(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(query string) ([]Candidate, error) {
			if strings.Contains(query, "St. Andrew") {
				return geocoded(18.0286, -76.7971, QualityRooftop, "street_address"), nil
			}

			return nil, nil
		},
	}

	r := NewResolver(nil, geocoder, nil, nil)

	res, err := r.Resolve(context.Background(), "7 Hillcrest Avenue")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// Direct, Kingston, St. Andrew, then stop.
	if geocoder.calls != 3 {
		t.Errorf("geocoder calls = %d, want 3", geocoder.calls)
	}

	if res.Quality != QualityRooftop || res.Strategy != StrategyParish {
		t.Errorf("got %v via %v, want ROOFTOP via parish", res.Quality, res.Strategy)
	}
}

func TestResolvePlacesNotCalledAfterGoodTier(t *testing.T) {
	for _, quality := range []Quality{QualityRooftop, QualityRangeInterpolated, QualityGeometricCenter} {
		t.Run(quality.String(), func(t *testing.T) {
			geocoder := &fakeGeocoder{
				respond: func(string) ([]Candidate, error) {
					return geocoded(18.01, -76.80, quality, "locality"), nil
				},
			}
			places := &fakePlaces{
				results: geocoded(18.02, -76.81, QualityPlacesAPI, "establishment"),
			}

			r := NewResolver(nil, geocoder, places, nil)

			res, err := r.Resolve(context.Background(), "Half Way Tree")
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}

			if places.calls != 0 {
				t.Errorf("places called %d times after a %v result", places.calls, quality)
			}

			if res.Quality != quality {
				t.Errorf("quality = %v, want %v", res.Quality, quality)
			}
		})
	}
}

func TestResolvePlacesRunsAfterApproximate(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(string) ([]Candidate, error) {
			return geocoded(18.01, -76.80, QualityApproximate, "locality"), nil
		},
	}
	places := &fakePlaces{
		results: geocoded(18.02, -76.81, QualityPlacesAPI, "establishment"),
	}

	r := NewResolver(nil, geocoder, places, nil)

	res, err := r.Resolve(context.Background(), "Gordon Town")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if places.calls != 1 {
		t.Errorf("places calls = %d, want 1", places.calls)
	}

	// The earlier, better tier still wins the pool.
	if res.Quality != QualityApproximate || res.Strategy != StrategyDirect {
		t.Errorf("got %v via %v, want APPROXIMATE via direct", res.Quality, res.Strategy)
	}
}

func TestResolveNoResult(t *testing.T) {
	r := NewResolver(nil, &fakeGeocoder{}, &fakePlaces{}, nil)

	_, err := r.Resolve(context.Background(), "Leninput")
	if err == nil {
		t.Fatal("expected failure")
	}

	reason, ok := ReasonOf(err)
	if !ok || reason != ReasonNoResult {
		t.Errorf("reason = %v (%v), want no_result", reason, ok)
	}
}

func TestResolveOutOfBounds(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(string) ([]Candidate, error) {
			// Havana: a confident hit, wrong island.
			return geocoded(23.1136, -82.3666, QualityApproximate, "locality"), nil
		},
	}

	r := NewResolver(nil, geocoder, nil, nil)

	_, err := r.Resolve(context.Background(), "Santa Fe")
	if err == nil {
		t.Fatal("expected failure")
	}

	if reason, _ := ReasonOf(err); reason != ReasonOutOfBounds {
		t.Errorf("reason = %v, want out_of_bounds", reason)
	}
}

func TestResolveTypeRejectedIsNoResult(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(string) ([]Candidate, error) {
			// In the box but tagged only at country level.
			return geocoded(18.1, -77.3, QualityApproximate, "country", "political"), nil
		},
	}

	r := NewResolver(nil, geocoder, nil, nil)

	_, err := r.Resolve(context.Background(), "Jamaica")
	if err == nil {
		t.Fatal("expected failure")
	}

	if reason, _ := ReasonOf(err); reason != ReasonNoResult {
		t.Errorf("reason = %v, want no_result", reason)
	}
}

func TestResolveAmbiguousInput(t *testing.T) {
	geocoder := &fakeGeocoder{}

	r := NewResolver(nil, geocoder, nil, nil)

	for _, query := range []string{"", "   ", "\t"} {
		_, err := r.Resolve(context.Background(), query)
		if err == nil {
			t.Fatalf("expected failure for %q", query)
		}

		if reason, _ := ReasonOf(err); reason != ReasonAmbiguousInput {
			t.Errorf("reason for %q = %v, want ambiguous_input", query, reason)
		}
	}

	if geocoder.calls != 0 {
		t.Errorf("blank input must not reach the provider, got %d calls", geocoder.calls)
	}
}

func TestResolveProviderErrorAbsorbed(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(query string) ([]Candidate, error) {
			if !strings.Contains(query, "Portland") {
				return nil, &ProviderError{Type: ErrorTypeTimeout, Message: "deadline exceeded"}
			}

			return geocoded(18.18, -76.45, QualityGeometricCenter, "locality"), nil
		},
	}

	r := NewResolver(nil, geocoder, nil, nil)

	res, err := r.Resolve(context.Background(), "Fairy Hill")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if res.Quality != QualityGeometricCenter || res.Strategy != StrategyParish {
		t.Errorf("got %v via %v, want GEOMETRIC_CENTER via parish", res.Quality, res.Strategy)
	}
}

func TestResolveSameTierKeepsFirst(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(string) ([]Candidate, error) {
			return []Candidate{
				{Point: spatial.Point{Lat: 18.10, Lng: -77.30}, Quality: QualityApproximate, Types: []string{"locality"}},
				{Point: spatial.Point{Lat: 18.20, Lng: -77.40}, Quality: QualityApproximate, Types: []string{"locality"}},
			}, nil
		},
	}

	r := NewResolver(nil, geocoder, nil, nil)

	res, err := r.Resolve(context.Background(), "Bamboo")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if res.Point.Lat != 18.10 {
		t.Errorf("expected the provider's first result to win the tie, got %v", res.Point)
	}
}

func TestResolveIdempotent(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(query string) ([]Candidate, error) {
			if query == "Maroon Town" {
				return geocoded(18.3459, -77.7953, QualityApproximate, "locality"), nil
			}

			return nil, nil
		},
	}

	r := NewResolver(nil, geocoder, &fakePlaces{}, testBoundaries(t))

	first, err := r.Resolve(context.Background(), "Morroon")
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	second, err := r.Resolve(context.Background(), "Morroon")
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("resolution not idempotent (-first +second):\n%s", diff)
	}
}

func TestResolveNearestBoundary(t *testing.T) {
	geocoder := &fakeGeocoder{
		respond: func(string) ([]Candidate, error) {
			// In the box but outside both test polygons.
			return geocoded(18.70, -77.60, QualityGeometricCenter, "natural_feature"), nil
		},
	}

	r := NewResolver(nil, geocoder, nil, testBoundaries(t))

	res, err := r.Resolve(context.Background(), "North Coast reef")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !res.NearestBoundary {
		t.Error("expected NearestBoundary for a point outside every polygon")
	}

	if res.ParishName == "" {
		t.Error("nearest fallback must still assign a parish")
	}
}

func TestBestCandidateTieAcrossStrategies(t *testing.T) {
	a := Candidate{Point: spatial.Point{Lat: 18.1, Lng: -77.1}, Quality: QualityApproximate, Strategy: StrategyDirect}
	b := Candidate{Point: spatial.Point{Lat: 18.2, Lng: -77.2}, Quality: QualityApproximate, Strategy: StrategyParish}

	best, ok := bestCandidate([]Candidate{b, a})
	if !ok {
		t.Fatal("expected a candidate")
	}

	if best.Strategy != StrategyDirect {
		t.Errorf("tie must go to the earlier strategy, got %v", best.Strategy)
	}
}

func TestResolveUnwrapsToResolutionError(t *testing.T) {
	r := NewResolver(nil, &fakeGeocoder{}, nil, nil)

	_, err := r.Resolve(context.Background(), "Leninput")

	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("error %v is not a ResolutionError", err)
	}

	if resErr.Query != "Leninput" {
		t.Errorf("query = %q, want Leninput", resErr.Query)
	}
}

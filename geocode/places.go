// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jamaicageo/jamlocate/spatial"
)

const placesBaseURL = "https://maps.googleapis.com/maps/api/place/textsearch/json"

// GooglePlacesSearcher uses the Google Places text search API. Places results
// carry no location_type, so every candidate gets the PLACES_API tier.
type GooglePlacesSearcher struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGooglePlacesSearcher creates a searcher with the default HTTP client.
func NewGooglePlacesSearcher(apiKey string) *GooglePlacesSearcher {
	return NewGooglePlacesSearcherWithClient(apiKey, NewHTTPClient(nil))
}

// NewGooglePlacesSearcherWithClient uses a caller provided HTTP client.
func NewGooglePlacesSearcherWithClient(apiKey string, client *http.Client) *GooglePlacesSearcher {
	return &GooglePlacesSearcher{
		apiKey:     apiKey,
		baseURL:    placesBaseURL,
		httpClient: client,
	}
}

type placesResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Types            []string `json:"types"`
	} `json:"results"`
	Status string `json:"status"`
}

// SearchText runs a free text place search scoped to Jamaica.
func (s *GooglePlacesSearcher) SearchText(ctx context.Context, query string) ([]Candidate, error) {
	searchQuery := strings.TrimSpace(query)
	if !strings.Contains(strings.ToLower(searchQuery), "jamaica") {
		searchQuery += ", Jamaica"
	}

	params := url.Values{}
	params.Set("query", searchQuery)
	params.Set("key", s.apiKey)
	params.Set("region", "jm")

	reqURL := s.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building places request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google places: %w", ClassifyHTTPError(resp.StatusCode, ""))
	}

	var pResp placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&pResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if pResp.Status == "ZERO_RESULTS" {
		return nil, nil
	}

	if pResp.Status != "OK" {
		return nil, fmt.Errorf("google places: %w", ClassifyAPIStatus(pResp.Status))
	}

	candidates := make([]Candidate, 0, len(pResp.Results))

	for _, result := range pResp.Results {
		name := result.Name
		if name == "" {
			name = result.FormattedAddress
		}

		candidates = append(candidates, Candidate{
			Point: spatial.Point{
				Lat: result.Geometry.Location.Lat,
				Lng: result.Geometry.Location.Lng,
			},
			Quality:     QualityPlacesAPI,
			Types:       result.Types,
			DisplayName: name,
			Provider:    "google_places",
		})
	}

	return candidates, nil
}

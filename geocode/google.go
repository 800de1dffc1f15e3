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

const geocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleMapsGeocoder uses the Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a geocoder with the default HTTP client.
func NewGoogleMapsGeocoder(apiKey string) *GoogleMapsGeocoder {
	return NewGoogleMapsGeocoderWithClient(apiKey, NewHTTPClient(nil))
}

// NewGoogleMapsGeocoderWithClient uses a caller provided HTTP client, so
// tracing or header transports can be layered in.
func NewGoogleMapsGeocoderWithClient(apiKey string, client *http.Client) *GoogleMapsGeocoder {
	return &GoogleMapsGeocoder{
		apiKey:     apiKey,
		baseURL:    geocodeBaseURL,
		httpClient: client,
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		AddressComponents []struct {
			ShortName string   `json:"short_name"`
			Types     []string `json:"types"`
		} `json:"address_components"`
		Types            []string `json:"types"`
		FormattedAddress string   `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, etc.
}

// Geocode resolves a query against the Geocoding API. The query is biased
// and restricted to Jamaica; results whose address components place them in
// another country are dropped. Every remaining result becomes a candidate.
func (g *GoogleMapsGeocoder) Geocode(ctx context.Context, query string) ([]Candidate, error) {
	searchQuery := strings.TrimSpace(query)
	if !strings.Contains(strings.ToLower(searchQuery), "jamaica") {
		searchQuery += ", Jamaica"
	}

	params := url.Values{}
	params.Set("address", searchQuery)
	params.Set("key", g.apiKey)
	params.Set("region", "jm")
	params.Set("components", "country:JM")

	gmResp, err := g.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	if gmResp.Status == "ZERO_RESULTS" {
		return nil, nil
	}

	if gmResp.Status != "OK" {
		return nil, fmt.Errorf("google maps geocode: %w", ClassifyAPIStatus(gmResp.Status))
	}

	candidates := make([]Candidate, 0, len(gmResp.Results))

	for _, result := range gmResp.Results {
		inJamaica := false

		for _, comp := range result.AddressComponents {
			for _, t := range comp.Types {
				if t == "country" {
					inJamaica = comp.ShortName == "JM"
				}
			}
		}

		if !inJamaica {
			continue
		}

		candidates = append(candidates, Candidate{
			Point: spatial.Point{
				Lat: result.Geometry.Location.Lat,
				Lng: result.Geometry.Location.Lng,
			},
			Quality:     ParseQuality(result.Geometry.LocationType),
			Types:       result.Types,
			DisplayName: result.FormattedAddress,
			Provider:    "google_maps",
		})
	}

	return candidates, nil
}

func (g *GoogleMapsGeocoder) fetch(ctx context.Context, params url.Values) (*googleMapsResponse, error) {
	reqURL := g.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google maps: %w", ClassifyHTTPError(resp.StatusCode, ""))
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &gmResp, nil
}

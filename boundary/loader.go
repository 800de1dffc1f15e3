// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package boundary

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jamaicageo/jamlocate/spatial"
)

// LoadDataset reads a GeoJSON FeatureCollection of community boundaries,
// in the OCHA common operational dataset shape (ADM1/ADM2 pcodes and
// names), and builds the lookup index.
func LoadDataset(filepath string) (*Index, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("reading boundary file: %w", err)
	}

	var geoJSON struct {
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties struct {
				ParishCode    string `json:"ADM1_PCODE"`
				ParishName    string `json:"ADM1_EN"`
				CommunityCode string `json:"ADM2_PCODE"`
				CommunityName string `json:"ADM2_EN"`
			} `json:"properties"`
		} `json:"features"`
	}

	if err := json.Unmarshal(data, &geoJSON); err != nil {
		return nil, fmt.Errorf("parsing boundary JSON: %w", err)
	}

	areas := make([]*Area, 0, len(geoJSON.Features))

	for i, feature := range geoJSON.Features {
		polygons, err := parseGeometry(feature.Geometry.Type, feature.Geometry.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("feature %d (%s): %w", i, feature.Properties.CommunityName, err)
		}

		if len(polygons) == 0 {
			continue
		}

		areas = append(areas, &Area{
			ParishCode:    feature.Properties.ParishCode,
			ParishName:    feature.Properties.ParishName,
			CommunityCode: feature.Properties.CommunityCode,
			CommunityName: feature.Properties.CommunityName,
			Polygons:      polygons,
		})
	}

	return NewIndex(areas)
}

func parseGeometry(geomType string, coords json.RawMessage) ([]spatial.Polygon, error) {
	switch geomType {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(coords, &rings); err != nil {
			return nil, fmt.Errorf("parsing polygon coordinates: %w", err)
		}

		pg, ok := buildPolygon(rings)
		if !ok {
			return nil, nil
		}

		return []spatial.Polygon{pg}, nil

	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(coords, &polys); err != nil {
			return nil, fmt.Errorf("parsing multipolygon coordinates: %w", err)
		}

		out := make([]spatial.Polygon, 0, len(polys))

		for _, rings := range polys {
			if pg, ok := buildPolygon(rings); ok {
				out = append(out, pg)
			}
		}

		return out, nil

	default:
		return nil, fmt.Errorf("unsupported geometry type %q", geomType)
	}
}

func buildPolygon(rings [][][]float64) (spatial.Polygon, bool) {
	if len(rings) == 0 || len(rings[0]) < 3 {
		return spatial.Polygon{}, false
	}

	pg := spatial.Polygon{Outer: buildRing(rings[0])}

	for _, raw := range rings[1:] {
		if len(raw) >= 3 {
			pg.Holes = append(pg.Holes, buildRing(raw))
		}
	}

	return pg, true
}

// buildRing converts GeoJSON positions, which are ordered longitude first.
func buildRing(coords [][]float64) spatial.Ring {
	ring := make(spatial.Ring, 0, len(coords))

	for _, c := range coords {
		if len(c) < 2 {
			continue
		}

		ring = append(ring, spatial.Point{Lng: c[0], Lat: c[1]})
	}

	return ring
}

// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package boundary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamaicageo/jamlocate/spatial"
)

const sampleGeoJSON = `{
	"type": "FeatureCollection",
	"name": "jam_admbnda_adm2_sample",
	"features": [
		{
			"type": "Feature",
			"properties": {"ADM1_PCODE": "JM08", "ADM1_EN": "St. James", "ADM2_PCODE": "JM08010", "ADM2_EN": "Anchovy"},
			"geometry": {"type": "Polygon", "coordinates": [[[-77.95, 18.38], [-77.90, 18.38], [-77.90, 18.43], [-77.95, 18.43], [-77.95, 18.38]]]}
		},
		{
			"type": "Feature",
			"properties": {"ADM1_PCODE": "JM08", "ADM1_EN": "St. James", "ADM2_PCODE": "JM08020", "ADM2_EN": "Salt Spring"},
			"geometry": {"type": "MultiPolygon", "coordinates": [
				[[[-77.99, 18.44], [-77.96, 18.44], [-77.96, 18.47], [-77.99, 18.47], [-77.99, 18.44]]],
				[[[-77.94, 18.45], [-77.91, 18.45], [-77.91, 18.48], [-77.94, 18.48], [-77.94, 18.45]]]
			]}
		},
		{
			"type": "Feature",
			"properties": {"ADM1_PCODE": "JM07", "ADM1_EN": "Trelawny", "ADM2_PCODE": "JM07010", "ADM2_EN": "Falmouth"},
			"geometry": {"type": "Polygon", "coordinates": [[[-77.67, 18.46], [-77.62, 18.46], [-77.62, 18.50], [-77.67, 18.50], [-77.67, 18.46]]]}
		}
	]
}`

func writeDataset(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "boundaries.geojson")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}

	return path
}

func TestLoadDataset(t *testing.T) {
	idx, err := LoadDataset(writeDataset(t, sampleGeoJSON))
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	s := idx.Stats()
	if s.Features != 3 || s.Parishes != 2 || s.Communities != 3 {
		t.Fatalf("stats = %+v, want 3 features, 2 parishes, 3 communities", s)
	}

	tests := []struct {
		name          string
		pt            spatial.Point
		wantCommunity string
		wantParish    string
	}{
		{
			name:          "Inside Anchovy",
			pt:            spatial.Point{Lat: 18.40, Lng: -77.93},
			wantCommunity: "Anchovy",
			wantParish:    "St. James",
		},
		{
			name:          "Second polygon of Salt Spring",
			pt:            spatial.Point{Lat: 18.465, Lng: -77.925},
			wantCommunity: "Salt Spring",
			wantParish:    "St. James",
		},
		{
			name:          "Inside Falmouth",
			pt:            spatial.Point{Lat: 18.48, Lng: -77.65},
			wantCommunity: "Falmouth",
			wantParish:    "Trelawny",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := idx.Locate(tt.pt)
			if m == nil || m.Nearest {
				t.Fatalf("expected containment, got %+v", m)
			}

			if m.Area.CommunityName != tt.wantCommunity {
				t.Errorf("community = %q, want %q", m.Area.CommunityName, tt.wantCommunity)
			}

			if m.Area.ParishName != tt.wantParish {
				t.Errorf("parish = %q, want %q", m.Area.ParishName, tt.wantParish)
			}
		})
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	if _, err := LoadDataset(filepath.Join(t.TempDir(), "nope.geojson")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadDatasetBadJSON(t *testing.T) {
	if _, err := LoadDataset(writeDataset(t, "{not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadDatasetUnsupportedGeometry(t *testing.T) {
	const content = `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"ADM1_PCODE": "JM01", "ADM1_EN": "Kingston", "ADM2_PCODE": "JM01010", "ADM2_EN": "Downtown"},
				"geometry": {"type": "Point", "coordinates": [-76.79, 17.97]}
			}
		]
	}`

	if _, err := LoadDataset(writeDataset(t, content)); err == nil {
		t.Fatal("expected error for unsupported geometry type")
	}
}

func TestLoadDatasetSkipsDegenerateRings(t *testing.T) {
	const content = `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"properties": {"ADM1_PCODE": "JM01", "ADM1_EN": "Kingston", "ADM2_PCODE": "JM01010", "ADM2_EN": "Downtown"},
				"geometry": {"type": "Polygon", "coordinates": [[[-76.79, 17.97], [-76.78, 17.97]]]}
			},
			{
				"type": "Feature",
				"properties": {"ADM1_PCODE": "JM01", "ADM1_EN": "Kingston", "ADM2_PCODE": "JM01020", "ADM2_EN": "Port Royal"},
				"geometry": {"type": "Polygon", "coordinates": [[[-76.85, 17.93], [-76.83, 17.93], [-76.83, 17.95], [-76.85, 17.95], [-76.85, 17.93]]]}
			}
		]
	}`

	idx, err := LoadDataset(writeDataset(t, content))
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	if got := idx.Stats().Features; got != 1 {
		t.Errorf("features = %d, want 1 (degenerate ring skipped)", got)
	}
}

// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
	"testing"
)

func squareRing(minLat, minLng, maxLat, maxLng float64) Ring {
	return Ring{
		{Lat: minLat, Lng: minLng},
		{Lat: minLat, Lng: maxLng},
		{Lat: maxLat, Lng: maxLng},
		{Lat: maxLat, Lng: minLng},
		{Lat: minLat, Lng: minLng},
	}
}

func TestRingContains(t *testing.T) {
	ring := squareRing(18.0, -77.1, 18.1, -77.0)

	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{name: "center", pt: Point{Lat: 18.05, Lng: -77.05}, want: true},
		{name: "near corner inside", pt: Point{Lat: 18.001, Lng: -77.099}, want: true},
		{name: "north of ring", pt: Point{Lat: 18.2, Lng: -77.05}, want: false},
		{name: "east of ring", pt: Point{Lat: 18.05, Lng: -76.5}, want: false},
		{name: "far away", pt: Point{Lat: 40.0, Lng: -3.0}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ring.Contains(tt.pt); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}

func TestRingContainsUnclosed(t *testing.T) {
	// Same square without the repeated closing vertex.
	ring := squareRing(18.0, -77.1, 18.1, -77.0)[:4]

	if !ring.Contains(Point{Lat: 18.05, Lng: -77.05}) {
		t.Error("unclosed ring should contain its center")
	}
	if ring.Contains(Point{Lat: 18.5, Lng: -77.05}) {
		t.Error("unclosed ring should not contain an outside point")
	}
}

func TestRingAreaM2(t *testing.T) {
	// 0.1 x 0.1 degree square at latitude 18: roughly 118 km2.
	ring := squareRing(18.0, -77.1, 18.1, -77.0)

	want := 0.01 * metersPerDegreeLat * metersPerDegreeLat * math.Cos(18.0*math.Pi/180)
	got := ring.AreaM2()
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("AreaM2() = %.0f, want about %.0f", got, want)
	}

	if got := (Ring{{Lat: 18, Lng: -77}, {Lat: 18.1, Lng: -77}}).AreaM2(); got != 0 {
		t.Errorf("degenerate ring area = %f, want 0", got)
	}
}

func TestRingDistance(t *testing.T) {
	ring := squareRing(18.0, -77.1, 18.1, -77.0)

	// 0.1 degree east of the eastern edge.
	pt := Point{Lat: 18.05, Lng: -76.9}
	want := 0.1 * metersPerDegreeLat * math.Cos(pt.Lat*math.Pi/180)
	got := ring.Distance(pt)
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("Distance(%v) = %.0f, want about %.0f", pt, got, want)
	}

	// A vertex is the closest boundary point for diagonal offsets.
	corner := Point{Lat: 18.15, Lng: -76.95}
	cornerVertex := Point{Lat: 18.1, Lng: -77.0}
	wantCorner := corner.HaversineDistance(&cornerVertex)
	gotCorner := ring.Distance(corner)
	if math.Abs(gotCorner-wantCorner)/wantCorner > 0.02 {
		t.Errorf("Distance(%v) = %.0f, want about %.0f", corner, gotCorner, wantCorner)
	}
}

func TestPolygonContainsWithHole(t *testing.T) {
	pg := Polygon{
		Outer: squareRing(18.0, -77.1, 18.1, -77.0),
		Holes: []Ring{squareRing(18.04, -77.06, 18.06, -77.04)},
	}

	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{name: "inside outer", pt: Point{Lat: 18.02, Lng: -77.02}, want: true},
		{name: "inside hole", pt: Point{Lat: 18.05, Lng: -77.05}, want: false},
		{name: "outside outer", pt: Point{Lat: 18.5, Lng: -77.05}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pg.Contains(tt.pt); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}

func TestPolygonDistance(t *testing.T) {
	pg := Polygon{Outer: squareRing(18.0, -77.1, 18.1, -77.0)}

	if got := pg.Distance(Point{Lat: 18.05, Lng: -77.05}); got != 0 {
		t.Errorf("interior distance = %f, want 0", got)
	}
	if got := pg.Distance(Point{Lat: 18.05, Lng: -76.9}); got <= 0 {
		t.Errorf("exterior distance = %f, want > 0", got)
	}
}

func TestPolygonAreaSubtractsHoles(t *testing.T) {
	outer := squareRing(18.0, -77.1, 18.1, -77.0)
	hole := squareRing(18.04, -77.06, 18.06, -77.04)

	pg := Polygon{Outer: outer, Holes: []Ring{hole}}
	want := outer.AreaM2() - hole.AreaM2()
	if got := pg.AreaM2(); math.Abs(got-want) > 1 {
		t.Errorf("AreaM2() = %f, want %f", got, want)
	}
}

func TestBBox(t *testing.T) {
	b := squareRing(17.0, -78.0, 18.0, -77.0).BBox()
	if b.MinLat != 17.0 || b.MaxLat != 18.0 || b.MinLng != -78.0 || b.MaxLng != -77.0 {
		t.Errorf("BBox() = %+v", b)
	}

	if !b.Contains(Point{Lat: 17.5, Lng: -77.5}) {
		t.Error("box should contain interior point")
	}
	if b.Contains(Point{Lat: 18.5, Lng: -77.5}) {
		t.Error("box should not contain point above it")
	}

	u := b.Union(BBox{MinLat: 17.5, MinLng: -77.5, MaxLat: 18.5, MaxLng: -76.5})
	want := BBox{MinLat: 17.0, MinLng: -78.0, MaxLat: 18.5, MaxLng: -76.5}
	if u != want {
		t.Errorf("Union() = %+v, want %+v", u, want)
	}
}

func TestPointScan(t *testing.T) {
	tests := []struct {
		name       string
		value      interface{}
		wantLat    float64
		wantLng    float64
		shouldFail bool
	}{
		{
			name:    "duckdb text form",
			value:   []byte("POINT (-77.5678 18.1234)"),
			wantLat: 18.1234,
			wantLng: -77.5678,
		},
		{
			name:    "duckdb struct form",
			value:   map[string]interface{}{"x": -77.0, "y": 18.0},
			wantLat: 18.0,
			wantLng: -77.0,
		},
		{
			name:    "nil resets",
			value:   nil,
			wantLat: 0,
			wantLng: 0,
		},
		{
			name:       "unsupported type",
			value:      42,
			shouldFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Point
			err := p.Scan(tt.value)
			if tt.shouldFail {
				if err == nil {
					t.Fatal("expected error, got nil")
				}

				return
			}
			if err != nil {
				t.Fatalf("Scan() error: %v", err)
			}
			if p.Lat != tt.wantLat || p.Lng != tt.wantLng {
				t.Errorf("Scan() = %+v, want lat=%f lng=%f", p, tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestHaversineDistance(t *testing.T) {
	// Kingston to Montego Bay, about 113 km.
	kingston := Point{Lat: 17.9712, Lng: -76.7928}
	montegoBay := Point{Lat: 18.4762, Lng: -77.8939}

	got := kingston.HaversineDistance(&montegoBay)
	if got < 100e3 || got > 130e3 {
		t.Errorf("HaversineDistance() = %.0f m, want about 113 km", got)
	}

	if d := kingston.HaversineDistance(&kingston); d != 0 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}

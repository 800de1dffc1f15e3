// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"math"
)

const metersPerDegreeLat = 111320.0

// Ring is a closed sequence of vertices. The closing vertex may be repeated
// or omitted; both forms are accepted.
type Ring []Point

// Polygon is an outer ring with optional interior holes.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// BBox is an axis-aligned bounding box in degrees.
type BBox struct {
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// Contains reports whether the point lies within the box, borders included.
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Union returns the smallest box covering both b and o.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		MinLat: math.Min(b.MinLat, o.MinLat),
		MinLng: math.Min(b.MinLng, o.MinLng),
		MaxLat: math.Max(b.MaxLat, o.MaxLat),
		MaxLng: math.Max(b.MaxLng, o.MaxLng),
	}
}

// BBox returns the bounding box of the ring.
func (r Ring) BBox() BBox {
	if len(r) == 0 {
		return BBox{}
	}

	b := BBox{MinLat: r[0].Lat, MinLng: r[0].Lng, MaxLat: r[0].Lat, MaxLng: r[0].Lng}
	for _, p := range r[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lng < b.MinLng {
			b.MinLng = p.Lng
		}
		if p.Lng > b.MaxLng {
			b.MaxLng = p.Lng
		}
	}

	return b
}

// Contains reports whether the point is inside the ring, using the even-odd
// ray casting rule. Points exactly on an edge may fall on either side.
func (r Ring) Contains(p Point) bool {
	n := len(r)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := r[i].Lng, r[i].Lat
		xj, yj := r[j].Lng, r[j].Lat
		if ((yi > p.Lat) != (yj > p.Lat)) &&
			p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi+1e-12)+xi {
			inside = !inside
		}
	}

	return inside
}

// AreaM2 returns the approximate ring area in square meters, computed with
// the shoelace formula on an equirectangular projection. Good enough for
// comparing administrative areas at island scale.
func (r Ring) AreaM2() float64 {
	if len(r) < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		sum += (r[j].Lng - r[i].Lng) * (r[j].Lat + r[i].Lat)
	}

	latRad := r[0].Lat * math.Pi / 180
	metersPerDegreeLng := metersPerDegreeLat * math.Cos(latRad)

	return math.Abs(sum) * metersPerDegreeLat * metersPerDegreeLng / 2
}

// Distance returns the distance in meters from p to the closest point on the
// ring boundary.
func (r Ring) Distance(p Point) float64 {
	n := len(r)
	if n == 0 {
		return math.Inf(1)
	}
	if n == 1 {
		return p.HaversineDistance(&r[0])
	}

	best := math.Inf(1)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		if d := segmentDistance(p, r[j], r[i]); d < best {
			best = d
		}
	}

	return best
}

// segmentDistance returns the distance in meters from p to the segment ab,
// measured on a planar projection centered at p.
func segmentDistance(p, a, b Point) float64 {
	mLng := metersPerDegreeLat * math.Cos(p.Lat*math.Pi/180)

	ax := (a.Lng - p.Lng) * mLng
	ay := (a.Lat - p.Lat) * metersPerDegreeLat
	bx := (b.Lng - p.Lng) * mLng
	by := (b.Lat - p.Lat) * metersPerDegreeLat

	dx, dy := bx-ax, by-ay
	if dx == 0 && dy == 0 {
		return math.Hypot(ax, ay)
	}

	t := -(ax*dx + ay*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	return math.Hypot(ax+t*dx, ay+t*dy)
}

// Contains reports whether the point is inside the outer ring and outside
// every hole.
func (pg Polygon) Contains(p Point) bool {
	if !pg.Outer.Contains(p) {
		return false
	}
	for _, hole := range pg.Holes {
		if hole.Contains(p) {
			return false
		}
	}

	return true
}

// BBox returns the bounding box of the outer ring.
func (pg Polygon) BBox() BBox {
	return pg.Outer.BBox()
}

// AreaM2 returns the polygon area in square meters, holes subtracted.
func (pg Polygon) AreaM2() float64 {
	area := pg.Outer.AreaM2()
	for _, hole := range pg.Holes {
		area -= hole.AreaM2()
	}

	return area
}

// Distance returns the distance in meters from p to the polygon boundary.
// Interior points have distance zero.
func (pg Polygon) Distance(p Point) float64 {
	if pg.Contains(p) {
		return 0
	}

	best := pg.Outer.Distance(p)
	for _, hole := range pg.Holes {
		if d := hole.Distance(p); d < best {
			best = d
		}
	}

	return best
}

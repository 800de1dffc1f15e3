// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

// Package boundary loads the Jamaica administrative boundary dataset and
// answers which parish and community a coordinate falls in.
package boundary

import (
	"fmt"
	"math"

	"github.com/uber/h3-go/v4"

	"github.com/jamaicageo/jamlocate/spatial"
)

const (
	// bucketResolution is the H3 resolution of the lookup buckets. Res 5
	// cells are about 250 km2, a good fit for community sized features.
	bucketResolution = 5

	// latticeStep is the sampling step, in degrees, used to sweep a feature's
	// bounding box when bucketing it. Roughly 5.5 km, well under the res 5
	// cell incircle, so together with the neighbor ring no touching cell is
	// missed.
	latticeStep = 0.05
)

// Area is one administrative feature: a community (ADM2) within a parish
// (ADM1), with one or more polygons.
type Area struct {
	ParishCode    string            `json:"parish_pcode"`
	ParishName    string            `json:"parish_name"`
	CommunityCode string            `json:"community_pcode"`
	CommunityName string            `json:"community_name"`
	Polygons      []spatial.Polygon `json:"-"`

	bbox   spatial.BBox
	areaM2 float64
}

// finalize caches the bounding box and total area.
func (a *Area) finalize() {
	if len(a.Polygons) == 0 {
		return
	}

	a.bbox = a.Polygons[0].BBox()
	a.areaM2 = 0

	for i, pg := range a.Polygons {
		if i > 0 {
			a.bbox = a.bbox.Union(pg.BBox())
		}

		a.areaM2 += pg.AreaM2()
	}
}

// Contains reports whether the point falls inside any of the area's polygons.
func (a *Area) Contains(pt spatial.Point) bool {
	if !a.bbox.Contains(pt) {
		return false
	}

	for _, pg := range a.Polygons {
		if pg.Contains(pt) {
			return true
		}
	}

	return false
}

// Distance returns the distance in meters from the point to the nearest
// polygon boundary, zero for contained points.
func (a *Area) Distance(pt spatial.Point) float64 {
	best := math.Inf(1)
	for _, pg := range a.Polygons {
		if d := pg.Distance(pt); d < best {
			best = d
		}
	}

	return best
}

// AreaM2 returns the total polygon area in square meters.
func (a *Area) AreaM2() float64 {
	return a.areaM2
}

// Match is the result of locating a point.
type Match struct {
	Area *Area
	// Nearest is true when the point was outside every feature and the
	// closest one was picked instead.
	Nearest bool
	// Distance is the distance in meters to the matched boundary when
	// Nearest is set, zero otherwise.
	Distance float64
}

// Index answers point-to-area lookups. Read-only after construction, safe
// for concurrent use.
type Index struct {
	areas   []*Area
	buckets map[h3.Cell][]*Area
}

// NewIndex builds the lookup structures over the given areas.
func NewIndex(areas []*Area) (*Index, error) {
	idx := &Index{
		areas:   areas,
		buckets: make(map[h3.Cell][]*Area),
	}

	for _, a := range areas {
		a.finalize()

		if err := idx.bucket(a); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// bucket registers the area under every H3 cell its bounding box can touch:
// lattice points swept across the box, each expanded to its neighbor ring.
func (x *Index) bucket(a *Area) error {
	expanded := make(map[h3.Cell]bool)
	member := make(map[h3.Cell]bool)

	for lat := a.bbox.MinLat - latticeStep; lat <= a.bbox.MaxLat+latticeStep; lat += latticeStep {
		for lng := a.bbox.MinLng - latticeStep; lng <= a.bbox.MaxLng+latticeStep; lng += latticeStep {
			cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), bucketResolution)
			if err != nil {
				return fmt.Errorf("bucketing %s: %w", a.CommunityCode, err)
			}

			if expanded[cell] {
				continue
			}

			expanded[cell] = true

			disk, err := h3.GridDisk(cell, 1)
			if err != nil {
				return fmt.Errorf("bucketing %s: %w", a.CommunityCode, err)
			}

			for _, c := range disk {
				if member[c] {
					continue
				}

				member[c] = true
				x.buckets[c] = append(x.buckets[c], a)
			}
		}
	}

	return nil
}

// candidates narrows the scan to the areas bucketed under the point's cell.
// A miss falls back to the full list.
func (x *Index) candidates(pt spatial.Point) []*Area {
	cell, err := h3.LatLngToCell(h3.NewLatLng(pt.Lat, pt.Lng), bucketResolution)
	if err != nil {
		return x.areas
	}

	if areas, ok := x.buckets[cell]; ok {
		return areas
	}

	return x.areas
}

// Locate returns the area containing the point. When several overlapping
// features contain it, the smallest wins, which resolves community polygons
// nested in parish remainder polygons. When none contains it the nearest
// feature by boundary distance is returned with Nearest set. Returns nil
// only for an empty index.
func (x *Index) Locate(pt spatial.Point) *Match {
	var best *Area

	for _, a := range x.candidates(pt) {
		if !a.Contains(pt) {
			continue
		}

		if best == nil || a.areaM2 < best.areaM2 {
			best = a
		}
	}

	if best != nil {
		return &Match{Area: best}
	}

	var nearest *Area

	minDist := math.Inf(1)

	for _, a := range x.areas {
		if d := a.Distance(pt); d < minDist {
			minDist = d
			nearest = a
		}
	}

	if nearest == nil {
		return nil
	}

	return &Match{Area: nearest, Nearest: true, Distance: minDist}
}

// Stats summarizes the loaded dataset.
type Stats struct {
	Features    int `json:"features"`
	Parishes    int `json:"parishes"`
	Communities int `json:"communities"`
}

// Stats returns feature and distinct parish/community counts.
func (x *Index) Stats() Stats {
	parishes := make(map[string]bool)
	communities := make(map[string]bool)

	for _, a := range x.areas {
		if a.ParishCode != "" {
			parishes[a.ParishCode] = true
		}

		if a.CommunityCode != "" {
			communities[a.CommunityCode] = true
		}
	}

	return Stats{
		Features:    len(x.areas),
		Parishes:    len(parishes),
		Communities: len(communities),
	}
}

// Areas returns the loaded features in dataset order.
func (x *Index) Areas() []*Area {
	return x.areas
}

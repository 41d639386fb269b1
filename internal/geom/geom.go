// Package geom wraps the geometry operations the delineation pipeline needs:
// centroids, point-to-line distance, dissolve, and area. All math is planar
// and in the coordinate units of the input data (the REC datasets this was
// built for are in projected metre coordinates).
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Centroid returns the length-weighted centroid of a line geometry.
func Centroid(ls orb.LineString) orb.Point {
	c, _ := planar.CentroidArea(ls)
	return c
}

// DistanceToLine returns the shortest planar distance from p to any segment
// of ls. An empty line is infinitely far away.
func DistanceToLine(p orb.Point, ls orb.LineString) float64 {
	if len(ls) == 0 {
		return math.Inf(1)
	}
	if len(ls) == 1 {
		return planar.Distance(p, ls[0])
	}
	min := math.Inf(1)
	for i := 0; i < len(ls)-1; i++ {
		d := planar.Distance(p, closestOnSegment(p, ls[i], ls[i+1]))
		if d < min {
			min = d
		}
	}
	return min
}

// closestOnSegment projects p onto the segment a-b, clamped to the endpoints.
func closestOnSegment(p, a, b orb.Point) orb.Point {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return a
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}

// Dissolve merges the sub-catchment geometries of an upstream set into one.
// Sub-catchments partition the drainage area (each reach drains a distinct
// patch of land), so the union is assembled as a MultiPolygon rather than
// computed with boolean operations. A single-polygon result is returned as a
// plain Polygon.
func Dissolve(parts []orb.MultiPolygon) orb.Geometry {
	merged := make(orb.MultiPolygon, 0, len(parts))
	for _, mp := range parts {
		merged = append(merged, mp...)
	}
	if len(merged) == 1 {
		return merged[0]
	}
	return merged
}

// Area returns the planar area of g in squared native units.
func Area(g orb.Geometry) float64 {
	return planar.Area(g)
}

// Package match assigns input sites to the river reach they sit on. Two
// policies are supported: nearest reach centroid (with an optional distance
// cap) and nearest reach line within a buffer. Sites that match nothing are
// dropped from the run, never fatal.
package match

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"

	"headwater/internal/geom"
	"headwater/internal/network"
)

// ErrBadSiteID is returned when a site identifier is not a recognized scalar.
var ErrBadSiteID = errors.New("site id must be a string or a number")

// Policy selects the matching strategy.
type Policy string

const (
	// PolicyCentroid matches each site to the reach with the nearest
	// centroid, capped by max distance (<= 0 means unbounded).
	PolicyCentroid Policy = "centroid"
	// PolicyLine matches each site to the closest reach line within a
	// buffer distance.
	PolicyLine Policy = "line"
)

// Site is one input point with its carried-through attributes. Props travel
// unchanged into the final result.
type Site struct {
	ID    string
	Props geojson.Properties
	Point orb.Point
}

// NewSite validates the raw identifier and builds a Site. Identifiers must be
// scalar (string or number); anything else is rejected before any processing
// begins.
func NewSite(id any, props geojson.Properties, pt orb.Point) (Site, error) {
	s, err := scalarID(id)
	if err != nil {
		return Site{}, err
	}
	return Site{ID: s, Props: props, Point: pt}, nil
}

func scalarID(id any) (string, error) {
	switch v := id.(type) {
	case string:
		return v, nil
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), nil
		}
		return fmt.Sprintf("%g", v), nil
	case int:
		return fmt.Sprintf("%d", v), nil
	case int64:
		return fmt.Sprintf("%d", v), nil
	default:
		return "", fmt.Errorf("%w, got %T", ErrBadSiteID, id)
	}
}

// Assignment pairs a site with its matched reach.
type Assignment struct {
	Site    Site
	ReachID int64
	Dist    float64
}

// Result of a matching pass. Dropped lists the sites with no reach in range;
// they are excluded from all downstream processing.
type Result struct {
	Assigned []Assignment
	Dropped  []Site
}

// Sites runs the configured matching policy. dist is the centroid max
// distance for PolicyCentroid and the buffer for PolicyLine.
func Sites(sites []Site, net *network.Network, policy Policy, dist float64) (Result, error) {
	switch policy {
	case PolicyCentroid:
		return NearestCentroid(sites, net, dist), nil
	case PolicyLine:
		return NearestLine(sites, net, dist), nil
	default:
		return Result{}, fmt.Errorf("unknown match policy %q", policy)
	}
}

// reachCentroid is a quadtree entry: one reach represented by its centroid.
type reachCentroid struct {
	id int64
	pt orb.Point
}

func (c reachCentroid) Point() orb.Point { return c.pt }

// NearestCentroid represents every geometry-bearing reach by its centroid,
// indexes the centroids, and assigns each site to the nearest one. A positive
// maxDistance drops sites farther than that from every centroid; maxDistance
// <= 0 is unbounded and every site gets assigned.
func NearestCentroid(sites []Site, net *network.Network, maxDistance float64) Result {
	var entries []reachCentroid
	var bound orb.Bound
	for _, r := range net.Reaches() {
		if len(r.Geom) == 0 {
			continue
		}
		c := geom.Centroid(r.Geom)
		if len(entries) == 0 {
			bound = orb.Bound{Min: c, Max: c}
		} else {
			bound = bound.Extend(c)
		}
		entries = append(entries, reachCentroid{id: r.ID, pt: c})
	}

	var res Result
	if len(entries) == 0 {
		res.Dropped = append(res.Dropped, sites...)
		return res
	}

	qt := quadtree.New(bound.Pad(1))
	for _, e := range entries {
		qt.Add(e)
	}

	for _, s := range sites {
		nearest := qt.Find(s.Point).(reachCentroid)
		d := planar.Distance(s.Point, nearest.pt)
		if maxDistance > 0 && d > maxDistance {
			res.Dropped = append(res.Dropped, s)
			continue
		}
		res.Assigned = append(res.Assigned, Assignment{Site: s, ReachID: nearest.id, Dist: d})
	}
	return res
}

// NearestLine assigns each site to the spatially closest reach line within
// the buffer distance. Reaches whose padded bounding box excludes the point
// are skipped without measuring. Ties go to the lowest reach ID.
func NearestLine(sites []Site, net *network.Network, buffer float64) Result {
	reaches := net.Reaches()

	var res Result
	for _, s := range sites {
		bestID := int64(-1)
		bestDist := buffer
		for _, r := range reaches {
			if len(r.Geom) == 0 {
				continue
			}
			if !r.Geom.Bound().Pad(buffer).Contains(s.Point) {
				continue
			}
			if d := geom.DistanceToLine(s.Point, r.Geom); d < bestDist || (d == bestDist && bestID < 0) {
				bestID = r.ID
				bestDist = d
			}
		}
		if bestID < 0 {
			res.Dropped = append(res.Dropped, s)
			continue
		}
		res.Assigned = append(res.Assigned, Assignment{Site: s, ReachID: bestID, Dist: bestDist})
	}
	return res
}

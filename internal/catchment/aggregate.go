// Package catchment turns traced upstream reach sets into dissolved catchment
// polygons and drives the per-site delineation batch.
package catchment

import (
	"fmt"

	"github.com/paulmach/orb"

	"headwater/internal/geom"
	"headwater/internal/network"
)

// SubCatchments maps each reach ID to the area draining directly into that
// reach (non-cumulative). Geometries are normalized to MultiPolygon on load;
// a reach keyed by several source rows holds all of them.
type SubCatchments map[int64]orb.MultiPolygon

// MissingCatchmentError reports upstream reaches that have no sub-catchment
// polygon. It signals incomplete input data rather than a per-site condition,
// so it propagates to the caller instead of being skipped.
type MissingCatchmentError struct {
	ReachIDs []int64
}

func (e *MissingCatchmentError) Error() string {
	return fmt.Sprintf("no sub-catchment for %d upstream reach(es), first missing: %d",
		len(e.ReachIDs), e.ReachIDs[0])
}

// Aggregate selects the sub-catchments of an upstream reach set, dissolves
// them into one geometry, and returns it with its planar area in the
// dataset's native unit. Every reach in the set must have a sub-catchment.
func Aggregate(upstream map[int64]struct{}, subcatch SubCatchments) (orb.Geometry, float64, error) {
	ids := network.SortedIDs(upstream)

	parts := make([]orb.MultiPolygon, 0, len(ids))
	var missing []int64
	for _, id := range ids {
		mp, ok := subcatch[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		parts = append(parts, mp)
	}
	if len(missing) > 0 {
		return nil, 0, &MissingCatchmentError{ReachIDs: missing}
	}

	g := geom.Dissolve(parts)
	return g, geom.Area(g), nil
}

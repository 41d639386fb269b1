package catchment

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"

	"headwater/internal/match"
	"headwater/internal/network"
)

// Result is the terminal per-site output: the dissolved upstream catchment,
// its area, and the site's original attributes.
type Result struct {
	SiteID   string
	ReachID  int64
	Props    geojson.Properties
	Geom     orb.Geometry
	Area     float64
	Upstream int // number of reaches in the traced set
}

// Options tunes a delineation batch.
type Options struct {
	// Jobs is the number of parallel trace+aggregate workers; <= 0 uses
	// runtime.NumCPU(). The network and sub-catchments are read-only, so
	// workers share them without locking.
	Jobs int
}

// Delineate computes the upstream catchment for every matched site. Sites
// assigned to the same reach share one traversal and one aggregation; the
// shared result is joined back to each site afterwards. Output order is
// deterministic: sorted by site ID, then reach ID.
func Delineate(net *network.Network, subcatch SubCatchments, assigned []match.Assignment, opts Options) ([]Result, error) {
	if len(assigned) == 0 {
		return nil, nil
	}

	// unique matched reaches; repeated traversals are the dominant cost
	seen := make(map[int64]struct{}, len(assigned))
	for _, a := range assigned {
		seen[a.ReachID] = struct{}{}
	}
	reachIDs := network.SortedIDs(seen)

	type shed struct {
		geom     orb.Geometry
		area     float64
		upstream int
	}
	sheds := make([]shed, len(reachIDs))

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, id := range reachIDs {
		g.Go(func() error {
			up, err := net.Trace(id)
			if err != nil {
				return err
			}
			geo, area, err := Aggregate(up, subcatch)
			if err != nil {
				return fmt.Errorf("reach %d: %w", id, err)
			}
			sheds[i] = shed{geom: geo, area: area, upstream: len(up)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shedByReach := make(map[int64]shed, len(reachIDs))
	for i, id := range reachIDs {
		shedByReach[id] = sheds[i]
	}

	results := make([]Result, 0, len(assigned))
	for _, a := range assigned {
		s := shedByReach[a.ReachID]
		results = append(results, Result{
			SiteID:   a.Site.ID,
			ReachID:  a.ReachID,
			Props:    a.Site.Props,
			Geom:     s.geom,
			Area:     s.area,
			Upstream: s.upstream,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].SiteID != results[j].SiteID {
			return results[i].SiteID < results[j].SiteID
		}
		return results[i].ReachID < results[j].ReachID
	})
	return results, nil
}

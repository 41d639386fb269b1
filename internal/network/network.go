// Package network holds the in-memory model of the river network: directed
// reach edges between topological nodes, with a precomputed inflow index for
// upstream traversal.
package network

import (
	"errors"
	"sort"

	"github.com/paulmach/orb"
)

// ErrUnknownReach is returned when a traversal is started from a reach ID
// that is not in the network.
var ErrUnknownReach = errors.New("unknown reach")

// Reach is one directed edge of the river network. Water flows from FromNode
// to ToNode. Geom is the mapped line of the reach and may be nil when the
// source table carried no geometry.
type Reach struct {
	ID       int64
	FromNode int64
	ToNode   int64
	Geom     orb.LineString
}

// Network is an immutable snapshot of the reach network with a precomputed
// inflow index (to-node -> reaches ending there). Build once with New and
// share freely across goroutines; nothing mutates it after construction.
type Network struct {
	reaches map[int64]Reach
	inflow  map[int64][]int64
}

// New builds a Network snapshot from raw reaches. Later duplicates of a reach
// ID win, matching last-write semantics of the source tables.
func New(reaches []Reach) *Network {
	byID := make(map[int64]Reach, len(reaches))
	for _, r := range reaches {
		byID[r.ID] = r
	}
	return &Network{reaches: byID, inflow: buildInflow(byID)}
}

func buildInflow(byID map[int64]Reach) map[int64][]int64 {
	inflow := make(map[int64][]int64)
	for id, r := range byID {
		inflow[r.ToNode] = append(inflow[r.ToNode], id)
	}
	// sorted inflow lists keep traversal order deterministic
	for _, ids := range inflow {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return inflow
}

// Len returns the number of reaches in the network.
func (n *Network) Len() int {
	return len(n.reaches)
}

// Reach returns the reach with the given ID.
func (n *Network) Reach(id int64) (Reach, bool) {
	r, ok := n.reaches[id]
	return r, ok
}

// Reaches returns all reaches sorted by ID, for deterministic iteration.
func (n *Network) Reaches() []Reach {
	out := make([]Reach, 0, len(n.reaches))
	for _, r := range n.reaches {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SortedIDs flattens a reach set into a sorted slice.
func SortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

package network

import "fmt"

// Trace returns the IDs of every reach whose flow eventually enters startID,
// inclusive of startID itself.
//
// The traversal is a level-synchronous expansion over the inflow index: each
// round grows the frontier to the reaches ending at the frontier's from-nodes,
// so the cost per round is proportional to the frontier's in-degree, not the
// network size. Confluences fall out naturally because every reach ending at
// a frontier node joins the next frontier. The visited guard means a cycle or
// a self-loop reach terminates with plain reachability instead of spinning.
func (n *Network) Trace(startID int64) (map[int64]struct{}, error) {
	start, ok := n.reaches[startID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownReach, startID)
	}

	visited := map[int64]struct{}{startID: {}}
	frontier := []Reach{start}
	for len(frontier) > 0 {
		var next []Reach
		for _, f := range frontier {
			for _, upID := range n.inflow[f.FromNode] {
				if _, seen := visited[upID]; seen {
					continue
				}
				visited[upID] = struct{}{}
				next = append(next, n.reaches[upID])
			}
		}
		frontier = next
	}
	return visited, nil
}

// TraceAll traces each start reach independently and returns the upstream
// sets keyed by start ID.
func (n *Network) TraceAll(startIDs []int64) (map[int64]map[int64]struct{}, error) {
	out := make(map[int64]map[int64]struct{}, len(startIDs))
	for _, id := range startIDs {
		up, err := n.Trace(id)
		if err != nil {
			return nil, err
		}
		out[id] = up
	}
	return out, nil
}

package network

import "fmt"

// OverrideField names the reach field an Override rewrites.
type OverrideField string

const (
	FieldFromNode OverrideField = "from_node"
	FieldToNode   OverrideField = "to_node"
)

// Valid reports whether f names a rewritable field.
func (f OverrideField) Valid() bool {
	return f == FieldFromNode || f == FieldToNode
}

// Override is one topology correction: rewire a known-miswired reach to a
// different node before any traversal. Overrides are caller-supplied static
// configuration, never derived from the network itself.
type Override struct {
	ReachID int64         `toml:"reach_id" json:"reach_id"`
	Field   OverrideField `toml:"field" json:"field"`
	NewNode int64         `toml:"node" json:"node"`
}

// Apply returns a corrected copy of the network with the overrides applied;
// the receiver is left untouched. The second return lists override reach IDs
// that are absent from the network: those overrides are skipped, and the
// caller decides whether to warn or fail on them.
func (n *Network) Apply(overrides []Override) (*Network, []int64, error) {
	if len(overrides) == 0 {
		return n, nil, nil
	}

	byID := make(map[int64]Reach, len(n.reaches))
	for id, r := range n.reaches {
		byID[id] = r
	}

	var unmatched []int64
	for _, o := range overrides {
		if !o.Field.Valid() {
			return nil, nil, fmt.Errorf("override for reach %d: invalid field %q", o.ReachID, o.Field)
		}
		r, ok := byID[o.ReachID]
		if !ok {
			unmatched = append(unmatched, o.ReachID)
			continue
		}
		switch o.Field {
		case FieldFromNode:
			r.FromNode = o.NewNode
		case FieldToNode:
			r.ToNode = o.NewNode
		}
		byID[o.ReachID] = r
	}

	return &Network{reaches: byID, inflow: buildInflow(byID)}, unmatched, nil
}

package network

// TopologyReport summarizes the structure of the reach network. It is the
// payload of the `headwater summary` command and a quick data-quality check
// before a delineation run.
type TopologyReport struct {
	Reaches          int `json:"reaches"`
	Nodes            int `json:"nodes"`
	Headwaters       int `json:"headwaters"`
	Confluences      int `json:"confluences"`
	Outlets          int `json:"outlets"`
	SelfLoops        int `json:"self_loops"`
	Components       int `json:"components"`
	LargestComponent int `json:"largest_component"`
}

// Topology computes the structural summary of the network.
func (n *Network) Topology() *TopologyReport {
	report := &TopologyReport{Reaches: len(n.reaches)}
	if len(n.reaches) == 0 {
		return report
	}

	nodes := make(map[int64]struct{}, 2*len(n.reaches))
	fromNodes := make(map[int64]struct{}, len(n.reaches))
	for _, r := range n.reaches {
		nodes[r.FromNode] = struct{}{}
		nodes[r.ToNode] = struct{}{}
		fromNodes[r.FromNode] = struct{}{}
		if r.FromNode == r.ToNode {
			report.SelfLoops++
		}
	}
	report.Nodes = len(nodes)

	for _, r := range n.reaches {
		// headwater: nothing flows into this reach's upstream node
		if len(n.inflow[r.FromNode]) == 0 {
			report.Headwaters++
		}
		// outlet: this reach's water leaves the mapped network
		if _, feeds := fromNodes[r.ToNode]; !feeds {
			report.Outlets++
		}
	}
	for node, in := range n.inflow {
		if _, feeds := fromNodes[node]; feeds && len(in) >= 2 {
			report.Confluences++
		}
	}

	uf := newUnionFind(nodes)
	for _, r := range n.reaches {
		uf.union(r.FromNode, r.ToNode)
	}
	for _, c := range uf.components() {
		report.Components++
		if len(c) > report.LargestComponent {
			report.LargestComponent = len(c)
		}
	}
	return report
}

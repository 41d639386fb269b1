package network

// unionFind implements union-find over node IDs with path compression and
// union by rank. Used to count the connected components of the network
// (a healthy REC extract is one component per coastal outlet).
type unionFind struct {
	parent map[int64]int64
	rank   map[int64]int
	size   map[int64]int
}

func newUnionFind(nodes map[int64]struct{}) *unionFind {
	uf := &unionFind{
		parent: make(map[int64]int64, len(nodes)),
		rank:   make(map[int64]int, len(nodes)),
		size:   make(map[int64]int, len(nodes)),
	}
	for id := range nodes {
		uf.parent[id] = id
		uf.rank[id] = 0
		uf.size[id] = 1
	}
	return uf
}

// find returns the root of the component containing id, with path compression.
func (uf *unionFind) find(id int64) int64 {
	parent, ok := uf.parent[id]
	if !ok {
		return id
	}
	if parent != id {
		root := uf.find(parent)
		uf.parent[id] = root
		return root
	}
	return id
}

// union merges the components containing a and b. Returns true if they were separate.
func (uf *unionFind) union(a, b int64) bool {
	rootA := uf.find(a)
	rootB := uf.find(b)
	if rootA == rootB {
		return false
	}

	rankA := uf.rank[rootA]
	rankB := uf.rank[rootB]
	total := uf.size[rootA] + uf.size[rootB]

	if rankA < rankB {
		uf.parent[rootA] = rootB
		uf.size[rootB] = total
	} else if rankA > rankB {
		uf.parent[rootB] = rootA
		uf.size[rootA] = total
	} else {
		uf.parent[rootB] = rootA
		uf.size[rootA] = total
		uf.rank[rootA]++
	}
	return true
}

// components returns all connected components as slices of node IDs.
func (uf *unionFind) components() [][]int64 {
	groups := make(map[int64][]int64)
	for id := range uf.parent {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}
	result := make([][]int64, 0, len(groups))
	for _, members := range groups {
		result = append(result, members)
	}
	return result
}

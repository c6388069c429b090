package adjacency

// incidence is one triangle edge touching an undirected edge key.
type incidence struct {
	tri  int
	edge int
}

// edgeIndex maps each undirected edge to the triangle edges lying on it,
// in triangle order then edge order. That is the order in which the
// pairwise scan writes any given slot, so the last incidence belonging to
// another triangle is the neighbour the scan would have kept.
type edgeIndex struct {
	edges     map[uint64][]incidence
	triangles int
}

func edgeKey(a, b uint32) uint64 {
	if b < a {
		a, b = b, a
	}
	return uint64(a) | uint64(b)<<32
}

func newEdgeIndex(recs []record) *edgeIndex {
	idx := &edgeIndex{
		edges:     make(map[uint64][]incidence, len(recs)*3/2),
		triangles: len(recs),
	}
	for t := range recs {
		for k := 0; k < 3; k++ {
			key := edgeKey(recs[t].edge(k))
			idx.edges[key] = append(idx.edges[key], incidence{tri: t, edge: k})
		}
	}
	return idx
}

// resolve fills the three slots of triangle t. Only recs[t] is written;
// other records are read, so disjoint triangles may be resolved concurrently.
func (idx *edgeIndex) resolve(recs []record, t int) {
	r := &recs[t]
	for k := 0; k < 3; k++ {
		list := idx.edges[edgeKey(r.edge(k))]
		for n := len(list) - 1; n >= 0; n-- {
			in := list[n]
			if in.tri == t {
				continue
			}
			r.adj[k] = slot{v: recs[in.tri].opposite(in.edge), ok: true}
			break
		}
	}
}

// nonManifold counts edges touched by three or more triangle edges.
func (idx *edgeIndex) nonManifold() int {
	n := 0
	for _, list := range idx.edges {
		if len(list) > 2 {
			n++
		}
	}
	return n
}

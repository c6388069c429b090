package adjacency

// BuildPairwise is the reference O(T²) form of Build. Every pair of
// triangles (i, j) with i < j is visited with i ascending and j ascending,
// and the nine edge pairs are compared with i's edge as the outer loop.
// A match writes both triangles' slots, overwriting any earlier match.
//
// Build produces the same output in expected linear time; BuildPairwise is
// kept as the definition it is checked against.
func BuildPairwise(indices []uint32) ([]uint32, error) {
	recs, err := expand(indices)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		ri := &recs[i]
		for j := i + 1; j < len(recs); j++ {
			rj := &recs[j]
			for e := 0; e < 3; e++ {
				a1, b1 := ri.edge(e)
				for f := 0; f < 3; f++ {
					a2, b2 := rj.edge(f)
					if (a1 == a2 && b1 == b2) || (a1 == b2 && b1 == a2) {
						ri.adj[e] = slot{v: rj.opposite(f), ok: true}
						rj.adj[f] = slot{v: ri.opposite(e), ok: true}
					}
				}
			}
		}
	}
	return flatten(recs), nil
}

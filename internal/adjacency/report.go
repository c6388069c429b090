package adjacency

// Report summarises the edge topology of a triangle index list.
type Report struct {
	Triangles        int `json:"triangles"`
	InteriorEdges    int `json:"interior_edges"`     // shared by exactly two triangle edges
	BoundaryEdges    int `json:"boundary_edges"`     // one triangle edge, no neighbour
	NonManifoldEdges int `json:"non_manifold_edges"` // three or more triangle edges
	MatchedSlots     int `json:"matched_slots"`      // slots filled from a neighbour
	FallbackSlots    int `json:"fallback_slots"`     // slots filled from the boundary rule
}

// Manifold reports whether no edge is shared by more than two triangles.
func (r Report) Manifold() bool {
	return r.NonManifoldEdges == 0
}

// Closed reports whether the mesh is manifold and has no boundary edges.
func (r Report) Closed() bool {
	return r.Manifold() && r.BoundaryEdges == 0
}

// Analyze computes the Report for indices without building the output list.
// For a closed manifold mesh MatchedSlots is exactly 2 × InteriorEdges.
func Analyze(indices []uint32) (Report, error) {
	recs, err := expand(indices)
	if err != nil {
		return Report{}, err
	}
	idx := newEdgeIndex(recs)
	rep := Report{Triangles: len(recs)}
	for _, list := range idx.edges {
		switch n := len(list); {
		case n == 1:
			rep.BoundaryEdges++
		case n == 2:
			rep.InteriorEdges++
		default:
			rep.NonManifoldEdges++
		}
	}
	for t := range recs {
		idx.resolve(recs, t)
		for _, s := range recs[t].adj {
			if s.ok {
				rep.MatchedSlots++
			} else {
				rep.FallbackSlots++
			}
		}
	}
	return rep, nil
}

// Add returns the field-wise sum of r and o, for totals across meshes.
func (r Report) Add(o Report) Report {
	return Report{
		Triangles:        r.Triangles + o.Triangles,
		InteriorEdges:    r.InteriorEdges + o.InteriorEdges,
		BoundaryEdges:    r.BoundaryEdges + o.BoundaryEdges,
		NonManifoldEdges: r.NonManifoldEdges + o.NonManifoldEdges,
		MatchedSlots:     r.MatchedSlots + o.MatchedSlots,
		FallbackSlots:    r.FallbackSlots + o.FallbackSlots,
	}
}

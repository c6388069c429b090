// Package adjacency converts a triangle index list into a triangle-adjacency
// index list, the layout consumed by adjacency-aware primitive modes
// (silhouette detection, outline extrusion).
//
// Every input triangle (c0, c1, c2) becomes a 6-tuple
//
//	(c0, adj0, c1, adj1, c2, adj2)
//
// where adjK is the vertex opposite the edge that starts at corner K in the
// neighbouring triangle sharing that edge. Edges are (c0,c1), (c1,c2) and
// (c2,c0) and are matched without regard to direction. A boundary edge has
// no neighbour; its slot falls back to the triangle's own opposite corner so
// the phantom neighbour has zero area.
package adjacency

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrIndexCount reports a triangle list whose length is not a multiple of 3.
	ErrIndexCount = errors.New("index count is not a multiple of 3")

	// ErrAdjacencyCount reports an adjacency list whose length is not a multiple of 6.
	ErrAdjacencyCount = errors.New("adjacency index count is not a multiple of 6")
)

// slot is the adjacency entry for one edge. ok is false until a neighbour
// sharing the edge has been found.
type slot struct {
	v  uint32
	ok bool
}

// record is the working form of one triangle.
type record struct {
	corner [3]uint32
	adj    [3]slot
}

// edge returns the endpoints of edge k: (c[k], c[k+1]).
func (r *record) edge(k int) (uint32, uint32) {
	return r.corner[k], r.corner[(k+1)%3]
}

// opposite returns the corner not on edge k.
func (r *record) opposite(k int) uint32 {
	return r.corner[(k+2)%3]
}

func expand(indices []uint32) ([]record, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("adjacency: %w (len %d)", ErrIndexCount, len(indices))
	}
	recs := make([]record, len(indices)/3)
	for t := range recs {
		copy(recs[t].corner[:], indices[t*3:t*3+3])
	}
	return recs, nil
}

// flatten resolves boundary slots and writes the 6-tuples out.
func flatten(recs []record) []uint32 {
	out := make([]uint32, len(recs)*6)
	for t := range recs {
		r := &recs[t]
		for k := 0; k < 3; k++ {
			out[t*6+k*2] = r.corner[k]
			if r.adj[k].ok {
				out[t*6+k*2+1] = r.adj[k].v
			} else {
				out[t*6+k*2+1] = r.opposite(k)
			}
		}
	}
	return out
}

// Build returns the adjacency index list for a triangle index list.
// The result is exactly twice as long as indices and indices is not modified.
//
// When an edge is shared by more than two triangles, the neighbour recorded
// for it is the one the pairwise scan (see BuildPairwise) would have written
// last. A warning is logged when such edges exist.
//
// Build cannot tell a plain list from an adjacency list: a 6T list is also a
// multiple of 3. Passing Build its own output yields a meaningless result;
// tracking which form an index list is in is the caller's job.
func Build(indices []uint32) ([]uint32, error) {
	recs, err := expand(indices)
	if err != nil {
		return nil, err
	}
	idx := newEdgeIndex(recs)
	for t := range recs {
		idx.resolve(recs, t)
	}
	warnNonManifold(idx)
	return flatten(recs), nil
}

// Plain recovers the triangle index list from an adjacency index list.
func Plain(adj []uint32) ([]uint32, error) {
	if len(adj)%6 != 0 {
		return nil, fmt.Errorf("adjacency: %w (len %d)", ErrAdjacencyCount, len(adj))
	}
	out := make([]uint32, 0, len(adj)/2)
	for i := 0; i < len(adj); i += 6 {
		out = append(out, adj[i], adj[i+2], adj[i+4])
	}
	return out, nil
}

func warnNonManifold(idx *edgeIndex) {
	if n := idx.nonManifold(); n > 0 {
		slog.Warn("adjacency: non-manifold edges, last neighbour in scan order kept",
			"edges", n, "triangles", idx.triangles)
	}
}

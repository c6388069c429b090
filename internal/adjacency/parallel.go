package adjacency

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps small meshes from being split into goroutines that cost
// more than the work they do.
const minChunk = 1024

// BuildParallel is Build with the slot resolution spread over workers.
// Each worker owns a contiguous range of triangles and writes only their
// slots; the edge index and the other triangles' corners are shared
// read-only. Output is identical to Build. workers <= 0 means GOMAXPROCS.
func BuildParallel(ctx context.Context, indices []uint32, workers int) ([]uint32, error) {
	recs, err := expand(indices)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	idx := newEdgeIndex(recs)

	chunk := (len(recs) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(recs); lo += chunk {
		hi := min(lo+chunk, len(recs))
		g.Go(func() error {
			for t := lo; t < hi; t++ {
				if t%minChunk == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				idx.resolve(recs, t)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	warnNonManifold(idx)
	return flatten(recs), nil
}

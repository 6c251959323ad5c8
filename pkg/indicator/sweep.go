package indicator

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var nan = math.NaN()

// assembleBlocks allocates a (rows, cols*k) sweep matrix and lets fill write
// block i into its (rows, cols) view. Blocks are filled concurrently; each
// fill call must write only to dst. The first fill error is returned.
func assembleBlocks(rows, cols, k, parallelism int, fill func(i int, dst *mat.Dense) error) (*mat.Dense, error) {
	out := mat.NewDense(rows, cols*k, nil)
	g := new(errgroup.Group)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i := 0; i < k; i++ {
		i := i
		dst := out.Slice(0, rows, i*cols, (i+1)*cols).(*mat.Dense)
		g.Go(func() error {
			return fill(i, dst)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// cachedBundle looks up window w, failing when the cache was built without it.
func cachedBundle(cache *RollingStatCache, w int) (StatBundle, error) {
	b, ok := cache.Get(w)
	if !ok {
		return StatBundle{}, fmt.Errorf("rolling stat cache has no window %d", w)
	}
	return b, nil
}

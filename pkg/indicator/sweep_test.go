package indicator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestAssembleBlocks_Layout(t *testing.T) {
	out, err := assembleBlocks(2, 2, 3, 2, func(i int, dst *mat.Dense) error {
		dst.Apply(func(_, j int, _ float64) float64 { return float64(10*i + j) }, dst)
		return nil
	})
	require.NoError(t, err)

	rows, cols := out.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 6, cols)
	assert.Equal(t, []float64{0, 1, 10, 11, 20, 21}, mat.Row(nil, 1, out))
}

func TestAssembleBlocks_PropagatesFillError(t *testing.T) {
	failed := errors.New("block unavailable")
	out, err := assembleBlocks(3, 1, 4, 0, func(i int, dst *mat.Dense) error {
		if i == 2 {
			return failed
		}
		return nil
	})
	assert.ErrorIs(t, err, failed)
	assert.Nil(t, out)
}

func TestCachedBundle_MissingWindow(t *testing.T) {
	cache, err := BuildRollingStatCache(samplePanel(t), CacheRequest{Windows: []int{3}}, 1)
	require.NoError(t, err)

	_, err = cachedBundle(cache, 3)
	assert.NoError(t, err)
	_, err = cachedBundle(cache, 5)
	assert.Error(t, err)
}

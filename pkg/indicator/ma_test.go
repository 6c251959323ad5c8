package indicator

import (
	"math"
	"testing"

	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// bitEqual treats NaN cells as equal to each other.
func bitEqual(t *testing.T, a, b *mat.Dense) {
	t.Helper()
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	require.Equal(t, ra, rb)
	require.Equal(t, ca, cb)
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			assert.Equal(t, math.Float64bits(a.At(i, j)), math.Float64bits(b.At(i, j)), "cell (%d,%d)", i, j)
		}
	}
}

func TestMovingAverage_BlockLayout(t *testing.T) {
	ts := samplePanel(t)
	ma, err := NewMovingAverage(ts, MovingAverageRequest{
		FastWindows: []int{2, 3},
		SlowWindows: []int{5},
	}, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, ma.Params())
	assert.Equal(t, 2, ma.Columns())
	assert.Equal(t, []int{5, 5}, ma.SlowWindows)
	rows, cols := ma.Fast.Dims()
	assert.Equal(t, len(samplePrices), rows)
	assert.Equal(t, 4, cols)

	// Block 1, column 0 is the 3-bar SMA of the first asset
	assert.InDelta(t, (samplePrices[8]+samplePrices[9]+samplePrices[10])/3, ma.Fast.At(10, 2), 1e-12)
	assert.True(t, math.IsNaN(ma.Fast.At(2, 2)))
	assert.True(t, math.IsNaN(ma.Slow.At(4, 3)))
}

func TestMovingAverage_DuplicateWindowsAreBitIdentical(t *testing.T) {
	ts := samplePanel(t)
	for _, opts := range []Options{DefaultOptions(), {EWM: true, Adjust: true, MinPeriods: true}} {
		ma, err := NewMovingAverage(ts, MovingAverageRequest{
			FastWindows: []int{3, 4, 3},
			SlowWindows: []int{6, 6, 6},
		}, opts)
		require.NoError(t, err)

		first, err := timeseries.Block(ma.Fast, 0, 2)
		require.NoError(t, err)
		third, err := timeseries.Block(ma.Fast, 2, 2)
		require.NoError(t, err)
		bitEqual(t, first, third)
	}
}

func TestMovingAverage_RoundTripSingleParameter(t *testing.T) {
	ts := samplePanel(t)
	opts := Options{EWM: true, MinPeriods: true, Parallelism: 1}
	full, err := NewMovingAverage(ts, MovingAverageRequest{
		FastWindows: []int{2, 3, 4},
		SlowWindows: []int{8, 9, 10},
	}, opts)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		single, err := NewMovingAverage(ts, MovingAverageRequest{
			FastWindows: []int{full.FastWindows[i]},
			SlowWindows: []int{full.SlowWindows[i]},
		}, opts)
		require.NoError(t, err)

		fastBlock, _ := timeseries.Block(full.Fast, i, 2)
		slowBlock, _ := timeseries.Block(full.Slow, i, 2)
		bitEqual(t, single.Fast, fastBlock)
		bitEqual(t, single.Slow, slowBlock)
	}
}

func TestMovingAverage_EntriesAndExitsAreExclusive(t *testing.T) {
	ts := samplePanel(t)
	ma, err := NewMovingAverage(ts, MovingAverageRequest{
		FastWindows: []int{2, 3, 5},
		SlowWindows: []int{6, 5, 5},
	}, DefaultOptions())
	require.NoError(t, err)

	entries, err := ma.Entries()
	require.NoError(t, err)
	exits, err := ma.Exits()
	require.NoError(t, err)

	rows, cols := entries.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			assert.False(t, entries.At(i, j) && exits.At(i, j), "cell (%d,%d)", i, j)
		}
	}
	assert.Greater(t, entries.Count(), 0)

	// Block 2 compares a window with itself: every cell ties
	tie, err := entries.Block(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, tie.Count())
	tieExits, _ := exits.Block(2, 2)
	assert.Equal(t, 0, tieExits.Count())
}

func TestMovingAverage_Validation(t *testing.T) {
	ts := samplePanel(t)

	_, err := NewMovingAverage(ts, MovingAverageRequest{FastWindows: []int{2, 3}, SlowWindows: []int{4, 5, 6}}, DefaultOptions())
	assert.ErrorIs(t, err, timeseries.ErrInvalidParameter)

	_, err = NewMovingAverage(ts, MovingAverageRequest{FastWindows: []int{0}, SlowWindows: []int{4}}, DefaultOptions())
	assert.ErrorIs(t, err, timeseries.ErrInvalidParameter)

	_, err = NewMovingAverage(ts, MovingAverageRequest{SlowWindows: []int{4}}, DefaultOptions())
	assert.ErrorIs(t, err, timeseries.ErrInvalidParameter)

	_, err = NewMovingAverage(nil, MovingAverageRequest{FastWindows: []int{2}, SlowWindows: []int{4}}, DefaultOptions())
	assert.ErrorIs(t, err, timeseries.ErrShapeMismatch)
}

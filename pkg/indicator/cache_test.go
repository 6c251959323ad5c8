package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var samplePrices = []float64{
	100, 101.5, 99.8, 102.3, 104.1, 103.7, 105.2, 104.9, 106.8, 108.0,
	107.1, 109.4, 110.2, 108.7, 111.5, 112.9, 111.8, 113.4, 115.0, 114.2,
}

func samplePanel(t *testing.T) *mat.Dense {
	t.Helper()
	second := make([]float64, len(samplePrices))
	for i, p := range samplePrices {
		second[i] = 200 - p/2
	}
	ts, err := timeseries.FromColumns(samplePrices, second)
	require.NoError(t, err)
	return ts
}

func techanSMA(prices []float64, window int) []float64 {
	series := techan.NewTimeSeries()
	base := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	for i, p := range prices {
		candle := techan.NewCandle(techan.NewTimePeriod(base.Add(time.Duration(i)*time.Minute), time.Minute))
		candle.ClosePrice = big.NewDecimal(p)
		series.AddCandle(candle)
	}
	sma := techan.NewSimpleMovingAverage(techan.NewClosePriceIndicator(series), window)
	out := make([]float64, len(prices))
	for i := range prices {
		out[i] = sma.Calculate(i).Float()
	}
	return out
}

func TestRollingStatCache_DeduplicatesWindows(t *testing.T) {
	ts := samplePanel(t)

	before := testutil.ToFloat64(logger.RollingStatsComputed.WithLabelValues("sma"))
	cache, err := BuildRollingStatCache(ts, CacheRequest{
		Windows:    []int{5, 3, 5, 5, 3},
		Kind:       SMA,
		MinPeriods: true,
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, []int{3, 5}, cache.Windows())
	assert.Equal(t, before+2, testutil.ToFloat64(logger.RollingStatsComputed.WithLabelValues("sma")))

	_, ok := cache.Get(4)
	assert.False(t, ok)
	rows, cols := cache.Dims()
	assert.Equal(t, len(samplePrices), rows)
	assert.Equal(t, 2, cols)
}

func TestRollingStatCache_MatchesTechanSMA(t *testing.T) {
	ts := samplePanel(t)
	for _, w := range []int{1, 4, 7} {
		cache, err := BuildRollingStatCache(ts, CacheRequest{Windows: []int{w}, Kind: SMA, MinPeriods: true}, 0)
		require.NoError(t, err)
		b, ok := cache.Get(w)
		require.True(t, ok)
		assert.Nil(t, b.Std)

		want := techanSMA(samplePrices, w)
		got := mat.Col(nil, 0, b.Mean)
		for i := w; i < len(samplePrices); i++ {
			assert.InDelta(t, want[i], got[i], 1e-9, "window %d row %d", w, i)
		}
	}
}

func TestRollingStatCache_MinPeriodsMasksWarmUp(t *testing.T) {
	ts := samplePanel(t)
	for _, kind := range []Kind{SMA, EMA} {
		cache, err := BuildRollingStatCache(ts, CacheRequest{
			Windows:    []int{4},
			Kind:       kind,
			WantStd:    true,
			MinPeriods: true,
		}, 0)
		require.NoError(t, err)
		b, _ := cache.Get(4)

		rows, cols := b.Mean.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				if i < 4 {
					assert.True(t, math.IsNaN(b.Mean.At(i, j)), "%s row %d must be masked", kind, i)
					assert.True(t, math.IsNaN(b.Std.At(i, j)))
				} else {
					assert.False(t, math.IsNaN(b.Mean.At(i, j)), "%s row %d must be computed", kind, i)
					assert.False(t, math.IsNaN(b.Std.At(i, j)))
				}
			}
		}
	}
}

func TestRollingStatCache_WithoutMinPeriodsUsesShorterWindow(t *testing.T) {
	ts, _ := timeseries.FromColumn([]float64{2, 4, 6, 8})
	cache, err := BuildRollingStatCache(ts, CacheRequest{Windows: []int{3}, Kind: SMA}, 0)
	require.NoError(t, err)
	b, _ := cache.Get(3)
	assert.Equal(t, []float64{2, 3, 4, 6}, mat.Col(nil, 0, b.Mean))
}

func TestRollingStatCache_WindowLongerThanSeries(t *testing.T) {
	ts, _ := timeseries.FromColumn([]float64{1, 2, 3})
	cache, err := BuildRollingStatCache(ts, CacheRequest{Windows: []int{10}, Kind: EMA, WantStd: true}, 0)
	require.NoError(t, err)
	b, _ := cache.Get(10)
	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(b.Mean.At(i, 0)))
		assert.True(t, math.IsNaN(b.Std.At(i, 0)))
	}
}

func TestRollingStatCache_RejectsInvalidRequests(t *testing.T) {
	ts := samplePanel(t)

	_, err := BuildRollingStatCache(ts, CacheRequest{Windows: []int{3, 0}}, 0)
	assert.ErrorIs(t, err, timeseries.ErrInvalidParameter)

	_, err = BuildRollingStatCache(ts, CacheRequest{}, 0)
	assert.ErrorIs(t, err, timeseries.ErrInvalidParameter)

	_, err = BuildRollingStatCache(ts, CacheRequest{Windows: []int{3}, Kind: Kind(7)}, 0)
	assert.ErrorIs(t, err, timeseries.ErrInvalidParameter)

	_, err = BuildRollingStatCache(ts, CacheRequest{Windows: []int{3}, StdDDOF: -1}, 0)
	assert.ErrorIs(t, err, timeseries.ErrInvalidParameter)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "sma", SMA.String())
	assert.Equal(t, "ema", EMA.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}

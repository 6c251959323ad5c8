package indicator

import (
	"fmt"
	"time"

	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"gonum.org/v1/gonum/mat"
)

// MovingAverageRequest sweeps fast/slow window pairs. Both axes are broadcast
// to a common length K; a length-1 axis is repeated.
type MovingAverageRequest struct {
	FastWindows []int
	SlowWindows []int
}

// MovingAverage holds a fast/slow moving average sweep. Fast and Slow are
// (T, C*K) with block i computed at FastWindows[i] / SlowWindows[i].
type MovingAverage struct {
	Fast        *mat.Dense
	Slow        *mat.Dense
	FastWindows []int
	SlowWindows []int
	columns     int
}

// NewMovingAverage computes the fast and slow averages of ts for every
// parameter pair, pulling both from one cache keyed by the union of windows.
func NewMovingAverage(ts *mat.Dense, req MovingAverageRequest, opts Options) (*MovingAverage, error) {
	start := time.Now()

	if err := validateSeries(ts); err != nil {
		return nil, reject("ma", err)
	}
	k, err := sweepLength(len(req.FastWindows), len(req.SlowWindows))
	if err != nil {
		return nil, reject("ma", err)
	}
	fast := broadcastInts(req.FastWindows, k)
	slow := broadcastInts(req.SlowWindows, k)
	if err := validateWindows(fast); err != nil {
		return nil, reject("ma", fmt.Errorf("fast windows: %w", err))
	}
	if err := validateWindows(slow); err != nil {
		return nil, reject("ma", fmt.Errorf("slow windows: %w", err))
	}

	cache, err := BuildRollingStatCache(ts, CacheRequest{
		Windows:    append(append([]int(nil), fast...), slow...),
		Kind:       opts.kind(),
		Adjust:     opts.Adjust,
		MinPeriods: opts.MinPeriods,
	}, opts.workers())
	if err != nil {
		return nil, reject("ma", err)
	}

	rows, cols := ts.Dims()
	fill := func(windows []int) func(i int, dst *mat.Dense) error {
		return func(i int, dst *mat.Dense) error {
			b, err := cachedBundle(cache, windows[i])
			if err != nil {
				return err
			}
			dst.Copy(b.Mean)
			return nil
		}
	}
	fastBlocks, err := assembleBlocks(rows, cols, k, opts.workers(), fill(fast))
	if err != nil {
		return nil, reject("ma", err)
	}
	slowBlocks, err := assembleBlocks(rows, cols, k, opts.workers(), fill(slow))
	if err != nil {
		return nil, reject("ma", err)
	}
	ma := &MovingAverage{
		Fast:        fastBlocks,
		Slow:        slowBlocks,
		FastWindows: fast,
		SlowWindows: slow,
		columns:     cols,
	}

	logger.SweepDuration.WithLabelValues("ma").Observe(time.Since(start).Seconds())
	logger.Named("indicator").Debug("Moving average sweep complete",
		logger.Int("blocks", k),
		logger.Int("distinct_windows", cache.Len()),
		logger.String("kind", cache.Kind().String()),
	)
	return ma, nil
}

// Entries signals fast > slow. Exact ties produce no signal.
func (m *MovingAverage) Entries() (*timeseries.BoolMatrix, error) {
	return timeseries.Greater(m.Fast, m.Slow)
}

// Exits signals fast < slow.
func (m *MovingAverage) Exits() (*timeseries.BoolMatrix, error) {
	return timeseries.Less(m.Fast, m.Slow)
}

// Params returns the sweep length K.
func (m *MovingAverage) Params() int {
	return len(m.FastWindows)
}

// Columns returns the asset column count C (the block width).
func (m *MovingAverage) Columns() int {
	return m.columns
}

package indicator

import (
	"fmt"
	"time"

	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// BollingerBandsRequest sweeps (window, multiplier) pairs, broadcast to a
// common length K.
type BollingerBandsRequest struct {
	Windows        []int
	StdMultipliers []float64
}

// BollingerBands holds volatility bands around a simple moving average:
// upper/lower = SMA(w) +/- multiplier * std(w). Price is ts tiled K times so
// that it lines up with the band blocks.
type BollingerBands struct {
	Upper          *mat.Dense
	Middle         *mat.Dense
	Lower          *mat.Dense
	Price          *mat.Dense
	Windows        []int
	StdMultipliers []float64
	columns        int
}

// NewBollingerBands computes the bands of ts for every parameter pair.
// opts.EWM is ignored: the middle band is always a simple moving average.
func NewBollingerBands(ts *mat.Dense, req BollingerBandsRequest, opts Options) (*BollingerBands, error) {
	start := time.Now()

	if err := validateSeries(ts); err != nil {
		return nil, reject("bb", err)
	}
	k, err := sweepLength(len(req.Windows), len(req.StdMultipliers))
	if err != nil {
		return nil, reject("bb", err)
	}
	windows := broadcastInts(req.Windows, k)
	multipliers := broadcastFloats(req.StdMultipliers, k)
	if err := validateWindows(windows); err != nil {
		return nil, reject("bb", err)
	}
	for i, m := range multipliers {
		if m != m {
			return nil, reject("bb", fmt.Errorf("%w: multiplier %d is NaN", timeseries.ErrInvalidParameter, i))
		}
	}

	cache, err := BuildRollingStatCache(ts, CacheRequest{
		Windows:    windows,
		Kind:       SMA,
		WantStd:    true,
		MinPeriods: opts.MinPeriods,
		StdDDOF:    opts.StdDDOF,
	}, opts.workers())
	if err != nil {
		return nil, reject("bb", err)
	}

	rows, cols := ts.Dims()
	band := func(sign float64) func(i int, dst *mat.Dense) error {
		return func(i int, dst *mat.Dense) error {
			b, err := cachedBundle(cache, windows[i])
			if err != nil {
				return err
			}
			// Cached matrices are freshly allocated, so their backing data is contiguous
			buf := make([]float64, rows*cols)
			floats.AddScaledTo(buf, b.Mean.RawMatrix().Data, sign*multipliers[i], b.Std.RawMatrix().Data)
			dst.Copy(mat.NewDense(rows, cols, buf))
			return nil
		}
	}
	middle := func(i int, dst *mat.Dense) error {
		b, err := cachedBundle(cache, windows[i])
		if err != nil {
			return err
		}
		dst.Copy(b.Mean)
		return nil
	}

	price, err := timeseries.Tile(ts, k)
	if err != nil {
		return nil, reject("bb", err)
	}
	bb := &BollingerBands{
		Price:          price,
		Windows:        windows,
		StdMultipliers: multipliers,
		columns:        cols,
	}
	if bb.Upper, err = assembleBlocks(rows, cols, k, opts.workers(), band(1)); err != nil {
		return nil, reject("bb", err)
	}
	if bb.Middle, err = assembleBlocks(rows, cols, k, opts.workers(), middle); err != nil {
		return nil, reject("bb", err)
	}
	if bb.Lower, err = assembleBlocks(rows, cols, k, opts.workers(), band(-1)); err != nil {
		return nil, reject("bb", err)
	}

	logger.SweepDuration.WithLabelValues("bb").Observe(time.Since(start).Seconds())
	logger.Named("indicator").Debug("Bollinger bands sweep complete",
		logger.Int("blocks", k),
		logger.Int("distinct_windows", cache.Len()),
	)
	return bb, nil
}

// PercentB is (price - lower) / (upper - lower): 1 at the upper band and 0 at
// the lower band. Collapsed bands give NaN or Inf.
func (b *BollingerBands) PercentB() *mat.Dense {
	var num, den, out mat.Dense
	num.Sub(b.Price, b.Lower)
	den.Sub(b.Upper, b.Lower)
	out.DivElem(&num, &den)
	return &out
}

// Bandwidth is (upper - lower) / middle.
func (b *BollingerBands) Bandwidth() *mat.Dense {
	var width, out mat.Dense
	width.Sub(b.Upper, b.Lower)
	out.DivElem(&width, b.Middle)
	return &out
}

// Entries signals price >= upper band.
func (b *BollingerBands) Entries() (*timeseries.BoolMatrix, error) {
	return timeseries.GreaterEqual(b.Price, b.Upper)
}

// Exits signals price <= lower band.
func (b *BollingerBands) Exits() (*timeseries.BoolMatrix, error) {
	return timeseries.LessEqual(b.Price, b.Lower)
}

// Params returns the sweep length K.
func (b *BollingerBands) Params() int {
	return len(b.Windows)
}

// Columns returns the asset column count C.
func (b *BollingerBands) Columns() int {
	return b.columns
}

package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"gonum.org/v1/gonum/mat"
)

// RSIRequest sweeps RSI windows.
type RSIRequest struct {
	Windows []int
}

// RSI holds a relative strength index sweep. Values is (T, C*K) with block i
// computed at Windows[i]:
//
//	RSI = 100 - 100 / (1 + avg_up / avg_down)
//
// A window without down moves gives 100; a flat window gives NaN.
type RSI struct {
	Values  *mat.Dense
	Windows []int
	columns int
}

// NewRSI computes the RSI of ts for every window. Up and down moves are
// smoothed by SMA, or by EMA when opts.EWM is set.
func NewRSI(ts *mat.Dense, req RSIRequest, opts Options) (*RSI, error) {
	start := time.Now()

	if err := validateSeries(ts); err != nil {
		return nil, reject("rsi", err)
	}
	if len(req.Windows) == 0 {
		return nil, reject("rsi", fmt.Errorf("%w: at least one window is required", timeseries.ErrInvalidParameter))
	}
	if err := validateWindows(req.Windows); err != nil {
		return nil, reject("rsi", err)
	}
	windows := append([]int(nil), req.Windows...)
	rows, cols := ts.Dims()

	byWindow, err := rsiByWindow(ts, windows, opts)
	if err != nil {
		return nil, reject("rsi", err)
	}

	values, err := assembleBlocks(rows, cols, len(windows), opts.workers(), func(i int, dst *mat.Dense) error {
		m, ok := byWindow[windows[i]]
		if !ok {
			return fmt.Errorf("no RSI computed for window %d", windows[i])
		}
		dst.Copy(m)
		return nil
	})
	if err != nil {
		return nil, reject("rsi", err)
	}

	logger.SweepDuration.WithLabelValues("rsi").Observe(time.Since(start).Seconds())
	logger.Named("indicator").Debug("RSI sweep complete",
		logger.Int("blocks", len(windows)),
		logger.Int("distinct_windows", len(byWindow)),
	)
	return &RSI{Values: values, Windows: windows, columns: cols}, nil
}

// rsiByWindow returns one (T, C) RSI matrix per distinct window.
func rsiByWindow(ts *mat.Dense, windows []int, opts Options) (map[int]*mat.Dense, error) {
	rows, cols := ts.Dims()
	out := make(map[int]*mat.Dense)
	if rows < 2 {
		// No price change to smooth
		for _, w := range uniqueWindows(windows) {
			out[w] = timeseries.Full(rows, cols, nan)
		}
		return out, nil
	}

	// Row 0 of the difference is dropped rather than smoothed, otherwise the
	// exponential average would stay NaN forever.
	delta := timeseries.MapColumns(ts, timeseries.Diff).Slice(1, rows, 0, cols)
	up := mat.NewDense(rows-1, cols, nil)
	down := mat.NewDense(rows-1, cols, nil)
	up.Apply(func(i, j int, _ float64) float64 {
		d := delta.At(i, j)
		if d < 0 {
			return 0
		}
		return d
	}, up)
	down.Apply(func(i, j int, _ float64) float64 {
		d := delta.At(i, j)
		if d > 0 {
			return 0
		}
		return math.Abs(d)
	}, down)

	req := CacheRequest{
		Windows: windows,
		Kind:    opts.kind(),
		Adjust:  opts.Adjust,
	}
	upCache, err := BuildRollingStatCache(up, req, opts.workers())
	if err != nil {
		return nil, err
	}
	downCache, err := BuildRollingStatCache(down, req, opts.workers())
	if err != nil {
		return nil, err
	}

	for _, w := range upCache.Windows() {
		u, _ := upCache.Get(w)
		d, _ := downCache.Get(w)
		rollUp := prependNaNRow(u.Mean)
		rollDown := prependNaNRow(d.Mean)
		if opts.MinPeriods {
			timeseries.SetLeadingNaN(rollUp, w)
			timeseries.SetLeadingNaN(rollDown, w)
		}
		rsi := mat.NewDense(rows, cols, nil)
		rsi.Apply(func(i, j int, _ float64) float64 {
			return 100 - 100/(1+rollUp.At(i, j)/rollDown.At(i, j))
		}, rsi)
		out[w] = rsi
	}
	return out, nil
}

func prependNaNRow(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := timeseries.Full(rows+1, cols, nan)
	out.Slice(1, rows+1, 0, cols).(*mat.Dense).Copy(m)
	return out
}

// Entries signals RSI < lowerBound. The bound is broadcast to the RSI shape:
// a 1x1 matrix applies one level everywhere, a 1x(C*K) row one level per column.
func (r *RSI) Entries(lowerBound mat.Matrix) (*timeseries.BoolMatrix, error) {
	bound, err := r.broadcastBound(lowerBound)
	if err != nil {
		return nil, err
	}
	return timeseries.Less(r.Values, bound)
}

// Exits signals RSI > upperBound, broadcast like Entries.
func (r *RSI) Exits(upperBound mat.Matrix) (*timeseries.BoolMatrix, error) {
	bound, err := r.broadcastBound(upperBound)
	if err != nil {
		return nil, err
	}
	return timeseries.Greater(r.Values, bound)
}

// EntriesBelow signals RSI < level.
func (r *RSI) EntriesBelow(level float64) (*timeseries.BoolMatrix, error) {
	return r.Entries(mat.NewDense(1, 1, []float64{level}))
}

// ExitsAbove signals RSI > level.
func (r *RSI) ExitsAbove(level float64) (*timeseries.BoolMatrix, error) {
	return r.Exits(mat.NewDense(1, 1, []float64{level}))
}

func (r *RSI) broadcastBound(bound mat.Matrix) (*mat.Dense, error) {
	if bound == nil {
		return nil, fmt.Errorf("%w: bound must not be nil", timeseries.ErrInvalidParameter)
	}
	rows, cols := r.Values.Dims()
	return timeseries.BroadcastTo(bound, rows, cols)
}

// Params returns the sweep length K.
func (r *RSI) Params() int {
	return len(r.Windows)
}

// Columns returns the asset column count C.
func (r *RSI) Columns() int {
	return r.columns
}

package indicator

import (
	"fmt"

	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Kind selects the smoothing used by the rolling statistic cache.
type Kind int

const (
	// SMA is the arithmetic mean over a trailing window.
	SMA Kind = iota
	// EMA is the exponentially weighted mean with span = window.
	EMA
)

func (k Kind) String() string {
	switch k {
	case SMA:
		return "sma"
	case EMA:
		return "ema"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// StatBundle holds the statistics computed for one window.
// Std is nil unless the cache was built with WantStd.
type StatBundle struct {
	Mean *mat.Dense
	Std  *mat.Dense
}

// CacheRequest describes a cache build. Windows may contain duplicates.
type CacheRequest struct {
	Windows    []int
	Kind       Kind
	Adjust     bool
	WantStd    bool
	MinPeriods bool
	StdDDOF    int
}

// RollingStatCache maps a window length to its statistics. Each distinct
// window is computed exactly once. A cache lives for one sweep call.
type RollingStatCache struct {
	kind    Kind
	rows    int
	cols    int
	entries map[int]StatBundle
}

// BuildRollingStatCache computes the requested statistics for every distinct
// window of req.Windows over ts.
func BuildRollingStatCache(ts *mat.Dense, req CacheRequest, parallelism int) (*RollingStatCache, error) {
	if len(req.Windows) == 0 {
		return nil, fmt.Errorf("%w: at least one window is required", timeseries.ErrInvalidParameter)
	}
	if err := validateWindows(req.Windows); err != nil {
		return nil, err
	}
	if req.Kind != SMA && req.Kind != EMA {
		return nil, fmt.Errorf("%w: unknown smoothing %s", timeseries.ErrInvalidParameter, req.Kind)
	}
	if req.StdDDOF < 0 {
		return nil, fmt.Errorf("%w: ddof must be non-negative, got %d", timeseries.ErrInvalidParameter, req.StdDDOF)
	}

	rows, cols := ts.Dims()
	distinct := uniqueWindows(req.Windows)
	bundles := make([]StatBundle, len(distinct))

	g := new(errgroup.Group)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, w := range distinct {
		i, w := i, w
		g.Go(func() error {
			bundles[i] = computeBundle(ts, w, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make(map[int]StatBundle, len(distinct))
	for i, w := range distinct {
		entries[w] = bundles[i]
	}

	kind := req.Kind.String()
	logger.RollingStatsComputed.WithLabelValues(kind).Add(float64(len(distinct)))
	logger.RollingStatsReused.WithLabelValues(kind).Add(float64(len(req.Windows) - len(distinct)))
	logger.Named("cache").Debug("Built rolling stat cache",
		logger.String("kind", kind),
		logger.Int("requested", len(req.Windows)),
		logger.Ints("distinct", distinct),
		logger.Bool("std", req.WantStd),
	)

	return &RollingStatCache{
		kind:    req.Kind,
		rows:    rows,
		cols:    cols,
		entries: entries,
	}, nil
}

func computeBundle(ts *mat.Dense, w int, req CacheRequest) StatBundle {
	rows, cols := ts.Dims()
	if w > rows {
		// Not enough history for a single full window
		b := StatBundle{Mean: timeseries.Full(rows, cols, nan)}
		if req.WantStd {
			b.Std = timeseries.Full(rows, cols, nan)
		}
		return b
	}

	var b StatBundle
	switch req.Kind {
	case EMA:
		b.Mean = timeseries.MapColumns(ts, func(col []float64) []float64 {
			return timeseries.EWMA(col, w, req.Adjust)
		})
		if req.WantStd {
			b.Std = timeseries.MapColumns(ts, func(col []float64) []float64 {
				return timeseries.EWMStd(col, w, req.Adjust)
			})
		}
	default:
		b.Mean = timeseries.MapColumns(ts, func(col []float64) []float64 {
			return timeseries.RollingMean(col, w)
		})
		if req.WantStd {
			b.Std = timeseries.MapColumns(ts, func(col []float64) []float64 {
				return timeseries.RollingStd(col, w, req.StdDDOF)
			})
		}
	}

	if req.MinPeriods {
		timeseries.SetLeadingNaN(b.Mean, w)
		if b.Std != nil {
			timeseries.SetLeadingNaN(b.Std, w)
		}
	}
	return b
}

// Get returns the statistics for window w.
func (c *RollingStatCache) Get(w int) (StatBundle, bool) {
	b, ok := c.entries[w]
	return b, ok
}

// Windows returns the cached windows in ascending order.
func (c *RollingStatCache) Windows() []int {
	out := make([]int, 0, len(c.entries))
	for w := range c.entries {
		out = append(out, w)
	}
	return uniqueWindows(out)
}

// Len returns the number of distinct windows held.
func (c *RollingStatCache) Len() int {
	return len(c.entries)
}

// Kind returns the smoothing the cache was built with.
func (c *RollingStatCache) Kind() Kind {
	return c.kind
}

// Dims returns the shape of every cached matrix.
func (c *RollingStatCache) Dims() (int, int) {
	return c.rows, c.cols
}

package signals

import (
	"fmt"
	"runtime"
	"time"

	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Options control the exit scan.
type Options struct {
	// Parallelism bounds the goroutines scanning (parameter, column) pairs.
	// 0 means runtime.GOMAXPROCS(0).
	Parallelism int

	// IsRelative interprets stops as a fraction below the entry price (stop
	// loss) or below the running peak (trailing stop) instead of a price level.
	IsRelative bool

	// OnlyFirst marks only the first breach of each armed episode.
	OnlyFirst bool
}

// DefaultOptions returns relative stops with first-breach-only exits.
func DefaultOptions() Options {
	return Options{IsRelative: true, OnlyFirst: true}
}

func (o Options) workers() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// GenerateStopLossExits returns (T, C*P) exit signals for a fixed stop loss,
// block p computed with stop parameter p. ts and entries are broadcast to a
// common (T, C) shape first.
func GenerateStopLossExits(ts mat.Matrix, entries *timeseries.BoolMatrix, stops StopSpec, opts Options) (*timeseries.BoolMatrix, error) {
	return GenerateExits(StopLoss, ts, entries, stops, opts)
}

// GenerateTrailingStopExits returns (T, C*P) exit signals for a trailing stop.
func GenerateTrailingStopExits(ts mat.Matrix, entries *timeseries.BoolMatrix, stops StopSpec, opts Options) (*timeseries.BoolMatrix, error) {
	return GenerateExits(TrailingStop, ts, entries, stops, opts)
}

// GenerateExits runs the exit scanner for rule once per stop parameter and
// concatenates the P result blocks in the order the stops were supplied.
func GenerateExits(rule Rule, ts mat.Matrix, entries *timeseries.BoolMatrix, stops StopSpec, opts Options) (*timeseries.BoolMatrix, error) {
	start := time.Now()

	price, entryMask, cube, err := prepare(rule, ts, entries, stops)
	if err != nil {
		logger.Named("scanner").Warn("Exit scan rejected",
			logger.String("rule", rule.String()),
			logger.ErrorField(err),
		)
		logger.ErrorsTotal.WithLabelValues("scanner", "validation").Inc()
		return nil, err
	}

	p, rows, cols := cube.Dims()
	prices := make([][]float64, cols)
	flags := make([][]bool, cols)
	for c := 0; c < cols; c++ {
		prices[c] = mat.Col(nil, c, price)
		flags[c] = entryMask.Col(c)
	}

	exits := timeseries.NewBoolMatrix(rows, cols*p, nil)
	g := new(errgroup.Group)
	g.SetLimit(opts.workers())
	for i := 0; i < p; i++ {
		i := i
		layer := cube.Layer(i)
		for c := 0; c < cols; c++ {
			c := c
			g.Go(func() error {
				pred := newPredicate(rule, prices[c], mat.Col(nil, c, layer), opts.IsRelative)
				for _, t := range scan(flags[c], pred, opts.OnlyFirst) {
					exits.Set(t, i*cols+c, true)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	emitted := exits.Count()
	logger.ExitSignalsTotal.WithLabelValues(rule.String()).Add(float64(emitted))
	logger.SweepDuration.WithLabelValues(rule.String()).Observe(time.Since(start).Seconds())
	logger.Named("scanner").Debug("Exit scan complete",
		logger.String("rule", rule.String()),
		logger.Int("stops", p),
		logger.Int("columns", cols),
		logger.Int("exits", emitted),
		logger.Bool("only_first", opts.OnlyFirst),
	)
	return exits, nil
}

func prepare(rule Rule, ts mat.Matrix, entries *timeseries.BoolMatrix, stops StopSpec) (*mat.Dense, *timeseries.BoolMatrix, *StopCube, error) {
	if rule != StopLoss && rule != TrailingStop {
		return nil, nil, nil, fmt.Errorf("%w: unknown exit rule %s", timeseries.ErrInvalidParameter, rule)
	}
	if d, ok := ts.(*mat.Dense); ts == nil || (ok && d == nil) || entries == nil {
		return nil, nil, nil, fmt.Errorf("%w: price and entries are required", timeseries.ErrInvalidParameter)
	}
	tr, tc := ts.Dims()
	er, ec := entries.Dims()
	if tr < 1 || tc < 1 {
		return nil, nil, nil, fmt.Errorf("%w: price matrix must not be empty", timeseries.ErrShapeMismatch)
	}
	rows, cols, err := timeseries.BroadcastShape(tr, tc, er, ec)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: price and entries: %w", timeseries.ErrInvalidParameter, err)
	}
	cube, err := BuildStopCube(stops, rows, cols)
	if err != nil {
		return nil, nil, nil, err
	}
	price, err := timeseries.BroadcastTo(ts, rows, cols)
	if err != nil {
		return nil, nil, nil, err
	}
	entryMask, err := entries.BroadcastTo(rows, cols)
	if err != nil {
		return nil, nil, nil, err
	}
	return price, entryMask, cube, nil
}

package indicator

import (
	"runtime"
)

// Options are the per-call switches shared by every indicator family.
type Options struct {
	// Parallelism bounds the number of goroutines used for cache keys and
	// sweep blocks. 0 means runtime.GOMAXPROCS(0).
	Parallelism int

	// EWM selects exponential smoothing instead of a simple rolling mean
	// (moving averages and RSI only; Bollinger bands always use SMA).
	EWM bool

	// Adjust selects the bias-corrected exponential weights.
	Adjust bool

	// MinPeriods forces rows [0, window) of every result to NaN.
	MinPeriods bool

	// StdDDOF is the delta degrees of freedom of the rolling standard
	// deviation (0 = population).
	StdDDOF int
}

// DefaultOptions returns SMA smoothing with warm-up rows masked.
func DefaultOptions() Options {
	return Options{
		MinPeriods: true,
	}
}

func (o Options) workers() int {
	if o.Parallelism > 0 {
		return o.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) kind() Kind {
	if o.EWM {
		return EMA
	}
	return SMA
}

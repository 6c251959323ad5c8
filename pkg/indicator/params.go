package indicator

import (
	"fmt"
	"math"
	"sort"

	"github.com/mohamedkhairy/signal-sweep/pkg/logger"
	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"gonum.org/v1/gonum/mat"
)

func validateSeries(ts *mat.Dense) error {
	if ts == nil || ts.IsEmpty() {
		return fmt.Errorf("%w: price matrix must not be empty", timeseries.ErrShapeMismatch)
	}
	return nil
}

// sweepLength returns the common length K that every parameter axis
// broadcasts to: each axis must have length K or 1.
func sweepLength(lengths ...int) (int, error) {
	k := 1
	for _, n := range lengths {
		if n < 1 {
			return 0, fmt.Errorf("%w: parameter array must not be empty", timeseries.ErrInvalidParameter)
		}
		if n > k {
			k = n
		}
	}
	for _, n := range lengths {
		if n != 1 && n != k {
			return 0, fmt.Errorf("%w: parameter arrays of length %v cannot be broadcast together",
				timeseries.ErrInvalidParameter, lengths)
		}
	}
	return k, nil
}

func broadcastInts(v []int, k int) []int {
	if len(v) == k {
		return append([]int(nil), v...)
	}
	out := make([]int, k)
	for i := range out {
		out[i] = v[0]
	}
	return out
}

func broadcastFloats(v []float64, k int) []float64 {
	if len(v) == k {
		return append([]float64(nil), v...)
	}
	out := make([]float64, k)
	for i := range out {
		out[i] = v[0]
	}
	return out
}

func validateWindows(windows []int) error {
	for i, w := range windows {
		if w < 1 {
			return fmt.Errorf("%w: window %d must be positive, got %d", timeseries.ErrInvalidParameter, i, w)
		}
	}
	return nil
}

// uniqueWindows returns the distinct windows in ascending order.
func uniqueWindows(windows ...[]int) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, ws := range windows {
		for _, w := range ws {
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	sort.Ints(out)
	return out
}

// WindowsFromFloat64 converts float window values to integers, rejecting
// any value that is not a positive integral number.
func WindowsFromFloat64(values []float64) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: window %d is not integral: %v", timeseries.ErrInvalidParameter, i, v)
		}
		if v < 1 || v > math.MaxInt32 {
			return nil, fmt.Errorf("%w: window %d out of range: %v", timeseries.ErrInvalidParameter, i, v)
		}
		out[i] = int(v)
	}
	return out, nil
}

// reject records a validation failure and returns it unchanged.
func reject(family string, err error) error {
	logger.Named("indicator").Warn("Sweep rejected",
		logger.String("family", family),
		logger.ErrorField(err),
	)
	logger.ErrorsTotal.WithLabelValues("indicator", "validation").Inc()
	return err
}

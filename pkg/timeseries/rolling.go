package timeseries

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Column kernels skip NaN observations: a window is averaged over the valid
// values it contains, and is NaN only when it contains none. Warm-up rows use
// the shorter window available so far; callers force NaN where needed.

// RollingMean returns the trailing mean over `window` observations.
// A running sum and count are carried forward, so the cost is O(T).
func RollingMean(col []float64, window int) []float64 {
	out := make([]float64, len(col))
	var sum float64
	n := 0
	for i, v := range col {
		if !math.IsNaN(v) {
			sum += v
			n++
		}
		if j := i - window; j >= 0 && !math.IsNaN(col[j]) {
			sum -= col[j]
			n--
		}
		if n == 0 {
			sum = 0
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(n)
	}
	return out
}

// movingMoments tracks count, mean and sum of squared deviations of a
// sliding window (Welford updates for both ends).
type movingMoments struct {
	n    int
	mean float64
	ssqd float64
}

func (m *movingMoments) add(v float64) {
	m.n++
	delta := v - m.mean
	m.mean += delta / float64(m.n)
	m.ssqd += delta * (v - m.mean)
}

func (m *movingMoments) remove(v float64) {
	m.n--
	if m.n == 0 {
		m.mean, m.ssqd = 0, 0
		return
	}
	delta := v - m.mean
	m.mean -= delta / float64(m.n)
	m.ssqd -= delta * (v - m.mean)
	if m.n == 1 {
		m.ssqd = 0
	}
}

// RollingStd returns the trailing standard deviation over `window`
// observations with `ddof` delta degrees of freedom (0 = population).
func RollingStd(col []float64, window, ddof int) []float64 {
	out := make([]float64, len(col))
	var m movingMoments
	for i, v := range col {
		if !math.IsNaN(v) {
			m.add(v)
		}
		if j := i - window; j >= 0 && !math.IsNaN(col[j]) {
			m.remove(col[j])
		}
		if m.n-ddof <= 0 {
			out[i] = math.NaN()
			continue
		}
		variance := m.ssqd / float64(m.n-ddof)
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

// ewmWeights returns alpha-derived weights for span `span`:
// alpha = 2 / (span + 1).
func ewmWeights(span int, adjust bool) (oldWtFactor, newWt float64) {
	alpha := 2 / (float64(span) + 1)
	oldWtFactor = 1 - alpha
	newWt = 1
	if !adjust {
		newWt = alpha
	}
	return oldWtFactor, newWt
}

// EWMA returns the exponentially weighted mean with span `span`. With adjust
// the weights are renormalised at every step; without it the classic
// recurrence y = (1-alpha)*y + alpha*x is used.
func EWMA(col []float64, span int, adjust bool) []float64 {
	out := make([]float64, len(col))
	if len(col) == 0 {
		return out
	}
	oldWtFactor, newWt := ewmWeights(span, adjust)

	avg := col[0]
	oldWt := 1.0
	out[0] = avg
	for i := 1; i < len(col); i++ {
		cur := col[i]
		isObs := !math.IsNaN(cur)
		if !math.IsNaN(avg) {
			oldWt *= oldWtFactor
			if isObs {
				if avg != cur {
					avg = (oldWt*avg + newWt*cur) / (oldWt + newWt)
				}
				if adjust {
					oldWt += newWt
				} else {
					oldWt = 1
				}
			}
		} else if isObs {
			avg = cur
		}
		out[i] = avg
	}
	return out
}

// EWMStd returns the bias-corrected exponentially weighted standard
// deviation with span `span`.
func EWMStd(col []float64, span int, adjust bool) []float64 {
	out := make([]float64, len(col))
	if len(col) == 0 {
		return out
	}
	oldWtFactor, newWt := ewmWeights(span, adjust)

	mean := col[0]
	var cov float64
	sumWt, sumWt2, oldWt := 1.0, 1.0, 1.0
	out[0] = unbiasedStd(cov, sumWt, sumWt2, !math.IsNaN(mean))
	nobs := 0
	if !math.IsNaN(mean) {
		nobs = 1
	}
	for i := 1; i < len(col); i++ {
		cur := col[i]
		isObs := !math.IsNaN(cur)
		if isObs {
			nobs++
		}
		if !math.IsNaN(mean) {
			sumWt *= oldWtFactor
			sumWt2 *= oldWtFactor * oldWtFactor
			oldWt *= oldWtFactor
			if isObs {
				oldMean := mean
				wtSum := oldWt + newWt
				if mean != cur {
					mean = (oldWt*oldMean + newWt*cur) / wtSum
				}
				cov = (oldWt*(cov+(oldMean-mean)*(oldMean-mean)) + newWt*(cur-mean)*(cur-mean)) / wtSum
				sumWt += newWt
				sumWt2 += newWt * newWt
				oldWt += newWt
				if !adjust {
					sumWt /= oldWt
					sumWt2 /= oldWt * oldWt
					oldWt = 1
				}
			}
		} else if isObs {
			mean = cur
		}
		out[i] = unbiasedStd(cov, sumWt, sumWt2, nobs > 0)
	}
	return out
}

func unbiasedStd(cov, sumWt, sumWt2 float64, observed bool) float64 {
	if !observed {
		return math.NaN()
	}
	numerator := sumWt * sumWt
	denominator := numerator - sumWt2
	if denominator <= 0 {
		return math.NaN()
	}
	v := numerator / denominator * cov
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// Diff returns the first difference; row 0 is NaN.
func Diff(col []float64) []float64 {
	out := make([]float64, len(col))
	if len(col) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(col); i++ {
		out[i] = col[i] - col[i-1]
	}
	return out
}

// MapColumns applies fn to every column of m and returns the assembled matrix.
// fn must return a slice of the same length as its input.
func MapColumns(m mat.Matrix, fn func(col []float64) []float64) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(rows, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		out.SetCol(j, fn(col))
	}
	return out
}

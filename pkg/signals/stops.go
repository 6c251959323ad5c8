package signals

import (
	"fmt"
	"math"

	"github.com/mohamedkhairy/signal-sweep/pkg/timeseries"
	"gonum.org/v1/gonum/mat"
)

// StopSpec is a caller-facing stop specification: a scalar, one level per
// swept parameter, or one threshold matrix per swept parameter. Build one
// with ScalarStop, StopLevels or StopMatrices.
type StopSpec struct {
	levels   []float64
	matrices []mat.Matrix
}

// ScalarStop sweeps a single stop level applied to every cell.
func ScalarStop(level float64) StopSpec {
	return StopSpec{levels: []float64{level}}
}

// StopLevels sweeps one constant stop level per parameter.
func StopLevels(levels ...float64) StopSpec {
	return StopSpec{levels: append([]float64(nil), levels...)}
}

// StopMatrices sweeps one threshold matrix per parameter. Each matrix must
// broadcast to the (T, C) shape of the price matrix, so a stop may vary over
// time and per asset.
func StopMatrices(matrices ...mat.Matrix) StopSpec {
	return StopSpec{matrices: append([]mat.Matrix(nil), matrices...)}
}

// Len returns the number of swept stop parameters P.
func (s StopSpec) Len() int {
	if s.matrices != nil {
		return len(s.matrices)
	}
	return len(s.levels)
}

// StopCube is the canonical (P, T, C) stop layout: one (T, C) threshold
// matrix per swept parameter.
type StopCube struct {
	layers []*mat.Dense
	rows   int
	cols   int
}

// BuildStopCube broadcasts spec to (P, rows, cols). All validation happens
// before any layer is allocated.
func BuildStopCube(spec StopSpec, rows, cols int) (*StopCube, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: stop cube needs a non-empty shape, got %dx%d", timeseries.ErrShapeMismatch, rows, cols)
	}
	if spec.Len() == 0 {
		return nil, fmt.Errorf("%w: at least one stop is required", timeseries.ErrInvalidParameter)
	}
	for p, level := range spec.levels {
		if math.IsNaN(level) {
			return nil, fmt.Errorf("%w: stop %d is NaN", timeseries.ErrInvalidParameter, p)
		}
	}
	for p, m := range spec.matrices {
		if m == nil {
			return nil, fmt.Errorf("%w: stop matrix %d is nil", timeseries.ErrInvalidParameter, p)
		}
		r, c := m.Dims()
		if (r != rows && r != 1) || (c != cols && c != 1) {
			return nil, fmt.Errorf("%w: stop matrix %d of shape %dx%d does not broadcast to %dx%d",
				timeseries.ErrShapeMismatch, p, r, c, rows, cols)
		}
	}

	cube := &StopCube{rows: rows, cols: cols}
	if spec.matrices != nil {
		cube.layers = make([]*mat.Dense, len(spec.matrices))
		for p, m := range spec.matrices {
			layer, err := timeseries.BroadcastTo(m, rows, cols)
			if err != nil {
				return nil, err
			}
			cube.layers[p] = layer
		}
		return cube, nil
	}
	cube.layers = make([]*mat.Dense, len(spec.levels))
	for p, level := range spec.levels {
		cube.layers[p] = timeseries.Full(rows, cols, level)
	}
	return cube, nil
}

// Dims returns (P, T, C).
func (c *StopCube) Dims() (int, int, int) {
	return len(c.layers), c.rows, c.cols
}

// Layer returns the (T, C) threshold matrix of parameter p.
func (c *StopCube) Layer(p int) *mat.Dense {
	return c.layers[p]
}

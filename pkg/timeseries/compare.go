package timeseries

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Comparisons follow IEEE semantics: any comparison involving NaN is false.

// Greater returns a > b elementwise.
func Greater(a, b mat.Matrix) (*BoolMatrix, error) {
	return compare(a, b, func(x, y float64) bool { return x > y })
}

// Less returns a < b elementwise.
func Less(a, b mat.Matrix) (*BoolMatrix, error) {
	return compare(a, b, func(x, y float64) bool { return x < y })
}

// GreaterEqual returns a >= b elementwise.
func GreaterEqual(a, b mat.Matrix) (*BoolMatrix, error) {
	return compare(a, b, func(x, y float64) bool { return x >= y })
}

// LessEqual returns a <= b elementwise.
func LessEqual(a, b mat.Matrix) (*BoolMatrix, error) {
	return compare(a, b, func(x, y float64) bool { return x <= y })
}

func compare(a, b mat.Matrix, op func(x, y float64) bool) (*BoolMatrix, error) {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		return nil, fmt.Errorf("%w: cannot compare %dx%d with %dx%d", ErrShapeMismatch, ra, ca, rb, cb)
	}
	out := NewBoolMatrix(ra, ca, nil)
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			out.data[i*ca+j] = op(a.At(i, j), b.At(i, j))
		}
	}
	return out, nil
}

package timeseries

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// NewMatrix builds a (rows, cols) price matrix from row-major data.
// NaN marks an unknown observation.
func NewMatrix(rows, cols int, data []float64) (*mat.Dense, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: matrix must be at least 1x1, got %dx%d", ErrShapeMismatch, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: expected %d values for %dx%d matrix, got %d",
			ErrShapeMismatch, rows*cols, rows, cols, len(data))
	}
	return mat.NewDense(rows, cols, append([]float64(nil), data...)), nil
}

// FromColumn promotes a (T,) vector to a single-column (T, 1) matrix.
func FromColumn(values []float64) (*mat.Dense, error) {
	return NewMatrix(len(values), 1, values)
}

// FromColumns builds a (T, C) matrix where columns[c] is the series of asset c.
func FromColumns(columns ...[]float64) (*mat.Dense, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: at least one column is required", ErrShapeMismatch)
	}
	rows := len(columns[0])
	if rows == 0 {
		return nil, fmt.Errorf("%w: columns must not be empty", ErrShapeMismatch)
	}
	m := mat.NewDense(rows, len(columns), nil)
	for j, col := range columns {
		if len(col) != rows {
			return nil, fmt.Errorf("%w: column %d has %d rows, expected %d", ErrShapeMismatch, j, len(col), rows)
		}
		m.SetCol(j, col)
	}
	return m, nil
}

// Full returns a (rows, cols) matrix with every cell set to v.
func Full(rows, cols int, v float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}

// BroadcastShape returns the common shape of two 2D shapes under the usual
// broadcasting rule: per axis the sizes must match or one of them must be 1.
func BroadcastShape(r1, c1, r2, c2 int) (int, int, error) {
	rows, ok := broadcastDim(r1, r2)
	if !ok {
		return 0, 0, fmt.Errorf("%w: cannot broadcast %dx%d with %dx%d", ErrShapeMismatch, r1, c1, r2, c2)
	}
	cols, ok := broadcastDim(c1, c2)
	if !ok {
		return 0, 0, fmt.Errorf("%w: cannot broadcast %dx%d with %dx%d", ErrShapeMismatch, r1, c1, r2, c2)
	}
	return rows, cols, nil
}

func broadcastDim(a, b int) (int, bool) {
	switch {
	case a == b:
		return a, true
	case a == 1:
		return b, true
	case b == 1:
		return a, true
	}
	return 0, false
}

// BroadcastTo stretches m to (rows, cols). The receiver is returned as is
// when it already has that shape.
func BroadcastTo(m mat.Matrix, rows, cols int) (*mat.Dense, error) {
	r, c := m.Dims()
	if r == rows && c == cols {
		if d, ok := m.(*mat.Dense); ok {
			return d, nil
		}
		return mat.DenseCopyOf(m), nil
	}
	if (r != rows && r != 1) || (c != cols && c != 1) {
		return nil, fmt.Errorf("%w: cannot broadcast %dx%d to %dx%d", ErrShapeMismatch, r, c, rows, cols)
	}
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		si := i
		if r == 1 {
			si = 0
		}
		for j := 0; j < cols; j++ {
			sj := j
			if c == 1 {
				sj = 0
			}
			out.Set(i, j, m.At(si, sj))
		}
	}
	return out, nil
}

// HStack concatenates equally tall blocks left to right. Block i occupies
// columns [i*C, (i+1)*C) of the result.
func HStack(blocks ...*mat.Dense) (*mat.Dense, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrShapeMismatch)
	}
	if len(blocks) == 1 {
		return mat.DenseCopyOf(blocks[0]), nil
	}
	rows, _ := blocks[0].Dims()
	for i, b := range blocks {
		if r, _ := b.Dims(); r != rows {
			return nil, fmt.Errorf("%w: block %d has %d rows, expected %d", ErrShapeMismatch, i, r, rows)
		}
	}
	// Augment needs an empty receiver for every pairwise step.
	var acc mat.Dense
	acc.Augment(blocks[0], blocks[1])
	for _, b := range blocks[2:] {
		var next mat.Dense
		next.Augment(&acc, b)
		acc = next
	}
	return &acc, nil
}

// Tile repeats m k times horizontally.
func Tile(m *mat.Dense, k int) (*mat.Dense, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: tile count must be at least 1, got %d", ErrInvalidParameter, k)
	}
	blocks := make([]*mat.Dense, k)
	for i := range blocks {
		blocks[i] = m
	}
	return HStack(blocks...)
}

// Block returns a copy of block i of width `width` from a stacked sweep matrix.
func Block(m *mat.Dense, i, width int) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if width < 1 || cols%width != 0 || i < 0 || (i+1)*width > cols {
		return nil, fmt.Errorf("%w: block %d of width %d out of range for %d columns", ErrShapeMismatch, i, width, cols)
	}
	return mat.DenseCopyOf(m.Slice(0, rows, i*width, (i+1)*width)), nil
}

// SetLeadingNaN overwrites the first n rows of m with NaN.
func SetLeadingNaN(m *mat.Dense, n int) {
	rows, cols := m.Dims()
	if n > rows {
		n = rows
	}
	for i := 0; i < n; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, math.NaN())
		}
	}
}

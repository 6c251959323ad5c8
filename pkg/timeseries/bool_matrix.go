package timeseries

import (
	"fmt"
)

// BoolMatrix is a dense row-major (T, C) signal matrix. true at (t, c) means
// the condition holds at time t for column c.
type BoolMatrix struct {
	rows, cols int
	data       []bool
}

// NewBoolMatrix creates a (rows, cols) signal matrix. A nil data slice
// allocates an all-false matrix; otherwise data is used as the backing store.
// It panics when data has the wrong length, like mat.NewDense.
func NewBoolMatrix(rows, cols int, data []bool) *BoolMatrix {
	if rows < 1 || cols < 1 {
		panic(fmt.Sprintf("timeseries: invalid signal matrix shape %dx%d", rows, cols))
	}
	if data == nil {
		data = make([]bool, rows*cols)
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("timeseries: signal data length %d does not match %dx%d", len(data), rows, cols))
	}
	return &BoolMatrix{rows: rows, cols: cols, data: data}
}

// BoolFromColumn promotes a (T,) signal vector to a (T, 1) matrix.
func BoolFromColumn(values []bool) (*BoolMatrix, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: signal vector must not be empty", ErrShapeMismatch)
	}
	return NewBoolMatrix(len(values), 1, append([]bool(nil), values...)), nil
}

// BoolFromColumns builds a (T, C) signal matrix from per-column vectors.
func BoolFromColumns(columns ...[]bool) (*BoolMatrix, error) {
	if len(columns) == 0 || len(columns[0]) == 0 {
		return nil, fmt.Errorf("%w: at least one non-empty column is required", ErrShapeMismatch)
	}
	rows := len(columns[0])
	m := NewBoolMatrix(rows, len(columns), nil)
	for j, col := range columns {
		if len(col) != rows {
			return nil, fmt.Errorf("%w: column %d has %d rows, expected %d", ErrShapeMismatch, j, len(col), rows)
		}
		for i, v := range col {
			m.data[i*m.cols+j] = v
		}
	}
	return m, nil
}

// Dims returns the number of rows and columns.
func (m *BoolMatrix) Dims() (int, int) {
	return m.rows, m.cols
}

// At returns the signal at (i, j).
func (m *BoolMatrix) At(i, j int) bool {
	return m.data[i*m.cols+j]
}

// Set sets the signal at (i, j).
// Distinct cells may be set concurrently.
func (m *BoolMatrix) Set(i, j int, v bool) {
	m.data[i*m.cols+j] = v
}

// Col returns a copy of column j.
func (m *BoolMatrix) Col(j int) []bool {
	out := make([]bool, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// Count returns the number of true cells.
func (m *BoolMatrix) Count() int {
	n := 0
	for _, v := range m.data {
		if v {
			n++
		}
	}
	return n
}

// Equal reports whether both matrices have the same shape and cells.
func (m *BoolMatrix) Equal(o *BoolMatrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// BroadcastTo stretches the signal matrix to (rows, cols).
func (m *BoolMatrix) BroadcastTo(rows, cols int) (*BoolMatrix, error) {
	if m.rows == rows && m.cols == cols {
		return m, nil
	}
	if (m.rows != rows && m.rows != 1) || (m.cols != cols && m.cols != 1) {
		return nil, fmt.Errorf("%w: cannot broadcast %dx%d to %dx%d", ErrShapeMismatch, m.rows, m.cols, rows, cols)
	}
	out := NewBoolMatrix(rows, cols, nil)
	for i := 0; i < rows; i++ {
		si := i
		if m.rows == 1 {
			si = 0
		}
		for j := 0; j < cols; j++ {
			sj := j
			if m.cols == 1 {
				sj = 0
			}
			out.data[i*cols+j] = m.data[si*m.cols+sj]
		}
	}
	return out, nil
}

// Block returns a copy of block i of width `width`.
func (m *BoolMatrix) Block(i, width int) (*BoolMatrix, error) {
	if width < 1 || m.cols%width != 0 || i < 0 || (i+1)*width > m.cols {
		return nil, fmt.Errorf("%w: block %d of width %d out of range for %d columns", ErrShapeMismatch, i, width, m.cols)
	}
	out := NewBoolMatrix(m.rows, width, nil)
	for r := 0; r < m.rows; r++ {
		copy(out.data[r*width:(r+1)*width], m.data[r*m.cols+i*width:r*m.cols+(i+1)*width])
	}
	return out, nil
}

// HStackBool concatenates equally tall signal blocks left to right.
func HStackBool(blocks ...*BoolMatrix) (*BoolMatrix, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrShapeMismatch)
	}
	rows := blocks[0].rows
	cols := 0
	for i, b := range blocks {
		if b.rows != rows {
			return nil, fmt.Errorf("%w: block %d has %d rows, expected %d", ErrShapeMismatch, i, b.rows, rows)
		}
		cols += b.cols
	}
	out := NewBoolMatrix(rows, cols, nil)
	offset := 0
	for _, b := range blocks {
		for r := 0; r < rows; r++ {
			copy(out.data[r*cols+offset:r*cols+offset+b.cols], b.data[r*b.cols:(r+1)*b.cols])
		}
		offset += b.cols
	}
	return out, nil
}

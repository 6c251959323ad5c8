package timeseries

import "errors"

var (
	// ErrInvalidParameter is returned for non-positive windows, empty or
	// non-integral parameter arrays and parameter arrays that cannot be
	// broadcast to a common sweep length.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrShapeMismatch is returned when two matrices expected to align
	// cannot be reconciled by broadcasting.
	ErrShapeMismatch = errors.New("shape mismatch")
)

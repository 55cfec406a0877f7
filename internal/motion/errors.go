package motion

import "errors"

var (
	// ErrInvalidConfiguration is returned when a Config cannot describe a
	// block grid (non-positive block size, negative window, unknown enum).
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrShapeMismatch is returned when two regions that must be compared
	// pixel for pixel, or the two input frames, differ in size.
	ErrShapeMismatch = errors.New("shape mismatch")
)

package trail

import (
	"errors"
	"fmt"
)

// Sentinel errors for the trail package.
var (
	// ErrReleased is returned when measuring through a path handle that has
	// been evicted from its sampler or disposed.
	ErrReleased = errors.New("trail: path handle released")

	// ErrEmptyPath is returned when measuring a path without segments.
	ErrEmptyPath = errors.New("trail: empty path")

	// ErrEmptyTable is returned when locating a point in an empty sample table.
	ErrEmptyTable = errors.New("trail: empty sample table")

	// ErrInvalidDistance is returned for NaN or infinite arc-length queries.
	ErrInvalidDistance = errors.New("trail: invalid distance")

	// ErrTooManySteps is returned when a stride is too small for the
	// distance to be walked.
	ErrTooManySteps = errors.New("trail: stride too small for distance")

	// ErrSyntax is wrapped by every path description parse error.
	ErrSyntax = errors.New("trail: invalid path description")
)

// SyntaxError reports where a serialized path description failed to parse.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("trail: invalid path description at offset %d: %s", e.Offset, e.Msg)
}

// Unwrap lets errors.Is match ErrSyntax.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

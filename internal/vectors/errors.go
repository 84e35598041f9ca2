package vectors

import "errors"

// Domain errors for named-vector configuration and slicing.
var (
	// ErrUnknownField indicates a lookup of a field name absent from a configuration.
	ErrUnknownField = errors.New("vectors: unknown field name")

	// ErrDimensionMismatch indicates a vector or declared attribute whose length
	// does not match the configured dimension.
	ErrDimensionMismatch = errors.New("vectors: dimension mismatch")
)

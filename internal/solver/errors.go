package solver

import (
	"errors"
	"fmt"
	"time"
)

// ErrSolverFailure indicates the backend stopped without a converged
// solution. Failures carry diagnostics and are reported as-is; the caller
// decides whether to retry or reformulate.
var ErrSolverFailure = errors.New("solver: no converged solution")

// FailureError wraps a failed solve with the backend's diagnostics.
type FailureError struct {
	Status  string
	Runtime time.Duration
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("solver failed after %v: %s", e.Runtime, e.Status)
}

func (e *FailureError) Unwrap() error { return ErrSolverFailure }

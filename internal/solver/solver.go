// Package solver wraps nonlinear programming backends behind a small
// problem/result surface. Objectives and constraints are plain numeric
// callbacks; gradients are supplied by finite differences inside the adapter.
package solver

import "time"

// Problem is a general NLP: minimize Objective subject to every EqCons
// residual being zero and box bounds on the decision vector. Bounds entries
// may be +-Inf for free variables.
type Problem struct {
	N         int
	Objective func(x []float64) float64
	EqCons    []func(x []float64) float64
	Lower     []float64
	Upper     []float64
}

// Options tune a solve. Zero values select the backend defaults.
type Options struct {
	Accuracy      float64
	MaxIterations int
	Verbose       bool
}

// Result is the outcome of a successful solve.
type Result struct {
	X         []float64
	Objective float64
	Status    string
	Runtime   time.Duration
}

// Solver runs an NLP from a warm-start point.
type Solver interface {
	Solve(p Problem, x0 []float64, opts Options) (Result, error)
}

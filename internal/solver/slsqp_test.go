package solver

import (
	"errors"
	"math"
	"testing"
)

func TestEqualityConstrainedQP(t *testing.T) {
	// minimize (x0-1)^2 + (x1-2)^2 subject to x0 + x1 = 2.
	// Analytic solution: (0.5, 1.5).
	p := Problem{
		N: 2,
		Objective: func(x []float64) float64 {
			return (x[0]-1)*(x[0]-1) + (x[1]-2)*(x[1]-2)
		},
		EqCons: []func(x []float64) float64{
			func(x []float64) float64 { return x[0] + x[1] - 2 },
		},
	}

	res, err := NewSLSQP().Solve(p, []float64{0, 0}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.X[0]-0.5) > 1e-4 || math.Abs(res.X[1]-1.5) > 1e-4 {
		t.Errorf("x = %v, want (0.5, 1.5)", res.X)
	}
	if res.Runtime <= 0 {
		t.Error("runtime not recorded")
	}
	if math.Abs(res.X[0]+res.X[1]-2) > 1e-6 {
		t.Errorf("constraint violated: %v", res.X[0]+res.X[1]-2)
	}
}

func TestBoundsAreRespected(t *testing.T) {
	// Unconstrained minimum at x = 3; the box stops at 1.
	p := Problem{
		N:         1,
		Objective: func(x []float64) float64 { return (x[0] - 3) * (x[0] - 3) },
		Lower:     []float64{-1},
		Upper:     []float64{1},
	}

	res, err := NewSLSQP().Solve(p, []float64{0}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.X[0]-1) > 1e-4 {
		t.Errorf("x = %v, want 1", res.X[0])
	}
}

func TestWarmStartNotMutated(t *testing.T) {
	p := Problem{
		N:         1,
		Objective: func(x []float64) float64 { return x[0] * x[0] },
	}
	x0 := []float64{5}
	if _, err := NewSLSQP().Solve(p, x0, Options{}); err != nil {
		t.Fatal(err)
	}
	if x0[0] != 5 {
		t.Errorf("warm start mutated: %v", x0[0])
	}
}

func TestInfeasibleProblemFails(t *testing.T) {
	// x0 = 0 and x0 = 1 cannot hold at once; the backend must report a
	// failure status, not converge.
	p := Problem{
		N:         2,
		Objective: func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] },
		EqCons: []func(x []float64) float64{
			func(x []float64) float64 { return x[0] },
			func(x []float64) float64 { return x[0] - 1 },
		},
	}

	_, err := NewSLSQP().Solve(p, []float64{0.5, 0}, Options{MaxIterations: 50})
	if !errors.Is(err, ErrSolverFailure) {
		t.Fatalf("got %v, want ErrSolverFailure", err)
	}
	var fe *FailureError
	if !errors.As(err, &fe) || fe.Status == "" {
		t.Error("failure diagnostics missing")
	}
}

func TestOverdeterminedConstraintsRejected(t *testing.T) {
	// More equality constraints than variables is rejected at setup, before
	// any iteration runs.
	p := Problem{
		N:         1,
		Objective: func(x []float64) float64 { return x[0] * x[0] },
		EqCons: []func(x []float64) float64{
			func(x []float64) float64 { return x[0] },
			func(x []float64) float64 { return x[0] - 1 },
		},
	}

	_, err := NewSLSQP().Solve(p, []float64{0}, Options{})
	if err == nil {
		t.Fatal("expected setup error")
	}
	if errors.Is(err, ErrSolverFailure) {
		t.Errorf("setup rejection should not be a solver failure: %v", err)
	}
}

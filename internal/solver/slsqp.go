package solver

import (
	"fmt"
	"math"
	"time"

	"github.com/curioloop/optimizer/slsqp"
	"gonum.org/v1/gonum/diff/fd"
)

const (
	defaultAccuracy = 1e-6
	defaultMaxIter  = 100

	// bndInf marks unbounded variables for the backend.
	bndInf = 1e20
)

// SLSQP solves NLPs by sequential least-squares quadratic programming.
// Gradients of the objective and every constraint are computed by forward
// finite differences.
type SLSQP struct{}

// NewSLSQP returns the SQP backend.
func NewSLSQP() *SLSQP { return &SLSQP{} }

func withGradient(f func(x []float64) float64) slsqp.Evaluation {
	return func(x, grad []float64) float64 {
		if grad != nil {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Forward})
		}
		return f(x)
	}
}

// Solve runs SLSQP from x0. The warm-start vector is not mutated.
func (s *SLSQP) Solve(p Problem, x0 []float64, opts Options) (Result, error) {
	if opts.Accuracy == 0 {
		opts.Accuracy = defaultAccuracy
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = defaultMaxIter
	}

	bounds := make([]slsqp.Bound, p.N)
	for i := range bounds {
		lo, hi := math.Inf(-1), math.Inf(1)
		if p.Lower != nil {
			lo = p.Lower[i]
		}
		if p.Upper != nil {
			hi = p.Upper[i]
		}
		if math.IsInf(lo, -1) {
			lo = -bndInf
		}
		if math.IsInf(hi, 1) {
			hi = bndInf
		}
		bounds[i] = slsqp.Bound{Lower: lo, Upper: hi}
	}

	eqs := make([]slsqp.Evaluation, len(p.EqCons))
	for i, c := range p.EqCons {
		eqs[i] = withGradient(c)
	}

	prob := slsqp.Problem{
		N:      p.N,
		Object: withGradient(p.Objective),
		EqCons: eqs,
		Bounds: bounds,
		BndInf: bndInf,
		Stop:   slsqp.Termination{Accuracy: opts.Accuracy, MaxIterations: opts.MaxIterations},
		Line:   slsqp.LineSearch{Alpha: &slsqp.Bound{Lower: 0.1, Upper: 1.0}},
	}

	opt, err := prob.New()
	if err != nil {
		return Result{}, fmt.Errorf("slsqp setup: %w", err)
	}

	x := make([]float64, len(x0))
	copy(x, x0)

	start := time.Now()
	res := opt.Fit(x, opt.Init())
	elapsed := time.Since(start)

	var text string
	switch res.Summary.Status {
	case slsqp.OK, slsqp.HasSolution:
		text = "converged"
	case slsqp.SQPExceedMaxIter:
		text = "iteration limit reached"
	case slsqp.ConsIncompatible:
		text = "constraints incompatible"
	case slsqp.SearchNotDescent:
		text = "no descent direction"
	case slsqp.BadArgument:
		text = "bad argument or evaluation failure"
	default:
		text = fmt.Sprintf("backend status %d", res.Summary.Status)
	}
	text = fmt.Sprintf("%s after %d iterations", text, res.Summary.NumIter)
	if opts.Verbose {
		fmt.Printf("slsqp: %s (%v)\n", text, elapsed)
	}

	if !res.OK {
		return Result{X: res.X, Status: text, Runtime: elapsed}, &FailureError{Status: text, Runtime: elapsed}
	}
	return Result{
		X:         res.X,
		Objective: res.F,
		Status:    text,
		Runtime:   elapsed,
	}, nil
}

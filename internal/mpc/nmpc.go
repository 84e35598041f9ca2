// Package mpc implements nonlinear model predictive control by multiple
// shooting: every shooting-node state and every stage input is a decision
// variable, coupled by dynamics equality constraints, and the resulting NLP
// is handed to an external solver.
package mpc

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/r-mohan/quadnmpc/internal/dynamics"
	"github.com/r-mohan/quadnmpc/internal/solver"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// Request is one receding-horizon solve. X0 and the references are required;
// every other field falls back to the controller's defaults when nil.
type Request struct {
	X0   []float64
	XRef vectors.VectorList
	URef vectors.VectorList

	// Theta overrides the model's own parameter vector for this solve.
	Theta []float64

	// Per-stage box constraints.
	LbX, UbX []float64
	LbU, UbU []float64

	// Warm-start trajectories. UGuess defaults to the previous accepted
	// solution, XGuess to N copies of X0.
	XGuess, UGuess vectors.VectorList
}

// Solution is the accepted NLP solution in interleaved layout
// [x0, u0, x1, u1, ..., xN].
type Solution struct {
	Decision  []float64
	Objective float64
	Status    string
	SolveTime time.Duration
}

// NMPC is a receding-horizon controller over a dynamics model. It is safe
// for concurrent use; solves are serialized.
type NMPC struct {
	mu sync.Mutex

	dt      float64
	horizon int
	weights Weights
	// terminal penalty applied on top of the stage cost of the last node
	qfMinusQ *mat.Dense

	model   dynamics.Model
	backend solver.Solver
	opts    solver.Options

	lbx, ubx []float64

	lastInputs vectors.VectorList
	last       *Solution
}

// New builds a controller with step dt and horizon n. A nil backend selects
// SLSQP.
func New(dt float64, n int, w Weights, model dynamics.Model, backend solver.Solver, opts solver.Options) (*NMPC, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("mpc: dt must be positive, got %v", dt)
	}
	if n < 1 {
		return nil, fmt.Errorf("mpc: horizon must be >= 1, got %d", n)
	}
	if err := w.validate(model.NX(), model.NU()); err != nil {
		return nil, err
	}
	if backend == nil {
		backend = solver.NewSLSQP()
	}

	var qfMinusQ mat.Dense
	qfMinusQ.Sub(w.Qf, w.Q)

	return &NMPC{
		dt:         dt,
		horizon:    n,
		weights:    w,
		qfMinusQ:   &qfMinusQ,
		model:      model,
		backend:    backend,
		opts:       opts,
		lbx:        model.StateConfig().LowerBounds(),
		ubx:        model.StateConfig().UpperBounds(),
		lastInputs: vectors.Zeros(model.NU(), n),
	}, nil
}

// Horizon returns the number of shooting intervals.
func (c *NMPC) Horizon() int { return c.horizon }

// Model returns the prediction model.
func (c *NMPC) Model() dynamics.Model { return c.model }

// Solve runs one NLP solve. On success the predicted inputs become the next
// warm start; failures leave the warm start untouched and surface the
// backend diagnostics unchanged.
func (c *NMPC) Solve(req Request) (*Solution, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	nx, nu, n := c.model.NX(), c.model.NU(), c.horizon
	if len(req.XRef) != n || len(req.URef) != n {
		return nil, fmt.Errorf("got %d state and %d input references, want %d: %w",
			len(req.XRef), len(req.URef), n, ErrHorizonMismatch)
	}
	if len(req.X0) != nx {
		return nil, fmt.Errorf("initial state length %d != nx %d: %w",
			len(req.X0), nx, vectors.ErrDimensionMismatch)
	}
	for k := 0; k < n; k++ {
		if len(req.XRef[k]) != nx || len(req.URef[k]) != nu {
			return nil, fmt.Errorf("reference %d has lengths (%d, %d), want (%d, %d): %w",
				k, len(req.XRef[k]), len(req.URef[k]), nx, nu, vectors.ErrDimensionMismatch)
		}
	}

	theta := req.Theta
	if theta == nil {
		theta = c.model.DefaultParameterVector()
	}
	lbx, ubx := req.LbX, req.UbX
	if lbx == nil {
		lbx = c.lbx
	}
	if ubx == nil {
		ubx = c.ubx
	}
	lbu, ubu := req.LbU, req.UbU
	if lbu == nil {
		lbu = c.model.LowerInputBound()
	}
	if ubu == nil {
		ubu = c.model.UpperInputBound()
	}
	uGuess := req.UGuess
	if uGuess == nil {
		uGuess = c.lastInputs
	}
	xGuess := req.XGuess
	if xGuess == nil {
		xGuess = vectors.Repeat(req.X0, n)
	}

	stride := nx + nu
	nd := nx + n*stride

	prob := solver.Problem{
		N:         nd,
		Objective: c.objective(req.XRef, req.URef),
		EqCons:    c.shootingConstraints(theta),
		Lower:     make([]float64, nd),
		Upper:     make([]float64, nd),
	}

	// The initial state is pinned by collapsing its box to a point.
	copy(prob.Lower[:nx], req.X0)
	copy(prob.Upper[:nx], req.X0)
	guess := make([]float64, 0, nd)
	guess = append(guess, req.X0...)
	for k := 0; k < n; k++ {
		off := nx + k*stride
		copy(prob.Lower[off:], lbu)
		copy(prob.Upper[off:], ubu)
		copy(prob.Lower[off+nu:], lbx)
		copy(prob.Upper[off+nu:], ubx)
		guess = append(guess, uGuess.Get(k)...)
		guess = append(guess, xGuess.Get(k)...)
	}

	res, err := c.backend.Solve(prob, guess, c.opts)
	if err != nil {
		return nil, err
	}

	sol := &Solution{
		Decision:  res.X,
		Objective: res.Objective,
		Status:    res.Status,
		SolveTime: res.Runtime,
	}
	c.last = sol
	c.lastInputs = extractInputs(res.X, nx, nu, n)
	return sol, nil
}

// objective sums the stage costs over every predicted node, with the extra
// terminal penalty folded onto the last one.
func (c *NMPC) objective(xref, uref vectors.VectorList) func(d []float64) float64 {
	nx, nu, n := c.model.NX(), c.model.NU(), c.horizon
	stride := nx + nu
	return func(d []float64) float64 {
		cost := 0.0
		for k := 0; k < n; k++ {
			uk := d[k*stride+nx : (k+1)*stride]
			xk1 := d[(k+1)*stride : (k+1)*stride+nx]
			cost += quadForm(c.weights.Q, xk1, xref[k])
			cost += quadForm(c.weights.R, uk, uref[k])
		}
		xn := d[n*stride : n*stride+nx]
		cost += quadForm(c.qfMinusQ, xn, xref[n-1])
		return cost
	}
}

// stagePredictor caches one RK4 prediction per shooting interval so the nx
// scalar residuals of a stage reuse a single integration.
type stagePredictor struct {
	model dynamics.Model
	dt    float64
	theta []float64

	k, stride, nx int
	in            []float64
	out           []float64
}

func (s *stagePredictor) residual(d []float64, i int) float64 {
	off := s.k * s.stride
	point := d[off : off+s.stride]
	if s.out == nil || !floats.Equal(s.in, point) {
		if s.in == nil {
			s.in = make([]float64, s.stride)
		}
		copy(s.in, point)
		xf, err := s.model.F(s.dt, point[:s.nx], point[s.nx:], nil, s.theta)
		if err != nil {
			// Dimensions are validated before the solve starts.
			panic(err)
		}
		s.out = xf
	}
	return s.out[i] - d[(s.k+1)*s.stride+i]
}

// shootingConstraints builds the dynamics equality residuals
// F(x_k, u_k) - x_{k+1} = 0 for every interval.
func (c *NMPC) shootingConstraints(theta []float64) []func(d []float64) float64 {
	nx, nu, n := c.model.NX(), c.model.NU(), c.horizon
	cons := make([]func(d []float64) float64, 0, n*nx)
	for k := 0; k < n; k++ {
		pred := &stagePredictor{
			model:  c.model,
			dt:     c.dt,
			theta:  theta,
			k:      k,
			stride: nx + nu,
			nx:     nx,
		}
		for i := 0; i < nx; i++ {
			i := i
			cons = append(cons, func(d []float64) float64 {
				return pred.residual(d, i)
			})
		}
	}
	return cons
}

// PredictedStates returns x_1 ... x_N of the last accepted solution.
func (c *NMPC) PredictedStates() vectors.VectorList {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	return extractStates(c.last.Decision, c.model.NX(), c.model.NU(), c.horizon)
}

// PredictedInputs returns u_0 ... u_{N-1} of the last accepted solution.
func (c *NMPC) PredictedInputs() vectors.VectorList {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	return extractInputs(c.last.Decision, c.model.NX(), c.model.NU(), c.horizon)
}

func extractStates(d []float64, nx, nu, n int) vectors.VectorList {
	stride := nx + nu
	out := make(vectors.VectorList, 0, n)
	for k := 1; k <= n; k++ {
		x := make([]float64, nx)
		copy(x, d[k*stride:k*stride+nx])
		out = append(out, x)
	}
	return out
}

func extractInputs(d []float64, nx, nu, n int) vectors.VectorList {
	stride := nx + nu
	out := make(vectors.VectorList, 0, n)
	for k := 0; k < n; k++ {
		u := make([]float64, nu)
		copy(u, d[k*stride+nx:(k+1)*stride])
		out = append(out, u)
	}
	return out
}

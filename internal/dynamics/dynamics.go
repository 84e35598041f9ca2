// Package dynamics provides continuous-time rigid-body vector fields for a
// quadrotor and fixed-step integration of them.
package dynamics

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// Gravity is the standard gravitational acceleration, m/s^2.
const Gravity = 9.81

// ErrNoDynamics indicates that a model has no compiled continuous-time
// vector field.
var ErrNoDynamics = errors.New("dynamics: model has no continuous-time dynamics")

// VectorField evaluates the continuous-time derivative xdot = f(x, u, w, theta).
// All arguments are fully assembled numeric vectors of the model's dimensions.
type VectorField func(x, u, w, theta []float64) []float64

// Model is a dynamics model over a named state configuration. The vector
// field is compiled once at construction and immutable afterwards; the
// parameter set may be swapped between solves.
type Model interface {
	NX() int
	NU() int
	NW() int
	NTheta() int

	// Cont evaluates the continuous vector field. Nil w and theta default to
	// zero noise and the model's own parameter vector. Inputs are not clamped
	// here: when the field is embedded in an NLP, actuator bounds are imposed
	// as box constraints instead.
	Cont(x, u, w, theta []float64) ([]float64, error)

	// F takes one RK4 step of length dt and renormalizes the attitude block.
	F(dt float64, x, u, w, theta []float64) ([]float64, error)

	// FEuler is the forward-Euler variant of F. Lower fidelity, not the default.
	FEuler(dt float64, x, u, w, theta []float64) ([]float64, error)

	// Step is the simulation entry point: it clips u to the actuator bounds
	// before stepping with the model's own parameters.
	Step(dt float64, x, u, w []float64) ([]float64, error)

	LowerInputBound() []float64
	UpperInputBound() []float64

	Parameters() vectors.ModelParameters
	SetParameters(p vectors.ModelParameters)

	// DefaultParameterVector returns the ordered parameter vector this model
	// variant consumes (raw for the nonlinear model, relaxed for the affine one).
	DefaultParameterVector() []float64

	StateConfig() *vectors.Config
	InputConfig() *vectors.Config
}

// base carries the pieces every model shares. Concrete models install their
// compiled field and a method value producing their default parameter vector.
type base struct {
	f        VectorField
	params   vectors.ModelParameters
	lbu, ubu []float64
	stateCfg *vectors.Config
	inputCfg *vectors.Config
	ntheta   int

	// defaultTheta is the concrete model's DefaultParameterVector.
	defaultTheta func() []float64
}

func (m *base) NX() int     { return m.stateCfg.Dim() }
func (m *base) NU() int     { return m.inputCfg.Dim() }
func (m *base) NW() int     { return m.stateCfg.Dim() }
func (m *base) NTheta() int { return m.ntheta }

func (m *base) LowerInputBound() []float64 { return m.lbu }
func (m *base) UpperInputBound() []float64 { return m.ubu }

func (m *base) Parameters() vectors.ModelParameters     { return m.params }
func (m *base) SetParameters(p vectors.ModelParameters) { m.params = p }

func (m *base) StateConfig() *vectors.Config { return m.stateCfg }
func (m *base) InputConfig() *vectors.Config { return m.inputCfg }

func (m *base) Cont(x, u, w, theta []float64) ([]float64, error) {
	if m.f == nil {
		return nil, ErrNoDynamics
	}
	if len(x) != m.NX() {
		return nil, fmt.Errorf("state length %d != nx %d: %w", len(x), m.NX(), vectors.ErrDimensionMismatch)
	}
	if len(u) != m.NU() {
		return nil, fmt.Errorf("input length %d != nu %d: %w", len(u), m.NU(), vectors.ErrDimensionMismatch)
	}
	if w == nil {
		w = make([]float64, m.NW())
	} else if len(w) != m.NW() {
		return nil, fmt.Errorf("noise length %d != nw %d: %w", len(w), m.NW(), vectors.ErrDimensionMismatch)
	}
	if theta == nil {
		theta = m.defaultTheta()
	} else if len(theta) != m.ntheta {
		return nil, fmt.Errorf("parameter length %d != ntheta %d: %w", len(theta), m.ntheta, vectors.ErrDimensionMismatch)
	}
	return m.f(x, u, w, theta), nil
}

// F integrates one step with the classical 4-stage Runge-Kutta scheme and
// renormalizes the attitude quaternion of the result. Intermediate stages are
// left unnormalized.
func (m *base) F(dt float64, x, u, w, theta []float64) ([]float64, error) {
	n := m.NX()

	k1, err := m.Cont(x, u, w, theta)
	if err != nil {
		return nil, err
	}
	stage := make([]float64, n)

	copy(stage, x)
	floats.AddScaled(stage, dt/2, k1)
	k2, err := m.Cont(stage, u, w, theta)
	if err != nil {
		return nil, err
	}

	copy(stage, x)
	floats.AddScaled(stage, dt/2, k2)
	k3, err := m.Cont(stage, u, w, theta)
	if err != nil {
		return nil, err
	}

	copy(stage, x)
	floats.AddScaled(stage, dt, k3)
	k4, err := m.Cont(stage, u, w, theta)
	if err != nil {
		return nil, err
	}

	xf := make([]float64, n)
	copy(xf, x)
	floats.AddScaled(xf, dt/6, k1)
	floats.AddScaled(xf, dt/3, k2)
	floats.AddScaled(xf, dt/3, k3)
	floats.AddScaled(xf, dt/6, k4)

	m.renormalizeAttitude(xf)
	return xf, nil
}

// FEuler integrates one forward-Euler step and renormalizes the attitude.
func (m *base) FEuler(dt float64, x, u, w, theta []float64) ([]float64, error) {
	k, err := m.Cont(x, u, w, theta)
	if err != nil {
		return nil, err
	}
	xf := make([]float64, m.NX())
	copy(xf, x)
	floats.AddScaled(xf, dt, k)
	m.renormalizeAttitude(xf)
	return xf, nil
}

func (m *base) Step(dt float64, x, u, w []float64) ([]float64, error) {
	if len(u) != m.NU() {
		return nil, fmt.Errorf("input length %d != nu %d: %w", len(u), m.NU(), vectors.ErrDimensionMismatch)
	}
	clamped := make([]float64, len(u))
	for i, v := range u {
		clamped[i] = clamp(v, m.lbu[i], m.ubu[i])
	}
	return m.F(dt, x, clamped, w, nil)
}

func (m *base) renormalizeAttitude(x []float64) {
	if !m.stateCfg.Has(vectors.FieldAttitude) {
		return
	}
	q, err := m.stateCfg.Sub(vectors.FieldAttitude, x)
	if err != nil {
		return
	}
	norm := floats.Norm(q, 2)
	if norm == 0 {
		return
	}
	for i := range q {
		q[i] /= norm
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func cross(a, b []float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

package mpc

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// Weights are the quadratic tracking penalties: Q on every predicted state,
// R on every input, Qf on the terminal state.
type Weights struct {
	Q  *mat.Dense
	R  *mat.Dense
	Qf *mat.Dense
}

// DiagWeights builds the weight set from diagonal entries.
func DiagWeights(q, r, qf []float64) Weights {
	return Weights{Q: diag(q), R: diag(r), Qf: diag(qf)}
}

func diag(v []float64) *mat.Dense {
	d := mat.NewDense(len(v), len(v), nil)
	for i, x := range v {
		d.Set(i, i, x)
	}
	return d
}

func (w Weights) validate(nx, nu int) error {
	check := func(name string, m *mat.Dense, dim int) error {
		if m == nil {
			return fmt.Errorf("weight %s missing: %w", name, vectors.ErrDimensionMismatch)
		}
		r, c := m.Dims()
		if r != dim || c != dim {
			return fmt.Errorf("weight %s is %dx%d, want %dx%d: %w",
				name, r, c, dim, dim, vectors.ErrDimensionMismatch)
		}
		return nil
	}
	if err := check("Q", w.Q, nx); err != nil {
		return err
	}
	if err := check("R", w.R, nu); err != nil {
		return err
	}
	return check("Qf", w.Qf, nx)
}

// quadForm computes (v - ref)^T M (v - ref).
func quadForm(m *mat.Dense, v, ref []float64) float64 {
	n := len(v)
	sum := 0.0
	for i := 0; i < n; i++ {
		ei := v[i] - ref[i]
		if ei == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			mij := m.At(i, j)
			if mij == 0 {
				continue
			}
			sum += ei * mij * (v[j] - ref[j])
		}
	}
	return sum
}

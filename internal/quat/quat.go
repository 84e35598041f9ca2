// Package quat builds the operator matrices of unit-quaternion kinematics.
// Quaternions are ordered (w, x, y, z) and represent body-to-world attitude.
package quat

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// H embeds a 3-vector as a pure quaternion: top row zero, identity below.
func H() *mat.Dense {
	return mat.NewDense(4, 3, []float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// Skew returns the 3x3 cross-product matrix of v.
func Skew(v []float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v[2], v[1],
		v[2], 0, -v[0],
		-v[1], v[0], 0,
	})
}

func lOrR(q []float64, sign float64) *mat.Dense {
	w, v := q[0], q[1:4]
	m := mat.NewDense(4, 4, nil)
	m.Set(0, 0, w)
	for i := 0; i < 3; i++ {
		m.Set(0, i+1, -v[i])
		m.Set(i+1, 0, v[i])
	}
	var block mat.Dense
	block.Scale(sign, Skew(v))
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d := 0.0
			if i == j {
				d = w
			}
			m.Set(i+1, j+1, d+block.At(i, j))
		}
	}
	return m
}

// L returns the 4x4 left-multiplication operator of q.
func L(q []float64) *mat.Dense { return lOrR(q, 1) }

// R returns the 4x4 right-multiplication operator of q. It differs from L
// only by the sign of the skew term.
func R(q []float64) *mat.Dense { return lOrR(q, -1) }

// G maps a body angular velocity to the quaternion derivative: G(q) = L(q)*H.
func G(q []float64) *mat.Dense {
	var g mat.Dense
	g.Mul(L(q), H())
	return &g
}

// Rot returns the body-to-world rotation matrix H^T * R(q)^T * L(q) * H.
func Rot(q []float64) *mat.Dense {
	h := H()
	var rl, rlh, out mat.Dense
	rl.Mul(R(q).T(), L(q))
	rlh.Mul(&rl, h)
	out.Mul(h.T(), &rlh)
	return &out
}

// RandomUnit draws a uniformly scaled random quaternion and normalizes it.
func RandomUnit(rng *rand.Rand) []float64 {
	q := make([]float64, 4)
	norm := 0.0
	for i := range q {
		q[i] = 2.0*rng.Float64() - 1.0
		norm += q[i] * q[i]
	}
	norm = math.Sqrt(norm)
	for i := range q {
		q[i] /= norm
	}
	return q
}

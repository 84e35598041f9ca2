package quat

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRotOrthogonal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		q := RandomUnit(rng)
		rot := Rot(q)

		var prod mat.Dense
		prod.Mul(rot.T(), rot)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				want := 0.0
				if r == c {
					want = 1.0
				}
				if math.Abs(prod.At(r, c)-want) > 1e-12 {
					t.Fatalf("R^T R not identity at (%d,%d): %v", r, c, prod.At(r, c))
				}
			}
		}

		if det := mat.Det(rot); math.Abs(det-1.0) > 1e-12 {
			t.Fatalf("det = %v, want 1", det)
		}
	}
}

func TestRotMatchesStandardFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		q := RandomUnit(rng)
		w, x, y, z := q[0], q[1], q[2], q[3]
		want := [9]float64{
			1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
			2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
			2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
		}
		rot := Rot(q)
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				if math.Abs(rot.At(r, c)-want[3*r+c]) > 1e-12 {
					t.Fatalf("Rot(%v) mismatch at (%d,%d): got %v want %v",
						q, r, c, rot.At(r, c), want[3*r+c])
				}
			}
		}
	}
}

func TestIdentityQuaternion(t *testing.T) {
	q := []float64{1, 0, 0, 0}

	rot := Rot(q)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := 0.0
			if r == c {
				want = 1.0
			}
			if rot.At(r, c) != want {
				t.Errorf("Rot(identity) at (%d,%d) = %v", r, c, rot.At(r, c))
			}
		}
	}

	// L and R of the identity are both the 4x4 identity.
	l, r := L(q), R(q)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if l.At(i, j) != want || r.At(i, j) != want {
				t.Fatalf("L/R of identity not identity at (%d,%d)", i, j)
			}
		}
	}
}

func TestGDimensions(t *testing.T) {
	q := []float64{1, 0, 0, 0}
	g := G(q)
	rows, cols := g.Dims()
	if rows != 4 || cols != 3 {
		t.Fatalf("G shape = %dx%d, want 4x3", rows, cols)
	}
	// For the identity quaternion G is exactly H.
	h := H()
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			if g.At(i, j) != h.At(i, j) {
				t.Errorf("G(identity) != H at (%d,%d)", i, j)
			}
		}
	}
}

func TestSkewAntisymmetric(t *testing.T) {
	s := Skew([]float64{1, 2, 3})
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if s.At(i, j) != -s.At(j, i) {
				t.Fatalf("skew not antisymmetric at (%d,%d)", i, j)
			}
		}
	}
}

func TestRandomUnitHasUnitNorm(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10; i++ {
		q := RandomUnit(rng)
		n := 0.0
		for _, v := range q {
			n += v * v
		}
		if math.Abs(math.Sqrt(n)-1.0) > 1e-12 {
			t.Fatalf("norm = %v", math.Sqrt(n))
		}
	}
}

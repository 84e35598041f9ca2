package dynamics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/r-mohan/quadnmpc/internal/quat"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// KoopmanQuadrotor propagates the lifted state with linear dynamics
//
//	zdot = A z + B u + w
//
// where z stacks four truncated derivative chains (position, linear velocity,
// body-frame gravity, angular velocity). A is the parameter-free shift across
// chain orders; B couples the motors into the zero-order velocity block and
// the inverse-inertia-scaled torque blocks of the angular chain.
type KoopmanQuadrotor struct {
	base
	order int
	a     *mat.Dense
}

// NewKoopmanQuadrotor compiles the lifted model of the given observable order.
func NewKoopmanQuadrotor(params vectors.ModelParameters, order int, lbu, ubu []float64) *KoopmanQuadrotor {
	if order < 1 {
		panic(fmt.Sprintf("dynamics: koopman order must be >= 1, got %d", order))
	}
	stateCfg := vectors.LiftedConfig(order)
	inputCfg := vectors.InputConfig()
	if lbu == nil {
		lbu = inputCfg.LowerBounds()
	}
	if ubu == nil {
		ubu = inputCfg.UpperBounds()
	}
	m := &KoopmanQuadrotor{
		base: base{
			params:   params,
			lbu:      lbu,
			ubu:      ubu,
			stateCfg: stateCfg,
			inputCfg: inputCfg,
			ntheta:   vectors.ParameterConfig().Dim(),
		},
		order: order,
		a:     liftedStateMatrix(order),
	}
	m.defaultTheta = m.DefaultParameterVector
	m.f = func(x, u, w, theta []float64) []float64 {
		xdot := make([]float64, len(x))
		copy(xdot, w)

		var az mat.VecDense
		az.MulVec(m.a, mat.NewVecDense(len(x), x))
		var bu mat.VecDense
		bu.MulVec(liftedInputMatrix(theta, order), mat.NewVecDense(len(u), u))
		for i := range xdot {
			xdot[i] += az.AtVec(i) + bu.AtVec(i)
		}
		return xdot
	}
	return m
}

// Order returns the observable order of the lifted state.
func (m *KoopmanQuadrotor) Order() int { return m.order }

// DefaultParameterVector emits the raw parameters in schema order.
func (m *KoopmanQuadrotor) DefaultParameterVector() []float64 {
	return m.params.Vector()
}

// StateMatrix returns the compiled lifted state matrix A.
func (m *KoopmanQuadrotor) StateMatrix() *mat.Dense { return m.a }

// InputMatrix assembles B for the model's own parameters.
func (m *KoopmanQuadrotor) InputMatrix() *mat.Dense {
	return liftedInputMatrix(m.params.Vector(), m.order)
}

// jordanBlock returns the n-by-n Jordan block with eigenvalue lam.
func jordanBlock(lam float64, n int) *mat.Dense {
	j := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		j.Set(i, i, lam)
		if i+1 < n {
			j.Set(i, i+1, 1)
		}
	}
	return j
}

// liftedStateMatrix builds the block-diagonal shift A: one copy of
// kron(jordanBlock(0, order), I3) per chain, so each 3-vector term feeds the
// term one order below it.
func liftedStateMatrix(order int) *mat.Dense {
	chainDim := 3 * order
	n := chainDim * vectors.LiftedChannels
	a := mat.NewDense(n, n, nil)
	shift := jordanBlock(0, order)
	for c := 0; c < vectors.LiftedChannels; c++ {
		off := c * chainDim
		for j := 0; j < order; j++ {
			for k := 0; k < order; k++ {
				if shift.At(j, k) == 0 {
					continue
				}
				for i := 0; i < 3; i++ {
					a.Set(off+3*j+i, off+3*k+i, shift.At(j, k))
				}
			}
		}
	}
	return a
}

// attitudeInputMatrix inverse-inertia-scales the per-order torque blocks and
// stacks them into the angular chain's input coupling.
func attitudeInputMatrix(blocks []*mat.Dense, jInv []float64) *mat.Dense {
	nu := vectors.NumMotors
	out := mat.NewDense(3*len(blocks), nu, nil)
	for j, h := range blocks {
		for i := 0; i < 3; i++ {
			for k := 0; k < nu; k++ {
				out.Set(3*j+i, k, jInv[i]*h.At(i, k))
			}
		}
	}
	return out
}

// liftedInputMatrix builds B from a raw parameter vector. Only the zero-order
// terms of the velocity and angular chains are actuated: higher-order torque
// blocks are truncated to zero.
func liftedInputMatrix(theta []float64, order int) *mat.Dense {
	pcfg := vectors.ParameterConfig()
	bStart, _ := pcfg.Start("b")
	rStart, _ := pcfg.Start("r")
	sStart, _ := pcfg.Start("s")
	ixxIdx, _ := pcfg.Start("Ixx")
	iyyIdx, _ := pcfg.Start("Iyy")
	izzIdx, _ := pcfg.Start("Izz")

	nu := vectors.NumMotors
	alt := vectors.AlternatingOnes(nu)
	chainDim := 3 * order
	b := mat.NewDense(chainDim*vectors.LiftedChannels, nu, nil)

	// Thrust enters the zero-order velocity term on body z, scaled by 1/m.
	vOff := 1 * chainDim
	for k := 0; k < nu; k++ {
		b.Set(vOff+2, k, 1.0/theta[0])
	}

	torque := mat.NewDense(3, nu, nil)
	for k := 0; k < nu; k++ {
		torque.Set(0, k, theta[sStart+k])
		torque.Set(1, k, -theta[rStart+k])
		torque.Set(2, k, theta[bStart+k]*alt[k])
	}
	blocks := make([]*mat.Dense, order)
	blocks[0] = torque
	for j := 1; j < order; j++ {
		blocks[j] = mat.NewDense(3, nu, nil)
	}
	jInv := []float64{1 / theta[ixxIdx], 1 / theta[iyyIdx], 1 / theta[izzIdx]}
	att := attitudeInputMatrix(blocks, jInv)

	wOff := 3 * chainDim
	for i := 0; i < chainDim; i++ {
		for k := 0; k < nu; k++ {
			b.Set(wOff+i, k, att.At(i, k))
		}
	}
	return b
}

// Lift expands a physical state into the lifted coordinates. Each chain holds
// the successive time derivatives of its channel, truncated at the observable
// order, with the attitude frozen at the lift instant:
//
//	g^(j+1) = -wB x g^(j)
//	w^(j+1) = -J^-1 (wB x (J w^(j)))
//	v^(j+1) = g^(j) - wB x v^(j)
//	p^(j+1) = Rot(q) v^(j)
func Lift(x vectors.State, p vectors.ModelParameters, order int) (vectors.LiftedState, error) {
	cfg := vectors.StateConfig()
	if len(x) != cfg.Dim() {
		return vectors.LiftedState{}, fmt.Errorf("state length %d != %d: %w",
			len(x), cfg.Dim(), vectors.ErrDimensionMismatch)
	}
	if order < 1 {
		return vectors.LiftedState{}, fmt.Errorf("lift order %d: %w", order, vectors.ErrDimensionMismatch)
	}

	pos, _ := cfg.Sub(vectors.FieldPosition, x)
	q, _ := cfg.Sub(vectors.FieldAttitude, x)
	vB, _ := cfg.Sub(vectors.FieldLinearVelocity, x)
	wB, _ := cfg.Sub(vectors.FieldAngularVelocity, x)

	rot := quat.Rot(q)
	var gB mat.VecDense
	gB.MulVec(rot.T(), mat.NewVecDense(3, []float64{0, 0, -Gravity}))

	z := vectors.ZeroLiftedState(order)
	copy(z.Term(0, 0), pos)
	copy(z.Term(1, 0), vB)
	for i := 0; i < 3; i++ {
		z.Term(2, 0)[i] = gB.AtVec(i)
	}
	copy(z.Term(3, 0), wB)

	j := []float64{p.Ixx, p.Iyy, p.Izz}
	for k := 0; k < order-1; k++ {
		gPrev := z.Term(2, k)
		wPrev := z.Term(3, k)
		vPrev := z.Term(1, k)

		wxg := cross(wB, gPrev)
		for i := 0; i < 3; i++ {
			z.Term(2, k+1)[i] = -wxg[i]
		}

		jw := []float64{j[0] * wPrev[0], j[1] * wPrev[1], j[2] * wPrev[2]}
		wxjw := cross(wB, jw)
		for i := 0; i < 3; i++ {
			z.Term(3, k+1)[i] = -wxjw[i] / j[i]
		}

		wxv := cross(wB, vPrev)
		for i := 0; i < 3; i++ {
			z.Term(1, k+1)[i] = gPrev[i] - wxv[i]
		}

		var pd mat.VecDense
		pd.MulVec(rot, mat.NewVecDense(3, vPrev))
		for i := 0; i < 3; i++ {
			z.Term(0, k+1)[i] = pd.AtVec(i)
		}
	}
	return z, nil
}

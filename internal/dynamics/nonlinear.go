package dynamics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/r-mohan/quadnmpc/internal/quat"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// NonlinearQuadrotor is the full rigid-body quadrotor model over the raw
// physical parameter vector.
type NonlinearQuadrotor struct {
	base
}

// NewNonlinearQuadrotor compiles the nonlinear vector field for the given
// parameters. Nil bounds fall back to the configured actuation envelope.
func NewNonlinearQuadrotor(params vectors.ModelParameters, lbu, ubu []float64) *NonlinearQuadrotor {
	stateCfg := vectors.StateConfig()
	inputCfg := vectors.InputConfig()
	if lbu == nil {
		lbu = inputCfg.LowerBounds()
	}
	if ubu == nil {
		ubu = inputCfg.UpperBounds()
	}
	m := &NonlinearQuadrotor{base{
		params:   params,
		lbu:      lbu,
		ubu:      ubu,
		stateCfg: stateCfg,
		inputCfg: inputCfg,
		ntheta:   vectors.ParameterConfig().Dim(),
	}}
	m.defaultTheta = m.DefaultParameterVector
	m.f = nonlinearField(stateCfg)
	return m
}

// DefaultParameterVector emits the raw parameters in schema order.
func (m *NonlinearQuadrotor) DefaultParameterVector() []float64 {
	return m.params.Vector()
}

// AsAffine returns the parameter-affine reformulation with the same physical
// constants and actuator bounds.
func (m *NonlinearQuadrotor) AsAffine() *ParameterAffineQuadrotor {
	return NewParameterAffineQuadrotor(m.params, m.lbu, m.ubu)
}

func nonlinearField(cfg *vectors.Config) VectorField {
	pcfg := vectors.ParameterConfig()
	qStart, _ := cfg.Start(vectors.FieldAttitude)
	vStart, _ := cfg.Start(vectors.FieldLinearVelocity)
	wStart, _ := cfg.Start(vectors.FieldAngularVelocity)
	aStart, _ := pcfg.Start("a")
	bStart, _ := pcfg.Start("b")
	rStart, _ := pcfg.Start("r")
	sStart, _ := pcfg.Start("s")
	ixxIdx, _ := pcfg.Start("Ixx")
	iyyIdx, _ := pcfg.Start("Iyy")
	izzIdx, _ := pcfg.Start("Izz")
	alt := vectors.AlternatingOnes(vectors.NumMotors)
	gW := mat.NewVecDense(3, []float64{0, 0, -Gravity})

	return func(x, u, w, theta []float64) []float64 {
		q := x[qStart : qStart+4]
		vB := x[vStart : vStart+3]
		wB := x[wStart : wStart+3]

		mass := theta[0]
		a := theta[aStart : aStart+3]
		ixx, iyy, izz := theta[ixxIdx], theta[iyyIdx], theta[izzIdx]
		b := theta[bStart : bStart+vectors.NumMotors]
		r := theta[rStart : rStart+vectors.NumMotors]
		s := theta[sStart : sStart+vectors.NumMotors]

		xdot := make([]float64, len(x))
		copy(xdot, w)

		rot := quat.Rot(q)

		var pdot mat.VecDense
		pdot.MulVec(rot, mat.NewVecDense(3, vB))
		for i := 0; i < 3; i++ {
			xdot[i] += pdot.AtVec(i)
		}

		var qdot mat.VecDense
		qdot.MulVec(quat.G(q), mat.NewVecDense(3, wB))
		for i := 0; i < 4; i++ {
			xdot[qStart+i] += 0.5 * qdot.AtVec(i)
		}

		// vdot = Rot^T g + (K u - diag(a) vB)/m - wB x vB, with the thrust
		// axis K collecting every motor on body z.
		var gB mat.VecDense
		gB.MulVec(rot.T(), gW)
		thrust := floats.Sum(u)
		wxv := cross(wB, vB)
		for i := 0; i < 3; i++ {
			ku := 0.0
			if i == 2 {
				ku = thrust
			}
			xdot[vStart+i] += gB.AtVec(i) + (ku-a[i]*vB[i])/mass - wxv[i]
		}

		// wdot = J^-1 (B u - wB x (J wB)) with torque rows built from the
		// moment arms and the alternating spin-drag pattern.
		jw := []float64{ixx * wB[0], iyy * wB[1], izz * wB[2]}
		wxjw := cross(wB, jw)
		var tx, ty, tz float64
		for i := 0; i < vectors.NumMotors; i++ {
			tx += s[i] * u[i]
			ty -= r[i] * u[i]
			tz += b[i] * alt[i] * u[i]
		}
		xdot[wStart+0] += (tx - wxjw[0]) / ixx
		xdot[wStart+1] += (ty - wxjw[1]) / iyy
		xdot[wStart+2] += (tz - wxjw[2]) / izz
		return xdot
	}
}

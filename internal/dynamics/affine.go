package dynamics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/r-mohan/quadnmpc/internal/quat"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// ParameterAffineQuadrotor reformulates the quadrotor dynamics as
//
//	xdot = w + F0(x) + G(x, u) * theta
//
// over the relaxed parameter vector, so parameter estimation and
// parameter-sensitivity problems stay linear in theta.
type ParameterAffineQuadrotor struct {
	base
}

// NewParameterAffineQuadrotor compiles the affine vector field. The model's
// own parameter vector is the relaxed one derived from params.
func NewParameterAffineQuadrotor(params vectors.ModelParameters, lbu, ubu []float64) *ParameterAffineQuadrotor {
	stateCfg := vectors.StateConfig()
	inputCfg := vectors.InputConfig()
	if lbu == nil {
		lbu = inputCfg.LowerBounds()
	}
	if ubu == nil {
		ubu = inputCfg.UpperBounds()
	}
	m := &ParameterAffineQuadrotor{base{
		params:   params,
		lbu:      lbu,
		ubu:      ubu,
		stateCfg: stateCfg,
		inputCfg: inputCfg,
		ntheta:   vectors.AffineConfig().Dim(),
	}}
	m.defaultTheta = m.DefaultParameterVector
	m.f = func(x, u, w, theta []float64) []float64 {
		xdot := make([]float64, len(x))
		copy(xdot, w)
		floats.Add(xdot, m.Drift(x))

		var gt mat.VecDense
		gt.MulVec(m.Regressor(x, u), mat.NewVecDense(len(theta), theta))
		for i := range xdot {
			xdot[i] += gt.AtVec(i)
		}
		return xdot
	}
	return m
}

// DefaultParameterVector emits the relaxed parameters in schema order.
func (m *ParameterAffineQuadrotor) DefaultParameterVector() []float64 {
	return m.params.AffineVector()
}

// Drift evaluates the parameter-independent term F0(x): kinematics, rotated
// gravity and the velocity gyroscopic term. The angular acceleration rows are
// fully parameter-coupled and stay zero here.
func (m *ParameterAffineQuadrotor) Drift(x []float64) []float64 {
	cfg := m.stateCfg
	q, _ := cfg.Sub(vectors.FieldAttitude, x)
	vB, _ := cfg.Sub(vectors.FieldLinearVelocity, x)
	wB, _ := cfg.Sub(vectors.FieldAngularVelocity, x)
	qStart, _ := cfg.Start(vectors.FieldAttitude)
	vStart, _ := cfg.Start(vectors.FieldLinearVelocity)

	out := make([]float64, cfg.Dim())
	rot := quat.Rot(q)

	var pdot mat.VecDense
	pdot.MulVec(rot, mat.NewVecDense(3, vB))
	for i := 0; i < 3; i++ {
		out[i] = pdot.AtVec(i)
	}

	var qdot mat.VecDense
	qdot.MulVec(quat.G(q), mat.NewVecDense(3, wB))
	for i := 0; i < 4; i++ {
		out[qStart+i] = 0.5 * qdot.AtVec(i)
	}

	var gB mat.VecDense
	gB.MulVec(rot.T(), mat.NewVecDense(3, []float64{0, 0, -Gravity}))
	wxv := cross(wB, vB)
	for i := 0; i < 3; i++ {
		out[vStart+i] = gB.AtVec(i) - wxv[i]
	}
	return out
}

// Regressor assembles the nx-by-ntheta parameter coupling G(x, u). Only the
// six velocity rows are populated: the linear rows couple thrust and drag to
// [1/m, a/m], the angular rows couple per-motor torques and the gyroscopic
// products to the inverse-inertia-scaled geometry and the inertia ratios.
func (m *ParameterAffineQuadrotor) Regressor(x, u []float64) *mat.Dense {
	cfg := m.stateCfg
	vB, _ := cfg.Sub(vectors.FieldLinearVelocity, x)
	wB, _ := cfg.Sub(vectors.FieldAngularVelocity, x)
	vStart, _ := cfg.Start(vectors.FieldLinearVelocity)
	wStart, _ := cfg.Start(vectors.FieldAngularVelocity)

	acfg := vectors.AffineConfig()
	aOverM, _ := acfg.Start("a_over_m")
	sOverIxx, _ := acfg.Start("s_over_Ixx")
	rOverIyy, _ := acfg.Start("r_over_Iyy")
	bOverIzz, _ := acfg.Start("b_over_Izz")
	ratios, _ := acfg.Start("inertia_ratios")

	nu := vectors.NumMotors
	alt := vectors.AlternatingOnes(nu)
	g := mat.NewDense(cfg.Dim(), acfg.Dim(), nil)

	// Linear acceleration: thrust on 1/m, drag on a/m.
	g.Set(vStart+2, 0, floats.Sum(u))
	for i := 0; i < 3; i++ {
		g.Set(vStart+i, aOverM+i, -vB[i])
	}

	// Angular acceleration: per-motor torque blocks and gyroscopic products.
	for i := 0; i < nu; i++ {
		g.Set(wStart+0, sOverIxx+i, u[i])
		g.Set(wStart+1, rOverIyy+i, -u[i])
		g.Set(wStart+2, bOverIzz+i, u[i]*alt[i])
	}
	g.Set(wStart+0, ratios+0, -wB[1]*wB[2])
	g.Set(wStart+1, ratios+1, -wB[0]*wB[2])
	g.Set(wStart+2, ratios+2, -wB[0]*wB[1])
	return g
}

package vectors

// ModelParameters holds the physical constants of a quadrotor as named
// numeric fields. Vector and AffineVector are the ordered-list conversions
// against the schemas declared by ParameterConfig and AffineConfig.
type ModelParameters struct {
	Mass float64    // kg
	Drag [3]float64 // first-order body-frame drag coefficients

	// Principal moments of inertia, kg m^2.
	Ixx, Iyy, Izz float64

	// Per-actuator geometry: drag-torque to thrust ratio and signed moment
	// arms about the body y and x axes.
	SpinDragRatio [NumMotors]float64
	MomentArmY    [NumMotors]float64
	MomentArmX    [NumMotors]float64
}

// ParameterConfig declares the raw parameter schema in the order Vector emits.
func ParameterConfig() *Config {
	return MustConfig(
		Field{Name: "m", Dim: 1},
		Field{Name: "a", Dim: 3},
		Field{Name: "Ixx", Dim: 1},
		Field{Name: "Iyy", Dim: 1},
		Field{Name: "Izz", Dim: 1},
		Field{Name: "b", Dim: NumMotors},
		Field{Name: "r", Dim: NumMotors},
		Field{Name: "s", Dim: NumMotors},
	)
}

// AffineConfig declares the relaxed-parameter schema used by the
// parameter-affine model. Its dimension (3*nu + 7) is fixed regardless of the
// raw parameter count.
func AffineConfig() *Config {
	return MustConfig(
		Field{Name: "inv_m", Dim: 1},
		Field{Name: "a_over_m", Dim: 3},
		Field{Name: "s_over_Ixx", Dim: NumMotors},
		Field{Name: "r_over_Iyy", Dim: NumMotors},
		Field{Name: "b_over_Izz", Dim: NumMotors},
		Field{Name: "inertia_ratios", Dim: 3},
	)
}

// Vector emits the raw parameters in ParameterConfig order.
func (p ModelParameters) Vector() []float64 {
	out := make([]float64, 0, ParameterConfig().Dim())
	out = append(out, p.Mass)
	out = append(out, p.Drag[:]...)
	out = append(out, p.Ixx, p.Iyy, p.Izz)
	out = append(out, p.SpinDragRatio[:]...)
	out = append(out, p.MomentArmY[:]...)
	out = append(out, p.MomentArmX[:]...)
	return out
}

// AffineVector derives the relaxed parameters: mass and inertia enter only as
// reciprocals and differences, so the dynamics become linear in the result.
func (p ModelParameters) AffineVector() []float64 {
	out := make([]float64, 0, AffineConfig().Dim())
	out = append(out, 1.0/p.Mass)
	for _, a := range p.Drag {
		out = append(out, a/p.Mass)
	}
	for _, s := range p.MomentArmX {
		out = append(out, s/p.Ixx)
	}
	for _, r := range p.MomentArmY {
		out = append(out, r/p.Iyy)
	}
	for _, b := range p.SpinDragRatio {
		out = append(out, b/p.Izz)
	}
	out = append(out,
		(p.Izz-p.Iyy)/p.Ixx,
		(p.Ixx-p.Izz)/p.Iyy,
		(p.Iyy-p.Ixx)/p.Izz,
	)
	return out
}

// AlternatingOnes returns (-1, 1, -1, 1, ...) of length n, the per-actuator
// yaw-torque sign pattern of alternating rotor spin directions.
func AlternatingOnes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = -1
		} else {
			out[i] = 1
		}
	}
	return out
}

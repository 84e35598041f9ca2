package vectors

import "math"

// State field names shared by the physical models.
const (
	FieldPosition        = "position"
	FieldAttitude        = "attitude"
	FieldLinearVelocity  = "linear_velocity"
	FieldAngularVelocity = "angular_velocity"
	FieldMotorSpeeds     = "motor_speed_squared"
)

// NumMotors is the actuator count of the quadrotor models.
const NumMotors = 4

// StateConfig declares the 13-dimensional physical state: world-frame
// position, body-to-world attitude quaternion, and body-frame linear and
// angular velocities. Position and velocities are unbounded; the quaternion
// components live in [-1, 1].
func StateConfig() *Config {
	one := []float64{1, 1, 1, 1}
	negOne := []float64{-1, -1, -1, -1}
	return MustConfig(
		Field{Name: FieldPosition, Dim: 3},
		Field{Name: FieldAttitude, Dim: 4, Default: []float64{1, 0, 0, 0}, Lower: negOne, Upper: one},
		Field{Name: FieldLinearVelocity, Dim: 3},
		Field{Name: FieldAngularVelocity, Dim: 3},
	)
}

// InputConfig declares the per-actuator normalized squared motor speeds with
// the default actuation envelope [0, 0.15].
func InputConfig() *Config {
	lo := make([]float64, NumMotors)
	hi := make([]float64, NumMotors)
	for i := range hi {
		hi[i] = 0.15
	}
	return MustConfig(
		Field{Name: FieldMotorSpeeds, Dim: NumMotors, Lower: lo, Upper: hi},
	)
}

// NoiseConfig declares additive process noise, one element per state channel.
func NoiseConfig(stateDim int) *Config {
	return MustConfig(Field{Name: "process_noise", Dim: stateDim})
}

// State is the physical state vector laid out per StateConfig.
type State []float64

// NewState returns the configured default state (origin, identity attitude, at rest).
func NewState(cfg *Config) State { return State(cfg.Defaults()) }

// Clone copies the state.
func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether the state is free of NaN and Inf entries.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Input is the actuator vector laid out per InputConfig.
type Input []float64

// NewInput returns the configured default (all motors off).
func NewInput(cfg *Config) Input { return Input(cfg.Defaults()) }

// Clone copies the input.
func (u Input) Clone() Input {
	c := make(Input, len(u))
	copy(c, u)
	return c
}

// ProcessNoise is an additive disturbance on the state derivative.
type ProcessNoise []float64

// NewProcessNoise returns a zero disturbance of the given state dimension.
func NewProcessNoise(stateDim int) ProcessNoise {
	return make(ProcessNoise, stateDim)
}

// VectorList is an ordered sequence of equally sized vectors, used for
// reference trajectories and predicted sequences.
type VectorList [][]float64

// Repeat builds a list of n copies of v.
func Repeat(v []float64, n int) VectorList {
	l := make(VectorList, n)
	for i := range l {
		c := make([]float64, len(v))
		copy(c, v)
		l[i] = c
	}
	return l
}

// Zeros builds a list of n zero vectors of the given dimension.
func Zeros(dim, n int) VectorList {
	l := make(VectorList, n)
	for i := range l {
		l[i] = make([]float64, dim)
	}
	return l
}

// Get returns the k-th vector.
func (l VectorList) Get(k int) []float64 { return l[k] }

// Clone deep-copies the list.
func (l VectorList) Clone() VectorList {
	c := make(VectorList, len(l))
	for i, v := range l {
		cv := make([]float64, len(v))
		copy(cv, v)
		c[i] = cv
	}
	return c
}

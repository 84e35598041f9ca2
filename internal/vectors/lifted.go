package vectors

import "fmt"

// Lifted-state channel names, each a truncated derivative chain of one
// physical 3-vector.
const (
	ChainPosition        = "position_chain"
	ChainLinearVelocity  = "linear_velocity_chain"
	ChainGravity         = "gravity_chain"
	ChainAngularVelocity = "angular_velocity_chain"
)

// LiftedChannels is the number of 3-vector chains in a lifted state.
const LiftedChannels = 4

// LiftedConfig declares the lifted state of the given observable order:
// four chains of 3*order entries, order-major within each chain so the
// zero-order block leads.
func LiftedConfig(order int) *Config {
	if order < 1 {
		panic(fmt.Sprintf("vectors: lifted order must be >= 1, got %d", order))
	}
	dim := 3 * order
	return MustConfig(
		Field{Name: ChainPosition, Dim: dim},
		Field{Name: ChainLinearVelocity, Dim: dim},
		Field{Name: ChainGravity, Dim: dim},
		Field{Name: ChainAngularVelocity, Dim: dim},
	)
}

// LiftedState is a truncated observable expansion of the physical state.
// Layout: [position chain | velocity chain | gravity chain | angular velocity
// chain], each chain holding order consecutive 3-vectors z^(0)..z^(order-1).
type LiftedState struct {
	data  []float64
	order int
}

// NewLiftedState wraps data as a lifted state of the given order.
func NewLiftedState(data []float64, order int) (LiftedState, error) {
	if order < 1 {
		return LiftedState{}, fmt.Errorf("lifted order %d: %w", order, ErrDimensionMismatch)
	}
	if len(data) != 3*order*LiftedChannels {
		return LiftedState{}, fmt.Errorf("lifted data length %d != %d: %w",
			len(data), 3*order*LiftedChannels, ErrDimensionMismatch)
	}
	return LiftedState{data: data, order: order}, nil
}

// ZeroLiftedState returns an all-zero lifted state of the given order.
func ZeroLiftedState(order int) LiftedState {
	z, err := NewLiftedState(make([]float64, 3*order*LiftedChannels), order)
	if err != nil {
		panic(err)
	}
	return z
}

// Order returns the observable order.
func (z LiftedState) Order() int { return z.order }

// Dim returns the lifted dimension 12*order.
func (z LiftedState) Dim() int { return len(z.data) }

// Array returns the backing vector.
func (z LiftedState) Array() []float64 { return z.data }

// Chain returns the i-th 3*order chain (aliasing the backing vector).
func (z LiftedState) Chain(i int) []float64 {
	n := 3 * z.order
	return z.data[i*n : (i+1)*n]
}

// Term returns the j-th order 3-vector of chain i.
func (z LiftedState) Term(i, j int) []float64 {
	c := z.Chain(i)
	return c[3*j : 3*(j+1)]
}

// ZeroOrder extracts the zero-order sub-block of every chain: the 12-element
// physical vector [p, vB, gB, wB] the expansion was built from.
func (z LiftedState) ZeroOrder() []float64 {
	out := make([]float64, 0, 3*LiftedChannels)
	for i := 0; i < LiftedChannels; i++ {
		out = append(out, z.Term(i, 0)...)
	}
	return out
}

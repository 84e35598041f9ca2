// Package config holds yaml scenario files for closed-loop runs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/r-mohan/quadnmpc/internal/dynamics"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

const (
	DefaultDt       = 0.05
	DefaultHorizon  = 10
	DefaultDuration = 5.0
	DefaultAccuracy = 1e-6
	DefaultMaxIter  = 100
)

type Config struct {
	Model    string  `yaml:"model"`
	Variant  string  `yaml:"variant"` // nonlinear, affine or koopman
	Order    int     `yaml:"order"`   // koopman observable order
	Dt       float64 `yaml:"dt"`
	Horizon  int     `yaml:"horizon"`
	Duration float64 `yaml:"duration"`
	Seed     int64   `yaml:"seed"`

	Drag      [3]float64      `yaml:"drag"`
	InitState InitStateConfig `yaml:"init_state"`
	Weights   WeightsConfig   `yaml:"weights"`
	Solver    SolverConfig    `yaml:"solver"`
}

type InitStateConfig struct {
	Position        [3]float64 `yaml:"position"`
	Attitude        [4]float64 `yaml:"attitude"`
	LinearVelocity  [3]float64 `yaml:"linear_velocity"`
	AngularVelocity [3]float64 `yaml:"angular_velocity"`
}

// WeightsConfig carries per-channel diagonal penalties, expanded to the full
// diagonals by GetWeightDiagonals.
type WeightsConfig struct {
	Position        float64 `yaml:"position"`
	Attitude        float64 `yaml:"attitude"`
	LinearVelocity  float64 `yaml:"linear_velocity"`
	AngularVelocity float64 `yaml:"angular_velocity"`
	Input           float64 `yaml:"input"`
	TerminalScale   float64 `yaml:"terminal_scale"`
}

type SolverConfig struct {
	Accuracy      float64 `yaml:"accuracy"`
	MaxIterations int     `yaml:"max_iterations"`
	Verbose       bool    `yaml:"verbose"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    "crazyflie",
		Variant:  "nonlinear",
		Order:    2,
		Dt:       DefaultDt,
		Horizon:  DefaultHorizon,
		Duration: DefaultDuration,
		InitState: InitStateConfig{
			Attitude: [4]float64{1, 0, 0, 0},
		},
		Weights: WeightsConfig{
			Position:        10.0,
			Attitude:        1.0,
			LinearVelocity:  1.0,
			AngularVelocity: 1.0,
			Input:           0.1,
			TerminalScale:   2.0,
		},
		Solver: SolverConfig{
			Accuracy:      DefaultAccuracy,
			MaxIterations: DefaultMaxIter,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// GetModel builds the configured plant model.
func (c *Config) GetModel() (dynamics.Model, error) {
	var nl *dynamics.NonlinearQuadrotor
	switch c.Model {
	case "crazyflie":
		nl = dynamics.Crazyflie(c.Drag)
	case "fusion_one":
		nl = dynamics.FusionOne(c.Drag)
	default:
		return nil, fmt.Errorf("unknown model %q", c.Model)
	}

	switch c.Variant {
	case "", "nonlinear":
		return nl, nil
	case "affine":
		return nl.AsAffine(), nil
	case "koopman":
		order := c.Order
		if order < 1 {
			order = 1
		}
		return dynamics.NewKoopmanQuadrotor(
			nl.Parameters(), order, nl.LowerInputBound(), nl.UpperInputBound()), nil
	default:
		return nil, fmt.Errorf("unknown model variant %q", c.Variant)
	}
}

// GetInitState assembles the initial physical state vector.
func (c *Config) GetInitState() []float64 {
	x := make([]float64, 0, 13)
	x = append(x, c.InitState.Position[:]...)
	x = append(x, c.InitState.Attitude[:]...)
	x = append(x, c.InitState.LinearVelocity[:]...)
	x = append(x, c.InitState.AngularVelocity[:]...)
	return x
}

// GetWeightDiagonals expands the per-channel penalties to full state and
// input diagonals for the given model dimensions.
func (c *Config) GetWeightDiagonals(model dynamics.Model) (q, r, qf []float64) {
	q = make([]float64, model.NX())
	cfg := model.StateConfig()
	set := func(field string, w float64) {
		start, err := cfg.Start(field)
		if err != nil {
			return
		}
		stop, _ := cfg.Stop(field)
		for i := start; i < stop; i++ {
			q[i] = w
		}
	}
	set(vectors.FieldPosition, c.Weights.Position)
	set(vectors.FieldAttitude, c.Weights.Attitude)
	set(vectors.FieldLinearVelocity, c.Weights.LinearVelocity)
	set(vectors.FieldAngularVelocity, c.Weights.AngularVelocity)
	set(vectors.ChainPosition, c.Weights.Position)
	set(vectors.ChainLinearVelocity, c.Weights.LinearVelocity)
	set(vectors.ChainAngularVelocity, c.Weights.AngularVelocity)

	r = make([]float64, model.NU())
	for i := range r {
		r[i] = c.Weights.Input
	}

	scale := c.Weights.TerminalScale
	if scale <= 0 {
		scale = 1
	}
	qf = make([]float64, len(q))
	for i, v := range q {
		qf[i] = scale * v
	}
	return q, r, qf
}

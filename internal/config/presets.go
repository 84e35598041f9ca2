package config

// Presets are ready-made scenarios keyed by model and name.
var Presets = map[string]map[string]*Config{
	"crazyflie": {
		"hover": {
			Model: "crazyflie", Variant: "nonlinear",
			Dt: 0.05, Horizon: 10, Duration: 5.0,
			InitState: InitStateConfig{
				Position: [3]float64{0, 0, 0.5},
				Attitude: [4]float64{1, 0, 0, 0},
			},
			Weights: WeightsConfig{
				Position: 10, Attitude: 1, LinearVelocity: 1,
				AngularVelocity: 1, Input: 0.1, TerminalScale: 2,
			},
			Solver: SolverConfig{Accuracy: 1e-6, MaxIterations: 100},
		},
		"tumble_recovery": {
			Model: "crazyflie", Variant: "nonlinear",
			Dt: 0.02, Horizon: 15, Duration: 3.0,
			InitState: InitStateConfig{
				Position:        [3]float64{1, -1, 2},
				Attitude:        [4]float64{0.7071, 0.7071, 0, 0},
				AngularVelocity: [3]float64{2, 0, 0},
			},
			Weights: WeightsConfig{
				Position: 10, Attitude: 5, LinearVelocity: 1,
				AngularVelocity: 2, Input: 0.05, TerminalScale: 2,
			},
			Solver: SolverConfig{Accuracy: 1e-5, MaxIterations: 200},
		},
		"koopman_hover": {
			Model: "crazyflie", Variant: "koopman", Order: 4,
			Dt: 0.1, Horizon: 10, Duration: 5.0,
			InitState: InitStateConfig{
				Position: [3]float64{-2, 1, 1},
				Attitude: [4]float64{1, 0, 0, 0},
			},
			Weights: WeightsConfig{
				Position: 10, LinearVelocity: 1,
				AngularVelocity: 1, Input: 0, TerminalScale: 2,
			},
			Solver: SolverConfig{Accuracy: 1e-5, MaxIterations: 150},
		},
	},
	"fusion_one": {
		"hover": {
			Model: "fusion_one", Variant: "nonlinear",
			Dt: 0.05, Horizon: 10, Duration: 5.0,
			InitState: InitStateConfig{
				Position: [3]float64{0, 0, 1},
				Attitude: [4]float64{1, 0, 0, 0},
			},
			Weights: WeightsConfig{
				Position: 10, Attitude: 1, LinearVelocity: 1,
				AngularVelocity: 1, Input: 0.1, TerminalScale: 2,
			},
			Solver: SolverConfig{Accuracy: 1e-6, MaxIterations: 100},
		},
	},
}

// GetPreset returns the named preset or nil.
func GetPreset(model, name string) *Config {
	presets, ok := Presets[model]
	if !ok {
		return nil
	}
	return presets[name]
}

// PresetNames lists the preset names for a model.
func PresetNames(model string) []string {
	presets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}

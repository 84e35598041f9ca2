package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "crazyflie" {
		t.Errorf("expected model crazyflie, got %s", cfg.Model)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Horizon < 1 {
		t.Error("horizon should be at least 1")
	}
	if cfg.InitState.Attitude != [4]float64{1, 0, 0, 0} {
		t.Errorf("default attitude = %v, want identity", cfg.InitState.Attitude)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model = "fusion_one"
	cfg.Horizon = 25
	cfg.InitState.Position = [3]float64{1, 2, 3}
	cfg.Solver.Verbose = true

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Model != "fusion_one" || loaded.Horizon != 25 {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.InitState.Position != cfg.InitState.Position {
		t.Errorf("position = %v, want %v", loaded.InitState.Position, cfg.InitState.Position)
	}
	if !loaded.Solver.Verbose {
		t.Error("verbose flag lost")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("model: fusion_one\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "fusion_one" {
		t.Errorf("model = %s", cfg.Model)
	}
	if cfg.Dt != DefaultDt || cfg.Horizon != DefaultHorizon {
		t.Error("unset fields should keep defaults")
	}
}

func TestGetModelVariants(t *testing.T) {
	tests := []struct {
		variant string
		nx      int
	}{
		{"nonlinear", 13},
		{"affine", 13},
		{"koopman", 12 * 3},
	}
	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Variant = tt.variant
			cfg.Order = 3
			model, err := cfg.GetModel()
			if err != nil {
				t.Fatal(err)
			}
			if model.NX() != tt.nx {
				t.Errorf("nx = %d, want %d", model.NX(), tt.nx)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Model = "unknown"
	if _, err := cfg.GetModel(); err == nil {
		t.Error("unknown model accepted")
	}
	cfg = DefaultConfig()
	cfg.Variant = "unknown"
	if _, err := cfg.GetModel(); err == nil {
		t.Error("unknown variant accepted")
	}
}

func TestGetWeightDiagonals(t *testing.T) {
	cfg := DefaultConfig()
	model, err := cfg.GetModel()
	if err != nil {
		t.Fatal(err)
	}

	q, r, qf := cfg.GetWeightDiagonals(model)
	if len(q) != model.NX() || len(r) != model.NU() || len(qf) != model.NX() {
		t.Fatalf("diagonal lengths: %d %d %d", len(q), len(r), len(qf))
	}
	if q[0] != cfg.Weights.Position || q[3] != cfg.Weights.Attitude {
		t.Errorf("q = %v", q[:7])
	}
	if qf[0] != cfg.Weights.TerminalScale*q[0] {
		t.Errorf("qf[0] = %v, want %v", qf[0], cfg.Weights.TerminalScale*q[0])
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("crazyflie", "hover")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitState.Position[2] != 0.5 {
		t.Errorf("hover altitude = %v, want 0.5", cfg.InitState.Position[2])
	}

	if GetPreset("crazyflie", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "hover") != nil {
		t.Error("expected nil for nonexistent model")
	}
	if names := PresetNames("crazyflie"); len(names) != 3 {
		t.Errorf("got %d crazyflie presets", len(names))
	}
}

package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/r-mohan/quadnmpc/internal/sim"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

func sampleResult() *sim.Result {
	return &sim.Result{
		States:     vectors.VectorList{{0, 0, 1}, {0.1, 0, 1}, {0.2, 0, 1}},
		Inputs:     vectors.VectorList{{0.05, 0.05}, {0.06, 0.04}},
		Times:      []float64{0, 0.1, 0.2},
		StepsTaken: 2,
		Metrics:    map[string]float64{"tracking_error": 0.15},
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	data := NewExportData("crazyflie", "nonlinear", 0.1, 10, 0.2, sampleResult())
	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, data); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var loaded ExportData
	if err := json.Unmarshal(raw, &loaded); err != nil {
		t.Fatal(err)
	}
	if loaded.Model != "crazyflie" || loaded.Variant != "nonlinear" {
		t.Errorf("identifiers lost: %+v", loaded)
	}
	if loaded.Steps != 2 || len(loaded.States) != 3 || len(loaded.Inputs) != 2 {
		t.Errorf("shape lost: steps=%d states=%d inputs=%d",
			loaded.Steps, len(loaded.States), len(loaded.Inputs))
	}
	if loaded.Metrics["tracking_error"] != 0.15 {
		t.Errorf("metrics lost: %v", loaded.Metrics)
	}
}

func TestWriteCSV(t *testing.T) {
	data := NewExportData("crazyflie", "nonlinear", 0.1, 10, 0.2, sampleResult())

	var buf bytes.Buffer
	if err := WriteCSV(&buf, data); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// Header plus one row per recorded state.
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	wantHeader := []string{"t", "x0", "x1", "x2", "u0", "u1"}
	for i, h := range wantHeader {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], h)
		}
	}
	if rows[1][0] != "0" || rows[1][3] != "1" {
		t.Errorf("first data row = %v", rows[1])
	}
	// The last state has no matching input.
	if rows[3][4] != "" || rows[3][5] != "" {
		t.Errorf("trailing input cells should be empty: %v", rows[3])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, ExportData{}); err == nil {
		t.Error("expected error for empty result")
	}
}

package metrics

import (
	"math"
	"testing"
	"time"
)

func TestTrackingError(t *testing.T) {
	m := NewTrackingError([]float64{0, 0, 0})

	m.Observe([]float64{3, 4, 0}, nil, 0)
	if math.Abs(m.Value()-5.0) > 1e-12 {
		t.Errorf("single sample RMS = %v, want 5", m.Value())
	}

	m.Observe([]float64{0, 0, 0}, nil, 0.1)
	want := math.Sqrt(25.0 / 2.0)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("two sample RMS = %v, want %v", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("value after reset = %v", m.Value())
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, []float64{1, -2, 3, -4}, 0)
	m.Observe(nil, []float64{0, 0, 0, 0}, 0.1)
	if math.Abs(m.Value()-5.0) > 1e-12 {
		t.Errorf("mean effort = %v, want 5", m.Value())
	}
}

func TestSolveTime(t *testing.T) {
	m := NewSolveTime()
	if m.Value() != 0 {
		t.Errorf("empty value = %v", m.Value())
	}

	m.Add(10 * time.Millisecond)
	m.Add(30 * time.Millisecond)
	if math.Abs(m.Value()-0.020) > 1e-12 {
		t.Errorf("mean solve time = %v, want 0.020", m.Value())
	}

	// Observe is intentionally inert.
	m.Observe([]float64{1}, []float64{1}, 0)
	if math.Abs(m.Value()-0.020) > 1e-12 {
		t.Errorf("Observe changed value: %v", m.Value())
	}
}

// Package metrics accumulates closed-loop performance measures over a run.
package metrics

import (
	"math"
	"time"
)

// Metric observes every closed-loop step and reduces to a scalar.
type Metric interface {
	Name() string
	Observe(x, u []float64, t float64)
	Value() float64
	Reset()
}

// TrackingError is the RMS distance between the observed state and a fixed
// reference over the run.
type TrackingError struct {
	name    string
	ref     []float64
	sumSq   float64
	samples int
}

func NewTrackingError(ref []float64) *TrackingError {
	return &TrackingError{name: "tracking_error", ref: ref}
}

func (m *TrackingError) Name() string { return m.name }

func (m *TrackingError) Observe(x, u []float64, t float64) {
	n := len(m.ref)
	if len(x) < n {
		n = len(x)
	}
	for i := 0; i < n; i++ {
		e := x[i] - m.ref[i]
		m.sumSq += e * e
	}
	m.samples++
}

func (m *TrackingError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return math.Sqrt(m.sumSq / float64(m.samples))
}

func (m *TrackingError) Reset() {
	m.sumSq = 0
	m.samples = 0
}

// ControlEffort is the mean absolute actuation per step.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(x, u []float64, t float64) {
	for _, v := range u {
		c.sum += math.Abs(v)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// SolveTime is the mean NLP solve duration in seconds. It is fed through Add
// by the closed loop; Observe is a no-op so it still satisfies Metric.
type SolveTime struct {
	name    string
	total   time.Duration
	samples int
}

func NewSolveTime() *SolveTime {
	return &SolveTime{name: "solve_time"}
}

func (s *SolveTime) Name() string { return s.name }

func (s *SolveTime) Observe(x, u []float64, t float64) {}

func (s *SolveTime) Add(d time.Duration) {
	s.total += d
	s.samples++
}

func (s *SolveTime) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.total.Seconds() / float64(s.samples)
}

func (s *SolveTime) Reset() {
	s.total = 0
	s.samples = 0
}

// Package sim runs receding-horizon closed loops: every step the controller
// solves for an input sequence and the first input drives the plant.
package sim

import (
	"context"
	"fmt"

	"github.com/r-mohan/quadnmpc/internal/dynamics"
	"github.com/r-mohan/quadnmpc/internal/metrics"
	"github.com/r-mohan/quadnmpc/internal/mpc"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// Controller is the receding-horizon solver driving the loop.
type Controller interface {
	Solve(req mpc.Request) (*mpc.Solution, error)
	Horizon() int
	PredictedInputs() vectors.VectorList
}

// Observer is notified after every applied step.
type Observer interface {
	OnStep(x, u []float64, t float64)
}

// Config shapes a closed-loop run.
type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool

	// Noise injects process noise into the plant at each step. Nil means a
	// noise-free plant.
	Noise func(step int) []float64
}

// Result is the recorded closed loop.
type Result struct {
	States vectors.VectorList
	Inputs vectors.VectorList
	Times  []float64

	Metrics       map[string]float64
	StepsTaken    int
	SolveFailures int
	Errors        []error
}

// StepError marks a diagnosed failure at a specific closed-loop step.
type StepError struct {
	Time    float64
	Step    int
	Message string
}

func (e StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.3f): %s", e.Step, e.Time, e.Message)
}

// Loop couples a plant model with a receding-horizon controller regulating
// to a fixed setpoint.
type Loop struct {
	plant      dynamics.Model
	controller Controller
	xSet       []float64
	uSet       []float64

	metrics   []metrics.Metric
	solveTime *metrics.SolveTime
	observers []Observer
}

// NewLoop builds a closed loop regulating the plant to the given state and
// input setpoints.
func NewLoop(plant dynamics.Model, controller Controller, xSet, uSet []float64) *Loop {
	return &Loop{
		plant:      plant,
		controller: controller,
		xSet:       xSet,
		uSet:       uSet,
		solveTime:  metrics.NewSolveTime(),
	}
}

func (l *Loop) AddMetric(m metrics.Metric) { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer)     { l.observers = append(l.observers, o) }

// Run simulates from x0 until the configured duration, the context is
// cancelled, or the state leaves the valid range. Solver failures hold the
// previous input and are recorded, not retried.
func (l *Loop) Run(ctx context.Context, x0 []float64, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(cfg.Duration / cfg.Dt)
	n := l.controller.Horizon()
	xref := vectors.Repeat(l.xSet, n)
	uref := vectors.Repeat(l.uSet, n)

	result := &Result{
		States:  make(vectors.VectorList, 0, steps+1),
		Inputs:  make(vectors.VectorList, 0, steps),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range l.metrics {
		m.Reset()
	}
	l.solveTime.Reset()

	x := append([]float64(nil), x0...)
	u := append([]float64(nil), l.uSet...)
	t := 0.0

	result.States = append(result.States, append([]float64(nil), x...))
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		sol, err := l.controller.Solve(mpc.Request{X0: x, XRef: xref, URef: uref})
		if err != nil {
			result.SolveFailures++
			result.Errors = append(result.Errors,
				StepError{Time: t, Step: i, Message: err.Error()})
		} else {
			l.solveTime.Add(sol.SolveTime)
			u = l.controller.PredictedInputs().Get(0)
		}

		for _, m := range l.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range l.observers {
			obs.OnStep(x, u, t)
		}

		var w []float64
		if cfg.Noise != nil {
			w = cfg.Noise(i)
		}
		next, err := l.plant.Step(cfg.Dt, x, u, w)
		if err != nil {
			result.Errors = append(result.Errors,
				StepError{Time: t, Step: i, Message: err.Error()})
			break
		}

		if cfg.ValidateState && !vectors.State(next).IsValid() {
			result.Errors = append(result.Errors,
				StepError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"})
			break
		}

		x = next
		t += cfg.Dt
		result.StepsTaken++

		result.States = append(result.States, append([]float64(nil), x...))
		result.Inputs = append(result.Inputs, append([]float64(nil), u...))
		result.Times = append(result.Times, t)
	}

	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Metrics[l.solveTime.Name()] = l.solveTime.Value()

	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

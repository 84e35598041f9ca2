package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/r-mohan/quadnmpc/internal/dynamics"
	"github.com/r-mohan/quadnmpc/internal/metrics"
	"github.com/r-mohan/quadnmpc/internal/mpc"
	"github.com/r-mohan/quadnmpc/internal/solver"
	"github.com/r-mohan/quadnmpc/internal/vectors"
)

// stubController always returns a fixed input sequence, optionally failing
// on selected steps.
type stubController struct {
	horizon int
	input   []float64
	failAt  map[int]bool
	calls   int
}

func (s *stubController) Solve(req mpc.Request) (*mpc.Solution, error) {
	call := s.calls
	s.calls++
	if s.failAt[call] {
		return nil, &solver.FailureError{Status: "stub failure"}
	}
	return &mpc.Solution{Status: "stub"}, nil
}

func (s *stubController) Horizon() int { return s.horizon }

func (s *stubController) PredictedInputs() vectors.VectorList {
	return vectors.Repeat(s.input, s.horizon)
}

func hoverInput(model dynamics.Model) []float64 {
	hover := model.Parameters().Mass * dynamics.Gravity / float64(vectors.NumMotors)
	return []float64{hover, hover, hover, hover}
}

func TestLoopRunsToDuration(t *testing.T) {
	plant := dynamics.Crazyflie([3]float64{})
	x0 := vectors.NewState(vectors.StateConfig())
	uSet := hoverInput(plant)
	ctrl := &stubController{horizon: 4, input: uSet}

	loop := NewLoop(plant, ctrl, x0, uSet)
	loop.AddMetric(metrics.NewControlEffort())
	loop.AddMetric(metrics.NewTrackingError(x0[:3]))

	res, err := loop.Run(context.Background(), x0, Config{Dt: 0.02, Duration: 0.2, ValidateState: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.StepsTaken != 10 {
		t.Errorf("steps = %d, want 10", res.StepsTaken)
	}
	if len(res.States) != 11 || len(res.Inputs) != 10 {
		t.Errorf("recorded %d states and %d inputs", len(res.States), len(res.Inputs))
	}
	if _, ok := res.Metrics["control_effort"]; !ok {
		t.Error("control_effort metric missing")
	}
	if _, ok := res.Metrics["solve_time"]; !ok {
		t.Error("solve_time metric missing")
	}

	// Hover keeps the plant at its setpoint.
	final := res.States[len(res.States)-1]
	for i := 0; i < 3; i++ {
		if diff := final[i] - x0[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("drifted at hover: position[%d] moved %v", i, diff)
		}
	}
}

func TestLoopHoldsInputOnSolverFailure(t *testing.T) {
	plant := dynamics.Crazyflie([3]float64{})
	x0 := vectors.NewState(vectors.StateConfig())
	uSet := hoverInput(plant)
	ctrl := &stubController{
		horizon: 2,
		input:   uSet,
		failAt:  map[int]bool{1: true, 2: true},
	}

	loop := NewLoop(plant, ctrl, x0, uSet)
	res, err := loop.Run(context.Background(), x0, Config{Dt: 0.02, Duration: 0.1})
	if err != nil {
		t.Fatal(err)
	}
	if res.SolveFailures != 2 {
		t.Errorf("solve failures = %d, want 2", res.SolveFailures)
	}
	if res.StepsTaken != 5 {
		t.Errorf("failures must not stop the loop: steps = %d, want 5", res.StepsTaken)
	}
	if len(res.Errors) != 2 {
		t.Fatalf("recorded %d errors, want 2", len(res.Errors))
	}
	var se StepError
	if !errors.As(res.Errors[0], &se) || se.Step != 1 {
		t.Errorf("first error = %v, want step 1", res.Errors[0])
	}
}

func TestLoopContextCancellation(t *testing.T) {
	plant := dynamics.Crazyflie([3]float64{})
	x0 := vectors.NewState(vectors.StateConfig())
	uSet := hoverInput(plant)
	ctrl := &stubController{horizon: 2, input: uSet}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loop := NewLoop(plant, ctrl, x0, uSet)
	res, err := loop.Run(ctx, x0, Config{Dt: 0.02, Duration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if res == nil || res.StepsTaken != 0 {
		t.Error("cancelled run should return the partial result")
	}
}

func TestLoopConfigValidation(t *testing.T) {
	plant := dynamics.Crazyflie([3]float64{})
	x0 := vectors.NewState(vectors.StateConfig())
	loop := NewLoop(plant, &stubController{horizon: 1, input: hoverInput(plant)}, x0, hoverInput(plant))

	if _, err := loop.Run(context.Background(), x0, Config{Dt: 0, Duration: 1}); err == nil {
		t.Error("zero dt accepted")
	}
	if _, err := loop.Run(context.Background(), x0, Config{Dt: 0.1, Duration: 0}); err == nil {
		t.Error("zero duration accepted")
	}
}

type recordingObserver struct {
	steps int
}

func (r *recordingObserver) OnStep(x, u []float64, t float64) { r.steps++ }

func TestLoopNotifiesObservers(t *testing.T) {
	plant := dynamics.Crazyflie([3]float64{})
	x0 := vectors.NewState(vectors.StateConfig())
	uSet := hoverInput(plant)
	ctrl := &stubController{horizon: 2, input: uSet}

	obs := &recordingObserver{}
	loop := NewLoop(plant, ctrl, x0, uSet)
	loop.AddObserver(obs)

	if _, err := loop.Run(context.Background(), x0, Config{Dt: 0.02, Duration: 0.1}); err != nil {
		t.Fatal(err)
	}
	if obs.steps != 5 {
		t.Errorf("observer saw %d steps, want 5", obs.steps)
	}
}

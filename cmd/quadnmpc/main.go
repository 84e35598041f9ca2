package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/r-mohan/quadnmpc/internal/config"
	"github.com/r-mohan/quadnmpc/internal/dynamics"
	"github.com/r-mohan/quadnmpc/internal/metrics"
	"github.com/r-mohan/quadnmpc/internal/mpc"
	"github.com/r-mohan/quadnmpc/internal/sim"
	"github.com/r-mohan/quadnmpc/internal/solver"
	"github.com/r-mohan/quadnmpc/internal/store"
	"github.com/r-mohan/quadnmpc/internal/trajectory"
	"github.com/r-mohan/quadnmpc/internal/vectors"
	"github.com/r-mohan/quadnmpc/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	variant    string
	order      int
	dt         float64
	duration   float64
	horizon    int
	seed       int64
	noise      float64
	accuracy   float64
	maxIter    int
	verbose    bool
	jsonOut    string
	csvOut     string
	showPlots  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quadnmpc",
		Short: "nonlinear model predictive control for quadrotors",
	}

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a closed-loop hover regulation simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scenario config file (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	runCmd.Flags().StringVar(&variant, "variant", "nonlinear", "dynamics variant (nonlinear, affine, koopman)")
	runCmd.Flags().IntVar(&order, "order", 2, "koopman observable order")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "prediction horizon")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().Float64Var(&noise, "noise", 0.0, "process noise stddev")
	runCmd.Flags().Float64Var(&accuracy, "accuracy", config.DefaultAccuracy, "solver accuracy")
	runCmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "solver iteration limit")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "print per-solve diagnostics")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "export run to JSON file")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "export run to CSV file")
	runCmd.Flags().BoolVar(&showPlots, "plot", false, "render terminal plots after the run")

	solveCmd := &cobra.Command{
		Use:   "solve [model]",
		Short: "run a single horizon solve and plot the prediction",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&configFile, "config", "", "scenario config file (yaml)")
	solveCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	solveCmd.Flags().StringVar(&variant, "variant", "nonlinear", "dynamics variant")
	solveCmd.Flags().IntVar(&order, "order", 2, "koopman observable order")
	solveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	solveCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "prediction horizon")
	solveCmd.Flags().Float64Var(&accuracy, "accuracy", config.DefaultAccuracy, "solver accuracy")
	solveCmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "solver iteration limit")
	solveCmd.Flags().BoolVar(&verbose, "verbose", false, "print per-solve diagnostics")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run the closed loop with live visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scenario config file (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	liveCmd.Flags().StringVar(&variant, "variant", "nonlinear", "dynamics variant")
	liveCmd.Flags().IntVar(&order, "order", 2, "koopman observable order")
	liveCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	liveCmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "prediction horizon")
	liveCmd.Flags().Float64Var(&accuracy, "accuracy", config.DefaultAccuracy, "solver accuracy")
	liveCmd.Flags().IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "solver iteration limit")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.PresetNames(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, name := range names {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run.json]",
		Short: "plot an exported run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default scenario config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, solveCmd, liveCmd, presetsCmd, plotCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildConfig resolves the scenario: preset, then config file, then CLI flag
// overrides.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.PresetNames(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	cfg.Model = model
	if cmd.Flags().Changed("variant") {
		cfg.Variant = variant
	}
	if cmd.Flags().Changed("order") {
		cfg.Order = order
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Horizon = horizon
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("accuracy") {
		cfg.Solver.Accuracy = accuracy
	}
	if cmd.Flags().Changed("max-iter") {
		cfg.Solver.MaxIterations = maxIter
	}
	if verbose {
		cfg.Solver.Verbose = true
	}
	return cfg, nil
}

// buildScenario assembles the plant, controller and setpoints for a config.
// For lifted variants the physical initial state and hover setpoint are lifted
// into observable space.
func buildScenario(cfg *config.Config) (plant dynamics.Model, ctrl *mpc.NMPC, x0, xSet, uSet []float64, err error) {
	plant, err = cfg.GetModel()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	q, r, qf := cfg.GetWeightDiagonals(plant)
	opts := solver.Options{
		Accuracy:      cfg.Solver.Accuracy,
		MaxIterations: cfg.Solver.MaxIterations,
		Verbose:       cfg.Solver.Verbose,
	}
	ctrl, err = mpc.New(cfg.Dt, cfg.Horizon, mpc.DiagWeights(q, r, qf), plant, nil, opts)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	params := plant.Parameters()
	hover := params.Mass * dynamics.Gravity / vectors.NumMotors
	uSet = make([]float64, vectors.NumMotors)
	for i := range uSet {
		uSet[i] = hover
	}

	x0 = cfg.GetInitState()
	xSet = []float64(vectors.NewState(vectors.StateConfig()))
	if km, ok := plant.(*dynamics.KoopmanQuadrotor); ok {
		z0, err := dynamics.Lift(vectors.State(x0), params, km.Order())
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		zSet, err := dynamics.Lift(vectors.State(xSet), params, km.Order())
		if err != nil {
			return nil, nil, nil, nil, nil, err
		}
		x0 = z0.Array()
		xSet = zSet.Array()
	}
	return plant, ctrl, x0, xSet, uSet, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	plant, ctrl, x0, xSet, uSet, err := buildScenario(cfg)
	if err != nil {
		return err
	}

	loop := sim.NewLoop(plant, ctrl, xSet, uSet)
	loop.AddMetric(metrics.NewTrackingError(xSet))
	loop.AddMetric(metrics.NewControlEffort())

	simCfg := sim.Config{Dt: cfg.Dt, Duration: cfg.Duration, ValidateState: true}
	if noise > 0 {
		rng := rand.New(rand.NewSource(cfg.Seed))
		nw := plant.NW()
		simCfg.Noise = func(step int) []float64 {
			w := make([]float64, nw)
			for i := range w {
				w[i] = rng.NormFloat64() * noise
			}
			return w
		}
	}

	fmt.Printf("running %s/%s closed loop...\n", cfg.Model, cfg.Variant)
	start := time.Now()
	result, err := loop.Run(context.Background(), x0, simCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if result.SolveFailures > 0 {
		fmt.Printf("solve failures: %d\n", result.SolveFailures)
	}
	for _, e := range result.Errors {
		fmt.Printf("  %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	data := store.NewExportData(cfg.Model, cfg.Variant, cfg.Dt, cfg.Horizon, cfg.Duration, result)
	if jsonOut != "" {
		if err := store.ExportJSON(jsonOut, data); err != nil {
			return err
		}
		fmt.Printf("exported %s\n", jsonOut)
	}
	if csvOut != "" {
		if err := store.ExportCSV(csvOut, data); err != nil {
			return err
		}
		fmt.Printf("exported %s\n", csvOut)
	}

	if showPlots {
		fmt.Println()
		fmt.Print(renderRun(data))
	}
	return nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	plant, ctrl, x0, xSet, uSet, err := buildScenario(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("solving %s/%s over %d stages...\n", cfg.Model, cfg.Variant, cfg.Horizon)
	sol, err := ctrl.Solve(mpc.Request{
		X0:   x0,
		XRef: vectors.Repeat(xSet, cfg.Horizon),
		URef: vectors.Repeat(uSet, cfg.Horizon),
	})
	if err != nil {
		return err
	}
	fmt.Printf("status: %s\n", sol.Status)
	fmt.Printf("objective: %.6f\n", sol.Objective)
	fmt.Printf("solve time: %v\n", sol.SolveTime)

	t := trajectory.TimeGrid(cfg.Dt, cfg.Horizon)
	channels := viz.StateChannels()
	if plant.NX() != 13 {
		channels = []viz.Channel{{Label: "lifted state", Start: 0, Stop: plant.NX()}}
	}
	fmt.Println()
	fmt.Print(viz.RenderSeries("predicted states", t, ctrl.PredictedStates(), channels))
	fmt.Print(viz.RenderSeries("predicted inputs", t, ctrl.PredictedInputs(), viz.InputChannels()))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	plant, ctrl, x0, xSet, uSet, err := buildScenario(cfg)
	if err != nil {
		return err
	}

	model := viz.NewLive(plant, ctrl, x0, xSet, uSet, cfg.Dt)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("live view failed: %w", err)
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	data, err := store.LoadJSON(args[0])
	if err != nil {
		return err
	}
	fmt.Print(renderRun(data))
	return nil
}

func renderRun(data store.ExportData) string {
	out := ""
	if len(data.States) > 0 {
		channels := viz.StateChannels()
		if len(data.States[0]) != 13 {
			channels = []viz.Channel{{Label: "lifted state", Start: 0, Stop: len(data.States[0])}}
		}
		out += viz.RenderSeries("states", data.Times, vectors.VectorList(data.States), channels)
	}
	if len(data.Inputs) > 0 {
		out += viz.RenderSeries("inputs", data.Times[:len(data.Inputs)], vectors.VectorList(data.Inputs), viz.InputChannels())
	}
	out += viz.RenderStats(data.Metrics, []string{"tracking_error", "control_effort", "solve_time"})
	return out
}

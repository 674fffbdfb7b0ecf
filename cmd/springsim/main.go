package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/export"
	"github.com/san-kum/springsim/internal/optim"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/storage"
	"github.com/san-kum/springsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir     string
	debug       bool
	logFile     *os.File
	configFile  string
	preset      string
	dt          float64
	duration    float64
	force       float64
	drag        float64
	integration string
	integrator  string
	initial     []float64
	target      []float64
	velocity    []float64
	// tune
	forceMin   float64
	forceMax   float64
	forceSteps int
	dragMin    float64
	dragMax    float64
	dragSteps  int
	metric     string
	top        int
	// live
	fixedRate bool
	// plot, analyze
	axis    int
	phase   bool
	svgPath string
	theme   string
)

// main registers the springsim commands. With no subcommand it opens the
// interactive preset menu.
func main() {
	rootCmd := &cobra.Command{
		Use:   "springsim",
		Short: "spring animation lab",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(dynamo.DefaultTuning())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".springsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "write logs to <data>/logs")

	runCmd := &cobra.Command{
		Use:   "run [spring]",
		Short: "run a spring offline and store the trajectory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSpringFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot positions and targets of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the first axis as SVG to this path")
	plotCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "SVG colour theme")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "measure ringing frequency and damping of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&axis, "axis", 0, "axis to analyze")
	analyzeCmd.Flags().BoolVar(&phase, "phase", false, "draw the phase portrait")
	analyzeCmd.Flags().StringVar(&svgPath, "svg", "", "write the phase portrait as SVG to this path")
	analyzeCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "SVG colour theme")

	compareCmd := &cobra.Command{
		Use:   "compare [integrators...]",
		Short: "compare integrators against the analytical solution",
		RunE:  compareIntegrators,
	}
	addSpringFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list force/drag presets",
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate springs in the terminal",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&preset, "preset", "", "force/drag preset")
	liveCmd.Flags().Float64Var(&force, "force", physics.DefaultForce, "spring force")
	liveCmd.Flags().Float64Var(&drag, "drag", physics.DefaultDrag, "spring drag")
	liveCmd.Flags().BoolVar(&fixedRate, "fixed", false, "step at the fixed update rate")

	tuneCmd := &cobra.Command{
		Use:   "tune [spring]",
		Short: "grid search force and drag for a spring",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneSpring,
	}
	addSpringFlags(tuneCmd)
	tuneCmd.Flags().Float64Var(&forceMin, "force-min", 50, "smallest force")
	tuneCmd.Flags().Float64Var(&forceMax, "force-max", 500, "largest force")
	tuneCmd.Flags().IntVar(&forceSteps, "force-steps", 10, "force grid points")
	tuneCmd.Flags().Float64Var(&dragMin, "drag-min", 2, "smallest drag")
	tuneCmd.Flags().Float64Var(&dragMax, "drag-max", 50, "largest drag")
	tuneCmd.Flags().IntVar(&dragSteps, "drag-steps", 10, "drag grid points")
	tuneCmd.Flags().StringVar(&metric, "metric", "settle_time", "metric to minimise")
	tuneCmd.Flags().IntVar(&top, "top", 5, "candidates to print")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, analyzeCmd, compareCmd, presetsCmd, liveCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSpringFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "force/drag preset")
	cmd.Flags().Float64Var(&dt, "dt", dynamo.DefaultRunDt, "frame time")
	cmd.Flags().Float64Var(&duration, "time", dynamo.DefaultRunDuration, "duration")
	cmd.Flags().Float64Var(&force, "force", physics.DefaultForce, "spring force")
	cmd.Flags().Float64Var(&drag, "drag", physics.DefaultDrag, "spring drag")
	cmd.Flags().StringVar(&integration, "integration", config.DefaultIntegration, "auto, numerical or analytical")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "numerical integrator")
	cmd.Flags().Float64SliceVar(&initial, "initial", nil, "initial value per axis")
	cmd.Flags().Float64SliceVar(&target, "target", nil, "target value per axis")
	cmd.Flags().Float64SliceVar(&velocity, "velocity", nil, "initial velocity per axis")
}

// loadConfig reads --config (or the defaults) and applies the flags the
// user set on top of it. It returns the config and the selected spring.
func loadConfig(cmd *cobra.Command, name string) (*config.Config, *config.SpringConfig, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("integration") {
		cfg.Integration = integration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if len(cfg.Springs) == 0 {
		return nil, nil, fmt.Errorf("%w: config has no springs", dynamo.ErrParameterBounds)
	}

	sc := &cfg.Springs[0]
	if name != "" {
		if sc = cfg.Find(name); sc == nil {
			return nil, nil, fmt.Errorf("%w: no spring named %q", dynamo.ErrUnknownKind, name)
		}
	}
	if preset != "" {
		if err := sc.ApplyPreset(preset); err != nil {
			return nil, nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	}
	if flags.Changed("force") {
		f := force
		sc.Force = &f
	}
	if flags.Changed("drag") {
		d := drag
		sc.Drag = &d
	}
	if flags.Changed("initial") {
		sc.Initial = initial
	}
	if flags.Changed("target") {
		sc.Target = target
	}
	if flags.Changed("velocity") {
		sc.Velocity = velocity
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, sc, nil
}

func springName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runExperiment(ctx context.Context, cfg *config.Config, name string) (*experiment.Experiment, *dynamo.Result, error) {
	exp, err := experiment.New(cfg, name)
	if err != nil {
		return nil, nil, err
	}
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return nil, nil, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	return exp, result, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, sc, err := loadConfig(cmd, springName(args))
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s spring %q...\n", sc.KindOrDefault(), sc.Name)
	start := time.Now()

	_, result, err := runExperiment(context.Background(), cfg, sc.Name)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	f, d := sc.Params(physics.DefaultForce, physics.DefaultDrag)
	schedule := "hold"
	if sc.Schedule != nil && sc.Schedule.Kind != "" {
		schedule = sc.Schedule.Kind
	}
	runID, err := st.Save(storage.RunMetadata{
		Spring:      sc.Name,
		Kind:        sc.KindOrDefault(),
		Dt:          cfg.Run.Dt,
		Duration:    cfg.Run.Duration,
		Force:       f,
		Drag:        d,
		Integration: cfg.Integration,
		Integrator:  cfg.Integrator,
		Schedule:    schedule,
		Tuning:      cfg.Tuning,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.States))
	if len(result.Errors) > 0 {
		fmt.Printf("errors: %d (first: %v)\n", len(result.Errors), result.Errors[0])
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSPRING\tKIND\tTIME\tDURATION\tDT\tFORCE\tDRAG\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%g\t%g\t%s/%s\n",
			run.ID,
			run.Spring,
			run.Kind,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Force,
			run.Drag,
			run.Integration,
			run.Integrator,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	if len(result.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("spring: %s (%s)\n", meta.Spring, meta.Kind)
	fmt.Printf("samples: %d\n\n", len(result.States))

	axes := len(result.States[0]) / 2
	maxPlots := 4
	if axes > maxPlots {
		axes = maxPlots
	}

	for axis := 0; axis < axes; axis++ {
		position := make([]float64, len(result.States))
		goal := make([]float64, len(result.States))
		for i := range result.States {
			position[i] = result.States[i][axis]
			if i < len(result.Controls) && axis < len(result.Controls[i]) {
				goal[i] = result.Controls[i][axis]
			}
		}

		graph := asciigraph.PlotMany([][]float64{position, goal},
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Red),
			asciigraph.Caption(fmt.Sprintf("x%d (cyan) vs target%d (red)", axis, axis)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if svgPath != "" {
		t := viz.GetTheme(theme)
		svg, err := export.RunToSVG(result, 0, 800, 300, string(t.Primary), string(t.Accent))
		if err != nil {
			return err
		}
		if err := export.SaveSVG(svgPath, svg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.States) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteCSV(os.Stdout, result)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	return storage.ExportJSONStdout(*meta, result)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadResult(runID)
	if err != nil {
		return err
	}

	report, err := analysis.Analyze(result, axis, meta.Force, meta.Drag)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("spring: %s (%s), force=%g, drag=%g, axis %d\n\n", meta.Spring, meta.Kind, meta.Force, meta.Drag, axis)
	fmt.Printf("  frequency: %.4f Hz measured, %.4f Hz predicted\n", report.MeasuredHz, report.PredictedHz)
	if report.Ringing {
		fmt.Printf("  damping ratio: %.4f estimated, %.4f predicted (%d peaks, log decrement %.4f)\n",
			report.EstimatedZeta, report.PredictedZeta, report.Peaks, report.LogDecrement)
	} else {
		fmt.Printf("  damping ratio: %.4f predicted, no ringing observed\n", report.PredictedZeta)
	}

	if phase {
		portrait, err := analysis.NewPhasePortrait(result, axis)
		if err != nil {
			return err
		}
		fmt.Println("\nphase portrait (displacement vs velocity):")
		fmt.Print(portrait.ASCII(80, 24))
	}

	if svgPath != "" {
		portrait, err := analysis.NewPhasePortrait(result, axis)
		if err != nil {
			return err
		}
		svg := export.PhasePortraitToSVG(portrait, 400, 400, string(viz.GetTheme(theme).Primary))
		if err := export.SaveSVG(svgPath, svg); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	return nil
}

// compareIntegrators runs the same spring once per integrator and reports
// the largest deviation from the closed-form trajectory.
func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, sc, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}

	names := args
	if len(names) == 0 {
		names = config.NumericalIntegrators
	}

	ctx := context.Background()
	reference := *cfg
	reference.Integration = "analytical"
	reference.Integrator = ""
	_, ref, err := runExperiment(ctx, &reference, sc.Name)
	if err != nil {
		return fmt.Errorf("analytical reference: %w", err)
	}

	f, d := sc.Params(physics.DefaultForce, physics.DefaultDrag)
	fmt.Printf("comparing integrators for %s spring (force=%g, drag=%g, dt=%.4f, duration=%.1fs)\n\n",
		sc.KindOrDefault(), f, d, cfg.Run.Dt, cfg.Run.Duration)
	fmt.Printf("%-14s  %-12s  %-12s  %-12s  %-12s\n", "integrator", "max_error", "settle_time", "overshoot", "time_ms")
	fmt.Println(strings.Repeat("-", 70))

	rows := append([]string{"analytical"}, names...)
	for _, name := range rows {
		local := *cfg
		if name == "analytical" {
			local.Integration = "analytical"
			local.Integrator = ""
		} else {
			local.Integration = "numerical"
			local.Integrator = name
		}

		start := time.Now()
		_, result, err := runExperiment(ctx, &local, sc.Name)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-14s  error: %v\n", name, err)
			continue
		}

		fmt.Printf("%-14s  %-12.6f  %-12.4f  %-12.4f  %-12.3f\n",
			name,
			maxDeviation(result, ref),
			result.Metrics["settle_time"],
			result.Metrics["overshoot"],
			float64(elapsed.Microseconds())/1000,
		)
	}

	return nil
}

// maxDeviation is the largest position difference between two runs over
// their common samples.
func maxDeviation(a, b *dynamo.Result) float64 {
	n := len(a.States)
	if len(b.States) < n {
		n = len(b.States)
	}
	worst := 0.0
	for i := 0; i < n; i++ {
		axes := len(a.States[i]) / 2
		for j := 0; j < axes && j < len(b.States[i]); j++ {
			if diff := math.Abs(a.States[i][j] - b.States[i][j]); diff > worst {
				worst = diff
			}
		}
	}
	return worst
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tFORCE\tDRAG\tOMEGA\tZETA\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		osc := physics.NewOscillator(p.Force, p.Drag)
		fmt.Fprintf(w, "%s\t%g\t%g\t%.2f\t%.2f\t%s\n",
			name, p.Force, p.Drag, osc.NaturalFrequency(), osc.DampingRatio(), p.Description)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	f, d := force, drag
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return fmt.Errorf("%w: preset %q (available: %v)", dynamo.ErrUnknownKind, preset, config.ListPresets())
		}
		if !cmd.Flags().Changed("force") {
			f = p.Force
		}
		if !cmd.Flags().Changed("drag") {
			d = p.Drag
		}
	}

	tuning := dynamo.DefaultTuning()
	tuning.DoFixedUpdateRate = fixedRate
	return viz.RunLive(tuning, f, d, preset)
}

func tuneSpring(cmd *cobra.Command, args []string) error {
	cfg, sc, err := loadConfig(cmd, springName(args))
	if err != nil {
		return err
	}

	forces := optim.Linspace(forceMin, forceMax, forceSteps)
	drags := optim.Linspace(dragMin, dragMax, dragSteps)

	fmt.Printf("tuning spring %q over %d force x %d drag values by %s...\n", sc.Name, len(forces), len(drags), metric)
	start := time.Now()

	candidates, err := optim.Tune(context.Background(), cfg, sc.Name, forces, drags, metric)
	if err != nil {
		return err
	}
	fmt.Printf("evaluated %d candidates in %v\n\n", len(candidates), time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tFORCE\tDRAG\tSCORE\tSETTLE\tOVERSHOOT")
	for i, c := range candidates {
		if i >= top {
			break
		}
		fmt.Fprintf(w, "%d\t%.2f\t%.2f\t%.6f\t%.4f\t%.4f\n",
			i+1, c.Params["force"], c.Params["drag"], c.Score, c.Metrics["settle_time"], c.Metrics["overshoot"])
	}
	return w.Flush()
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/lookahead/internal/config"
	"github.com/san-kum/lookahead/internal/export"
	"github.com/san-kum/lookahead/internal/logging"
	"github.com/san-kum/lookahead/internal/metrics"
	"github.com/san-kum/lookahead/internal/obstacle"
	"github.com/san-kum/lookahead/internal/optim"
	"github.com/san-kum/lookahead/internal/sim"
	"github.com/san-kum/lookahead/internal/storage"
	"github.com/san-kum/lookahead/internal/viz"
)

var (
	dataDir    string
	debug      bool
	configFile string
	preset     string
	name       string
	save       bool
	// Mission overrides
	start      []float64
	goal       []float64
	yaw        float64
	acceptance float64
	duration   float64
	controlDt  float64
	integrator string
	// Search overrides
	weight        float64
	sensorRange   float64
	nodeDuration  float64
	maxExpansions int
	timeBudget    time.Duration
	// Output
	frameRate int
	workers   int
	width     int
	height    int
	output    string
	scale     float64
	// Grid search axes
	weights   []float64
	durations []float64
	ranges    []float64
	objective string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "lookahead",
		Short:         "real-time look-ahead motion planner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lookahead", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "build one look-ahead tree and print it",
		RunE:  planOnce,
	}
	addMissionFlags(planCmd)
	planCmd.Flags().BoolVar(&save, "save", false, "store the tree")
	planCmd.Flags().IntVar(&width, "width", 80, "view width in cells")
	planCmd.Flags().IntVar(&height, "height", 24, "view height in cells")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "fly a mission in closed loop and store it",
		RunE:  runMission,
	}
	addMissionFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "fly a mission with live visualization",
		RunE:  runLive,
	}
	addMissionFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 20, "control cycles per second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&output, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a whole run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "fly every preset and compare",
		RunE:  benchPresets,
	}
	benchCmd.Flags().IntVar(&workers, "workers", 0, "parallel missions (default NumCPU)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a stored run or plan to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().StringVarP(&output, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&width, "width", 100, "canvas width in cells")
	svgCmd.Flags().IntVar(&height, "height", 40, "canvas height in cells")
	svgCmd.Flags().Float64Var(&scale, "scale", 4, "pixels per dot")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search planner tunables on a mission",
		RunE:  tuneMission,
	}
	addMissionFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&weights, "weights", []float64{5, 10, 20}, "heuristic weights to try")
	tuneCmd.Flags().Float64SliceVar(&durations, "durations", []float64{0.3, 0.5, 0.8}, "edge durations to try")
	tuneCmd.Flags().Float64SliceVar(&ranges, "ranges", nil, "sensor ranges to try")
	tuneCmd.Flags().StringVar(&objective, "objective", "time", "time or a metric name")
	tuneCmd.Flags().IntVar(&workers, "workers", 0, "parallel missions (default NumCPU)")

	rootCmd.AddCommand(planCmd, runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, presetsCmd, benchCmd, svgCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addMissionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset scenario")
	f.StringVar(&name, "name", "", "scenario name for stored runs")
	f.Float64SliceVar(&start, "start", nil, "start position x,y,z")
	f.Float64SliceVar(&goal, "goal", nil, "goal position x,y,z")
	f.Float64Var(&yaw, "yaw", 0, "initial yaw in degrees")
	f.Float64Var(&acceptance, "acceptance", config.DefaultAcceptanceRadius, "goal acceptance radius")
	f.Float64Var(&duration, "time", config.DefaultDuration, "mission duration")
	f.Float64Var(&controlDt, "dt", config.DefaultControlDt, "control period")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "trajectory integrator")
	f.Float64Var(&weight, "weight", 0, "heuristic weight")
	f.Float64Var(&sensorRange, "range", 0, "max sensor range")
	f.Float64Var(&nodeDuration, "node-duration", 0, "edge trajectory length in seconds")
	f.IntVar(&maxExpansions, "max-expansions", 0, "expansion cap per tree")
	f.DurationVar(&timeBudget, "budget", 0, "wall-clock budget per tree")
}

func newLogger() *zap.SugaredLogger {
	if debug {
		return logging.NewDebugLogger("lookahead")
	}
	return logging.NewLogger("lookahead")
}

// resolveConfig layers the preset, the config file and then explicitly set
// flags on top of the defaults.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	scenario := "custom"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", errors.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		scenario = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to load config")
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		v, err := vec3("start", start)
		if err != nil {
			return nil, "", err
		}
		cfg.Mission.Start = v
	}
	if flags.Changed("goal") {
		v, err := vec3("goal", goal)
		if err != nil {
			return nil, "", err
		}
		cfg.Mission.Goal = v
	}
	if flags.Changed("yaw") {
		cfg.Mission.YawDeg = yaw
	}
	if flags.Changed("acceptance") {
		cfg.Mission.AcceptanceRadius = acceptance
	}
	if flags.Changed("time") {
		cfg.Mission.Duration = duration
	}
	if flags.Changed("dt") {
		cfg.Mission.ControlDt = controlDt
	}
	if flags.Changed("integrator") {
		cfg.Mission.Integrator = integrator
	}
	if flags.Changed("weight") {
		cfg.Planner.TreeHeuristicWeight = weight
	}
	if flags.Changed("range") {
		cfg.Planner.MaxSensorRange = sensorRange
	}
	if flags.Changed("node-duration") {
		cfg.Planner.TreeNodeDuration = nodeDuration
	}
	if flags.Changed("max-expansions") {
		cfg.Planner.MaxExpansions = maxExpansions
	}
	if flags.Changed("budget") {
		cfg.Planner.TimeBudget = timeBudget
	}
	if name != "" {
		scenario = name
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, scenario, nil
}

func vec3(flag string, v []float64) (config.Vec3, error) {
	if len(v) != 3 {
		return config.Vec3{}, errors.Errorf("--%s needs three values x,y,z, got %d", flag, len(v))
	}
	return config.V(v[0], v[1], v[2]), nil
}

func planOnce(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()
	defer logger.Sync()

	s, err := sim.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	points, err := cfg.ObstaclePoints()
	if err != nil {
		return err
	}

	began := time.Now()
	tree := s.Planner().BuildTree()
	elapsed := time.Since(began)

	fmt.Printf("termination: %s\n", tree.Termination)
	fmt.Printf("nodes: %d, expansions: %d, built in %v\n", len(tree.Nodes), tree.Expansions, elapsed)
	if tree.HasNext {
		c := tree.NextCommand
		fmt.Printf("next command: (%.3f, %.3f, %.3f)\n", c.X, c.Y, c.Z)
	} else {
		fmt.Println("next command: none (degenerate plan)")
	}
	fmt.Println("\npath:")
	for i, idx := range tree.PathIndices() {
		n := tree.Nodes[idx]
		p := n.Position()
		fmt.Printf("  %2d  node %-4d (%.2f, %.2f, %.2f)  f=%.2f\n", i, idx, p.X, p.Y, p.Z, n.F)
	}
	fmt.Println()
	fmt.Print(viz.RenderTree(tree, points, width, height))

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	id, err := st.SavePlan(scenario, cfg, tree)
	if err != nil {
		return err
	}
	fmt.Printf("\nplan id: %s\n", id)
	return nil
}

func runMission(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()
	defer logger.Sync()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := sim.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard(cfg.Mission.Start.R3(), s.Planner().Inputs().Obstacles) {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("flying %s mission...\n", scenario)
	began := time.Now()
	result, err := s.Run(ctx)
	if result == nil {
		return err
	}
	elapsed := time.Since(began)

	runID, saveErr := st.Save(scenario, cfg, result)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("outcome: %s\n", result.Outcome)
	fmt.Printf("steps: %d\n", len(result.Steps))
	fmt.Println("\nmetrics:")
	for _, k := range slices.Sorted(maps.Keys(result.Metrics)) {
		fmt.Printf("  %s: %.6f\n", k, result.Metrics[k])
	}
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// the terminal belongs to the view
	s, err := sim.FromConfig(cfg, logging.NewNop())
	if err != nil {
		return err
	}
	points, err := cfg.ObstaclePoints()
	if err != nil {
		return err
	}
	if frameRate <= 0 {
		frameRate = 20
	}

	m, err := viz.NewLiveModel(s, points, scenario, time.Second/time.Duration(frameRate))
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if lm, ok := final.(viz.LiveModel); ok {
		fmt.Printf("%s: %s after %d steps\n", scenario, lm.Outcome(), lm.Steps())
	}
	return nil
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
	fmt.Fprintln(w, "ID\tKIND\tSCENARIO\tTIME\tOUTCOME\tSTEPS\tNODES")

	for _, run := range runs {
		outcome := run.Outcome
		if run.Kind == storage.KindPlan {
			outcome = run.Termination
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Kind,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			outcome,
			run.Steps,
			run.TreeNodes,
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
	if meta.Kind != storage.KindRun {
		return errors.Errorf("%s is a %s, not a run", runID, meta.Kind)
	}

	rows, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return errors.New("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("outcome: %s\n", meta.Outcome)
	fmt.Printf("samples: %d\n\n", len(rows))

	series := []struct {
		caption string
		value   func(storage.TrajectoryRow) float64
	}{
		{"x position", func(r storage.TrajectoryRow) float64 { return r.State.Position.X }},
		{"y position", func(r storage.TrajectoryRow) float64 { return r.State.Position.Y }},
		{"altitude", func(r storage.TrajectoryRow) float64 { return r.State.Position.Z }},
		{"speed", func(r storage.TrajectoryRow) float64 { return r.State.Velocity.Norm() }},
		{"tree nodes", func(r storage.TrajectoryRow) float64 { return float64(r.TreeNodes) }},
	}

	for _, s := range series {
		data := make([]float64, len(rows))
		for i, r := range rows {
			data[i] = s.value(r)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if meta.Kind != storage.KindRun {
		return errors.Errorf("%s has no trajectory", runID)
	}

	in, err := os.Open(st.TrajectoryPath(runID))
	if err != nil {
		return errors.Wrap(err, "open trajectory")
	}
	defer in.Close()

	var out io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	_, err = io.Copy(out, in)
	return err
}

func benchPresets(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	defer logger.Sync()

	names := config.ListPresets()
	scenarios := make([]sim.Scenario, 0, len(names))
	for _, n := range names {
		scenarios = append(scenarios, sim.Scenario{Name: n, Config: config.GetPreset(n)})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	began := time.Now()
	results, err := sim.Batch(ctx, scenarios, sim.BatchOptions{
		Workers: workers,
		Logger:  logger,
		Metrics: func(cfg *config.Config, obstacles obstacle.Index) []sim.Metric {
			return metrics.Standard(cfg.Mission.Start.R3(), obstacles)
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("benchmarked %d presets in %v\n\n", len(results), time.Since(began))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tOUTCOME\tSTEPS\tFLIGHT\tPATH\tCLEARANCE\tMEAN NODES\tDEGENERATE")

	for i, r := range results {
		res := r.Result
		m := res.Metrics
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1fs\t%.2fm\t%s\t%.1f\t%.0f\n",
			r.Name,
			res.Outcome,
			len(res.Steps),
			float64(len(res.Steps))*scenarios[i].Config.Mission.ControlDt,
			m["path_length"],
			clearance(m["min_clearance"]),
			m["tree_size"],
			m["degenerate_plans"],
		)
	}

	return w.Flush()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	points, err := cfg.ObstaclePoints()
	if err != nil {
		return err
	}
	tree, err := st.LoadTree(runID)
	if err != nil {
		return err
	}

	goal := cfg.Mission.Goal.R3()
	scene := viz.Scene{
		Tree:             tree,
		Obstacles:        points,
		Goal:             &goal,
		AcceptanceRadius: cfg.Mission.AcceptanceRadius,
	}
	if meta.Kind == storage.KindRun {
		rows, err := st.LoadTrajectory(runID)
		if err != nil {
			return err
		}
		for _, r := range rows {
			scene.Trail = append(scene.Trail, r.State.Position)
		}
		if n := len(scene.Trail); n > 0 {
			scene.Vehicle = &scene.Trail[n-1]
		}
		scene.HideTree = true
	}

	svg := export.SceneToSVG(scene, width, height, scale)
	if output == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(output, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}

func tuneMission(cmd *cobra.Command, args []string) error {
	cfg, scenario, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger()
	defer logger.Sync()

	params := []optim.Param{
		{Name: optim.HeuristicWeight, Values: weights},
		{Name: optim.NodeDuration, Values: durations},
	}
	if len(ranges) > 0 {
		params = append(params, optim.Param{Name: optim.SensorRange, Values: ranges})
	}
	gs, err := optim.NewGridSearch(params...)
	if err != nil {
		return err
	}

	score := optim.FlightTime
	if objective != "time" {
		score = optim.Metric(objective)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("tuning %s over %d settings...\n\n", scenario, len(gs.Points()))
	best, trials, err := gs.Search(ctx, cfg, score, sim.BatchOptions{
		Workers: workers,
		Logger:  logger,
		Metrics: func(cfg *config.Config, obstacles obstacle.Index) []sim.Metric {
			return metrics.Standard(cfg.Mission.Start.R3(), obstacles)
		},
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := ""
	for _, p := range params {
		header += strings.ToUpper(p.Name) + "\t"
	}
	fmt.Fprintln(w, header+"OUTCOME\tSTEPS\tSCORE")
	for _, t := range trials {
		for _, p := range params {
			fmt.Fprintf(w, "%g\t", t.Params[p.Name])
		}
		fmt.Fprintf(w, "%s\t%d\t%.3f\n", t.Result.Outcome, len(t.Result.Steps), t.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if math.IsInf(best.Score, 1) {
		fmt.Println("\nno setting reached the goal")
		return nil
	}
	fmt.Println("\nbest:")
	for _, p := range params {
		fmt.Printf("  %s: %g\n", p.Name, best.Params[p.Name])
	}
	return nil
}

func clearance(v float64) string {
	if v == metrics.NoClearance {
		return "-"
	}
	return fmt.Sprintf("%.2fm", v)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/armsim/internal/analysis"
	"github.com/san-kum/armsim/internal/arm"
	"github.com/san-kum/armsim/internal/automation"
	"github.com/san-kum/armsim/internal/config"
	"github.com/san-kum/armsim/internal/experiment"
	"github.com/san-kum/armsim/internal/export"
	"github.com/san-kum/armsim/internal/optim"
	"github.com/san-kum/armsim/internal/sim"
	"github.com/san-kum/armsim/internal/storage"
	"github.com/san-kum/armsim/internal/viz"
)

// resolveConfig layers preset, config file and explicitly set flags, in that
// order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	changed := cmd.Flags().Changed
	if changed("episodes") {
		cfg.Episodes = episodes
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("controller") {
		cfg.Controller.Name = controller
	}
	if changed("kv") {
		cfg.Controller.Kv = kv
	}
	if changed("kb") {
		cfg.Controller.Kb = kb
	}
	if changed("k1") {
		cfg.Controller.K1 = k1
	}
	if changed("k2") {
		cfg.Controller.K2 = k2
	}
	if changed("link1") {
		cfg.Arm.Link1 = link1
	}
	if changed("link2") {
		cfg.Arm.Link2 = link2
	}
	if changed("dt") {
		cfg.Episode.Dt = dt
	}
	if changed("tolerance") {
		cfg.Episode.Tolerance = tolerance
	}
	if changed("boundary") {
		cfg.Episode.Boundary = boundary
	}
	if changed("target-speed") {
		cfg.Episode.TargetSpeed = targetSpeed
	}
	if changed("max-steps") {
		cfg.Episode.MaxSteps = maxSteps
	}
	if changed("kp") {
		cfg.Controller.Kp = kp
	}
	if changed("ki") {
		cfg.Controller.Ki = ki
	}
	if changed("kd") {
		cfg.Controller.Kd = kd
	}
	if changed("sigma") {
		cfg.Noise.Sigma = sigma
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Infow("running episodes", "episodes", cfg.Episodes, "controller", cfg.Controller.Name, "seed", cfg.Seed)
	start := time.Now()
	results, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPISODE\tOUTCOME\tSTEPS\tRETURN\tMIN DIST\tRUN ID")
	for i, res := range results {
		runID := "-"
		if st != nil {
			runID, err = st.Save(storage.RunMetadata{
				Seed:       cfg.Seed,
				Episode:    i,
				Controller: cfg.Controller.Name,
				Config:     cfg.Arm(),
			}, res)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.3f\t%s\n",
			i, res.Outcome, res.Steps, res.Return, res.Metrics["min_distance"], runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c := results[len(results)-1].Counters
	fmt.Printf("\ncompleted in %v\n", elapsed)
	fmt.Printf("successes: %d  out of bounds: %d  timeouts: %d\n", c.Successes, c.OutOfBounds, c.Timeouts)
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if numRuns <= 0 {
		return fmt.Errorf("run count must be positive, got %d", numRuns)
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := exp.Ensemble(numRuns).Run(ctx)
	if err != nil {
		return err
	}
	s := sim.Summarize(results)
	logger.Infow("ensemble finished", "runs", s.Episodes, "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUNS\tSUCCESS\tOUT OF BOUNDS\tTIMEOUT\tMEAN RETURN\tMEAN STEPS")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.2f\t%.1f\n",
		s.Episodes, s.Successes, s.OutOfBounds, s.Timeouts, s.MeanReturn, s.MeanSteps)
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	var st *storage.Store
	if saveSteps {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunScenario(ctx, scenario, st, logger)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tEPISODES\tSUCCESS\tOUT OF BOUNDS\tTIMEOUT\tMEAN RETURN\tSAVED")
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%.2f\t%d\n",
			r.Step, s.Episodes, s.Successes, s.OutOfBounds, s.Timeouts, s.MeanReturn, len(r.RunIDs))
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
		Runs:     sweepRuns,
	}, logger)
	if errors.Is(err, config.ErrUnknownKey) {
		return fmt.Errorf("%w (keys: %v)", err, config.Keys())
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSUCCESS\tOUT OF BOUNDS\tTIMEOUT\tMEAN RETURN\tMEAN STEPS\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		s := r.Summary
		fmt.Fprintf(w, "%g\t%d\t%d\t%d\t%.2f\t%.1f\n",
			r.ParamValue, s.Successes, s.OutOfBounds, s.Timeouts, s.MeanReturn, s.MeanSteps)
	}
	return w.Flush()
}

// parseGrid turns "name=v1,v2,..." specs into search axes.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid param %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("param %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if tuneRuns <= 0 {
		return fmt.Errorf("run count must be positive, got %d", tuneRuns)
	}
	exp, err := experiment.New(cfg, logger)
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(tuneParams)
	if err != nil {
		return err
	}
	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Infow("tuning", "controller", cfg.Controller.Name, "assignments", grid.Size(), "runs", tuneRuns)
	start := time.Now()
	best, score, err := grid.Search(ctx, exp.GainObjective(tuneRuns))
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("searched %d assignments in %v\n", grid.Size(), time.Since(start))
	fmt.Printf("best mean return: %.3f\n", score)
	for _, k := range keys {
		fmt.Printf("  %s: %g\n", k, best[k])
	}
	return nil
}

func benchEngine(cmd *cobra.Command, args []string) error {
	dts := []float64{0.001, 0.01, 0.05}

	fmt.Printf("benchmarking %s controller\n\n", benchController)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tEPISODES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, step := range dts {
		cfg := config.DefaultConfig()
		cfg.Controller.Name = benchController
		cfg.Episode.Dt = step
		cfg.Episode.MaxSteps = int(math.Round(10 / step))
		cfg.Episodes = 10
		cfg.Seed = 42

		exp, err := experiment.New(cfg, nil)
		if err != nil {
			return err
		}

		start := time.Now()
		results, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		steps := 0
		for _, r := range results {
			steps += r.Steps
		}
		fmt.Fprintf(w, "%.3fs\t%d\t%d\t%v\t%.0f\n",
			step, len(results), steps, elapsed, float64(steps)/elapsed.Seconds())
	}
	return w.Flush()
}

// loadRun resolves "latest" and loads metadata and trajectory of a run.
func loadRun(id string) (*storage.RunMetadata, []arm.Snapshot, error) {
	st := storage.New(dataDir)
	if id == "latest" {
		latest, err := st.Latest()
		if err != nil {
			return nil, nil, err
		}
		id = latest
	}
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	snaps, err := st.LoadTrajectory(id)
	if err != nil {
		return nil, nil, err
	}
	return meta, snaps, nil
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
	fmt.Fprintln(w, "ID\tTIME\tCTRL\tSEED\tEP\tOUTCOME\tSTEPS\tRETURN")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%.2f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Controller,
			run.Seed,
			run.Episode,
			run.Outcome,
			run.Steps,
			run.Return,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(snaps) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("outcome: %s after %d steps\n", meta.Outcome, meta.Steps)
	fmt.Printf("return: %.3f\n\n", meta.Return)

	rewards := make([]float64, len(snaps))
	for i, s := range snaps {
		rewards[i] = s.Reward
	}

	fmt.Println(asciigraph.Plot(analysis.Distances(snaps),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("end effector to target distance"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(rewards,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("reward"),
	))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	rep, err := analysis.Analyze(snaps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run\t%s\n", meta.ID)
	fmt.Fprintf(w, "outcome\t%s after %d steps (%.2fs)\n", meta.Outcome, rep.Steps, rep.Duration)
	fmt.Fprintf(w, "return\t%.3f (mean %.3f per step)\n", rep.Return, rep.MeanReward)
	fmt.Fprintf(w, "distance\tfinal %.3f  min %.3f at %.2fs  mean %.3f ± %.3f\n",
		rep.FinalDistance, rep.MinDistance, rep.MinDistanceTime, rep.MeanDistance, rep.StdDistance)
	fmt.Fprintf(w, "path length\ttip %.3f  base %.3f  target %.3f\n", rep.TipPath, rep.BasePath, rep.TargetPath)
	if len(snaps) > 1 {
		spectrum := analysis.PowerSpectrum(analysis.HeadingRates(snaps), meta.Config.Dt)
		fmt.Fprintf(w, "target turn peak\t%.3f Hz\n", spectrum.Peak())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if portrait := analysis.PortraitToASCII(analysis.ClosingPortrait(snaps), 70, 18); portrait != "" {
		fmt.Println()
		fmt.Println("distance vs closing speed")
		fmt.Print(portrait)
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	m := viz.NewReplay(snaps, meta.Config, meta.ID, meta.Outcome).WithTheme(theme)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outputPath == "" {
		return export.JSON(os.Stdout, *meta, snaps)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.JSON(f, *meta, snaps); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outputPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}
	svg := export.TrajectorySVG(snaps, meta.Config.Boundary, 600, 600)
	if svg == "" {
		return fmt.Errorf("no data to export")
	}

	path := outputPath
	if path == "" {
		path = meta.ID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	meta, snaps, err := loadRun(args[0])
	if err != nil {
		return err
	}

	path := outputPath
	if path == "" {
		path = meta.ID + ".png"
	}
	if rewardPlot {
		err = export.RewardPNG(path, snaps)
	} else {
		err = export.TrajectoryPNG(path, snaps, meta.Config.Boundary)
	}
	if err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", filepath.Clean(path))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tTOLERANCE\tBOUNDARY\tTARGET SPEED\tMAX STEPS\tSIGMA")
	for _, name := range config.ListPresets() {
		p, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.3f\t%d\t%.2f\t%d\t%.2f\n",
			name, p.Episode.Tolerance, p.Episode.Boundary, p.Episode.TargetSpeed, p.Episode.MaxSteps, p.Noise.Sigma)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetPreset(initPreset)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s preset to %s\n", initPreset, args[0])
	return nil
}

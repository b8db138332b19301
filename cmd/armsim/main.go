package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/armsim/internal/logging"
)

var (
	dataDir string
	debug   bool
	logger  = logging.Nop()

	// Episode overrides. Each is applied only when its flag is set.
	configFile  string
	preset      string
	episodes    int
	seed        int64
	controller  string
	kv, kb      float64
	k1, k2      float64
	kp, ki, kd  float64
	link1       float64
	link2       float64
	dt          float64
	tolerance   float64
	boundary    int
	targetSpeed float64
	maxSteps    int
	sigma       float64
	noSave      bool

	initPreset      string
	numRuns         int
	outputPath      string
	benchController string
	tuneParams      []string
	tuneRuns        int
	theme           string
	rewardPlot      bool

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	sweepRuns  int
	saveSteps  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "armsim",
		Short:         "planar two-link arm chasing a moving target",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New("armsim", debug)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".armsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run episodes and store them",
		Args:  cobra.NoArgs,
		RunE:  runEpisodes,
	}
	addEpisodeFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run independently seeded episodes in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addEpisodeFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 16, "number of parallel episodes")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark engine throughput for several timesteps",
		Args:  cobra.NoArgs,
		RunE:  benchEngine,
	}
	benchCmd.Flags().StringVar(&benchController, "controller", "tracking", "controller")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search controller gains by mean ensemble return",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	addEpisodeFlags(tuneCmd)
	tuneCmd.Flags().IntVar(&tuneRuns, "runs", 8, "episodes per gain assignment")
	tuneCmd.Flags().StringArrayVar(&tuneParams, "param", []string{"kv=0.5,1,2"}, "gain and candidate values, e.g. kb=0.5,1,2")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of preset-based steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveSteps, "save", true, "store runs of steps marked save")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one config key and summarise an ensemble at each value",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addEpisodeFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "target_speed", "config key to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 8, "episodes per value")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id|latest]",
		Short: "plot reward and distance of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id|latest]",
		Short: "distance statistics, path lengths and target turn spectrum of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id|latest]",
		Short: "animate a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().StringVar(&theme, "theme", "workshop", "color theme (workshop, phosphor, blueprint, mono)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id|latest]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id|latest]",
		Short: "export the run trajectory as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default <run_id>.svg)")

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id|latest]",
		Short: "plot the run trajectory to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default <run_id>.png)")
	exportPNGCmd.Flags().BoolVar(&rewardPlot, "reward", false, "plot reward over time instead of the paths")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file with the default or a preset configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initConfigCmd.Flags().StringVar(&initPreset, "preset", "default", "preset to write")

	rootCmd.AddCommand(runCmd, ensembleCmd, tuneCmd, sweepCmd, scenarioCmd, benchCmd, listCmd, plotCmd, analyzeCmd, replayCmd,
		exportJSONCmd, exportSVGCmd, exportPNGCmd, presetsCmd, initConfigCmd)

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addEpisodeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.IntVar(&episodes, "episodes", 1, "number of episodes")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.StringVar(&controller, "controller", "tracking", "controller")
	f.Float64Var(&kv, "kv", 1, "tracking forward gain")
	f.Float64Var(&kb, "kb", 1, "tracking base turn gain")
	f.Float64Var(&k1, "k1", 1, "tracking joint1 gain")
	f.Float64Var(&k2, "k2", 1, "tracking joint2 gain")
	f.Float64Var(&kp, "kp", 1, "pid proportional gain")
	f.Float64Var(&ki, "ki", 0, "pid integral gain")
	f.Float64Var(&kd, "kd", 0.05, "pid derivative gain")
	f.Float64Var(&link1, "link1", 1, "first link length")
	f.Float64Var(&link2, "link2", 1, "second link length")
	f.Float64Var(&dt, "dt", 0.01, "timestep")
	f.Float64Var(&tolerance, "tolerance", 0.1, "success distance")
	f.IntVar(&boundary, "boundary", 5, "workspace half width")
	f.Float64Var(&targetSpeed, "target-speed", 1.2, "target forward speed")
	f.IntVar(&maxSteps, "max-steps", 1000, "steps before timeout")
	f.Float64Var(&sigma, "sigma", 0.2, "target heading noise")
}

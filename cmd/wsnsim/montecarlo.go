package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wsnlab/wsnsim/datarecording"
	"github.com/wsnlab/wsnsim/montecarlo"
	"github.com/wsnlab/wsnsim/monitoring"
	"github.com/wsnlab/wsnsim/sim"
)

// sweepConfig is the YAML shape of an experiment definition.
type sweepConfig struct {
	LossRates        []float64 `yaml:"loss_rates"`
	MaxTransmissions []int     `yaml:"max_transmissions"`
	RunsPerCell      int       `yaml:"runs_per_cell"`
	FirstSeed        int64     `yaml:"first_seed"`
	MaxHops          int       `yaml:"max_hops"`
	GuardTime        float64   `yaml:"guard_time"`
	Horizon          float64   `yaml:"horizon"`
	EnableCI         bool      `yaml:"enable_ci"`
}

type monteCarloOptions struct {
	configPath string

	lossRates        []float64
	maxTransmissions []int
	runsPerCell      int
	firstSeed        int64
	maxHops          int
	guardTime        float64
	horizon          float64
	enableCI         bool

	monitor     bool
	monitorPort int
	monitorOpen bool

	recordPath string
}

func newMonteCarloCommand() *cobra.Command {
	opts := &monteCarloOptions{}

	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Sweep loss rates, retransmissions, and seeds over many runs",
		Long: `Run one deterministic simulation per (loss rate, max transmissions,
seed) combination and record one results row per run into a SQLite
database.

Example:
  wsnsim montecarlo --loss-rates 0.5,0.6,0.7 --max-transmissions-list 1,2,4 --runs 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMonteCarlo(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "",
		"YAML experiment definition; explicit flags override it")

	cmd.Flags().Float64SliceVar(&opts.lossRates, "loss-rates",
		[]float64{0.5, 0.6, 0.7}, "loss rates to sweep")
	cmd.Flags().IntSliceVar(&opts.maxTransmissions, "max-transmissions-list",
		[]int{1, 2, 4}, "max transmissions values to sweep")
	cmd.Flags().IntVar(&opts.runsPerCell, "runs",
		envInt("WSNSIM_RUNS_PER_CELL", 500),
		"seeded runs per parameter combination")
	cmd.Flags().Int64Var(&opts.firstSeed, "first-seed", 0,
		"seed of the first run in each cell")
	cmd.Flags().IntVar(&opts.maxHops, "max-hops",
		envInt("WSNSIM_MAX_HOPS", 4),
		"grid radius; the network holds (2n+1)^2 nodes")
	cmd.Flags().Float64Var(&opts.guardTime, "guard-time",
		envFloat("WSNSIM_GUARD_TIME", 100), "delay between relay slots in ms")
	cmd.Flags().Float64Var(&opts.horizon, "horizon", 0,
		"stop each run at this virtual time in ms; 0 runs to completion")
	cmd.Flags().BoolVar(&opts.enableCI, "ci", false,
		"let identical overlapping frames interfere constructively")

	cmd.Flags().BoolVar(&opts.monitor, "monitor", false,
		"serve sweep progress over the monitoring API")
	cmd.Flags().IntVar(&opts.monitorPort, "monitor-port", 0,
		"port of the monitoring server; 0 picks a free port")
	cmd.Flags().BoolVar(&opts.monitorOpen, "monitor-open", false,
		"open the monitor page in the default browser")

	cmd.Flags().StringVar(&opts.recordPath, "record-path", "",
		"database path without extension; empty generates a unique name")

	return cmd
}

func runMonteCarlo(cmd *cobra.Command, opts *monteCarloOptions) error {
	sweep, err := assembleSweep(cmd, opts)
	if err != nil {
		return err
	}

	recorder := datarecording.New(opts.recordPath)

	runner := montecarlo.NewRunner(sweep, recorder)
	if opts.monitor {
		monitor := monitoring.NewMonitor()
		if opts.monitorPort > 0 {
			monitor.WithPortNumber(opts.monitorPort)
		}
		if opts.monitorOpen {
			monitor.WithBrowser()
		}
		monitor.StartServer()
		runner = runner.WithMonitor(monitor)
	}

	if err := runner.Run(); err != nil {
		return err
	}

	fmt.Printf("Completed %d runs\n", sweep.RunCount())

	return recorder.Close()
}

// assembleSweep merges the YAML experiment definition, if any, with the
// flags. Explicitly set flags win over the file.
func assembleSweep(
	cmd *cobra.Command,
	opts *monteCarloOptions,
) (montecarlo.Sweep, error) {
	if opts.configPath != "" {
		raw, err := os.ReadFile(opts.configPath)
		if err != nil {
			return montecarlo.Sweep{}, err
		}

		cfg := sweepConfig{}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return montecarlo.Sweep{},
				fmt.Errorf("parse %s: %w", opts.configPath, err)
		}

		applySweepConfig(cmd, opts, cfg)
	}

	return montecarlo.Sweep{
		LossRates:        opts.lossRates,
		MaxTransmissions: opts.maxTransmissions,
		RunsPerCell:      opts.runsPerCell,
		FirstSeed:        opts.firstSeed,
		MaxHops:          opts.maxHops,
		GuardTime:        sim.VTimeInMs(opts.guardTime),
		Horizon:          sim.VTimeInMs(opts.horizon),
		EnableCI:         opts.enableCI,
	}, nil
}

func applySweepConfig(
	cmd *cobra.Command,
	opts *monteCarloOptions,
	cfg sweepConfig,
) {
	flags := cmd.Flags()

	if !flags.Changed("loss-rates") && cfg.LossRates != nil {
		opts.lossRates = cfg.LossRates
	}
	if !flags.Changed("max-transmissions-list") && cfg.MaxTransmissions != nil {
		opts.maxTransmissions = cfg.MaxTransmissions
	}
	if !flags.Changed("runs") && cfg.RunsPerCell != 0 {
		opts.runsPerCell = cfg.RunsPerCell
	}
	if !flags.Changed("first-seed") {
		opts.firstSeed = cfg.FirstSeed
	}
	if !flags.Changed("max-hops") && cfg.MaxHops != 0 {
		opts.maxHops = cfg.MaxHops
	}
	if !flags.Changed("guard-time") && cfg.GuardTime != 0 {
		opts.guardTime = cfg.GuardTime
	}
	if !flags.Changed("horizon") && cfg.Horizon != 0 {
		opts.horizon = cfg.Horizon
	}
	if !flags.Changed("ci") && cfg.EnableCI {
		opts.enableCI = true
	}
}

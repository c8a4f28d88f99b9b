package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wsnlab/wsnsim/datarecording"
	"github.com/wsnlab/wsnsim/montecarlo"
	"github.com/wsnlab/wsnsim/network"
	"github.com/wsnlab/wsnsim/results"
	"github.com/wsnlab/wsnsim/sim"
)

type runOptions struct {
	maxHops          int
	lossRate         float64
	maxTransmissions int
	guardTime        float64
	seed             int64
	horizon          float64
	jitter           float64
	enableCI         bool
	debug            bool

	monitor     bool
	monitorPort int
	monitorOpen bool

	record     bool
	recordPath string
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one flooding simulation",
		Long: `Run one deterministic flooding simulation and print the outcome.

Example:
  wsnsim run --max-hops 4 --loss-rate 0.6 --max-transmissions 2 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSimulation(opts)
		},
	}

	addExperimentFlags(cmd, opts)
	cmd.Flags().Int64Var(&opts.seed, "seed",
		envInt64("WSNSIM_SEED", 0), "random seed of the run")

	return cmd
}

// addExperimentFlags registers the flags shared by run and montecarlo.
func addExperimentFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().IntVar(&opts.maxHops, "max-hops",
		envInt("WSNSIM_MAX_HOPS", 4),
		"grid radius; the network holds (2n+1)^2 nodes")
	cmd.Flags().Float64Var(&opts.lossRate, "loss-rate",
		envFloat("WSNSIM_LOSS_RATE", 0.6),
		"per-reception channel loss probability")
	cmd.Flags().IntVar(&opts.maxTransmissions, "max-transmissions",
		envInt("WSNSIM_MAX_TRANSMISSIONS", 1),
		"number of retransmissions per node per flood")
	cmd.Flags().Float64Var(&opts.guardTime, "guard-time",
		envFloat("WSNSIM_GUARD_TIME", 100),
		"delay between relay slots in ms")
	cmd.Flags().Float64Var(&opts.horizon, "horizon", 0,
		"stop the run at this virtual time in ms; 0 runs to completion")
	cmd.Flags().Float64Var(&opts.jitter, "jitter", 0,
		"maximum random slot jitter in ms")
	cmd.Flags().BoolVar(&opts.enableCI, "ci", false,
		"let identical overlapping frames interfere constructively")
	cmd.Flags().BoolVar(&opts.debug, "debug", false,
		"print per-node protocol traces")

	cmd.Flags().BoolVar(&opts.monitor, "monitor", false,
		"serve the monitoring API while the simulation runs")
	cmd.Flags().IntVar(&opts.monitorPort, "monitor-port", 0,
		"port of the monitoring server; 0 picks a free port")
	cmd.Flags().BoolVar(&opts.monitorOpen, "monitor-open", false,
		"open the monitor page in the default browser")

	cmd.Flags().BoolVar(&opts.record, "record", false,
		"write results into a SQLite database")
	cmd.Flags().StringVar(&opts.recordPath, "record-path", "",
		"database path without extension; empty generates a unique name")
}

func (opts *runOptions) networkBuilder() network.Builder {
	builder := network.MakeBuilder().
		WithMaxHops(opts.maxHops).
		WithLossRate(opts.lossRate).
		WithMaxTransmissions(opts.maxTransmissions).
		WithGuardTime(sim.VTimeInMs(opts.guardTime)).
		WithSeed(opts.seed)

	if opts.horizon > 0 {
		builder = builder.WithHorizon(sim.VTimeInMs(opts.horizon))
	}
	if opts.jitter > 0 {
		builder = builder.WithJitter(sim.VTimeInMs(opts.jitter))
	}
	if opts.enableCI {
		builder = builder.WithConstructiveInterference()
	}
	if opts.debug {
		builder = builder.WithDebugLog(os.Stderr)
	}
	if opts.monitor {
		builder = builder.WithMonitor(opts.monitorPort)
		if opts.monitorOpen {
			builder = builder.WithMonitorBrowser()
		}
	}

	return builder
}

func runSimulation(opts *runOptions) error {
	nw, err := opts.networkBuilder().Build()
	if err != nil {
		return err
	}

	snapshots, err := nw.Run()
	if err != nil {
		return err
	}

	res := results.Collect(nw.Config(), snapshots)
	printResults(res)

	if opts.record {
		recorder := datarecording.New(opts.recordPath)
		recorder.CreateTable(montecarlo.ResultsTable, res)
		recorder.InsertData(montecarlo.ResultsTable, res)
		recorder.Flush()
	}

	return nil
}

func printResults(res results.SimulationResults) {
	fmt.Println("Run results:")
	fmt.Printf("  max_transmissions:   %d\n", res.MaxTransmissions)
	fmt.Printf("  loss_rate:           %g\n", res.LossRate)
	fmt.Printf("  guard_time:          %g\n", res.GuardTime)
	fmt.Printf("  seed:                %d\n", res.Seed)
	fmt.Printf("  max_hops:            %d\n", res.MaxHops)
	fmt.Printf("  device_count:        %d\n", res.DeviceCount)
	fmt.Printf("  flood_coverage:      %.4f\n", res.FloodCoverage)
	fmt.Printf("  flood_success:       %t\n", res.FloodSuccess)
	fmt.Printf("  completion_time:     %.3f\n", float64(res.CompletionTime))
	fmt.Printf("  total_transmissions: %d\n", res.TotalTransmissions)
}

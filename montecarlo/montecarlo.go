// Package montecarlo runs batches of independent simulations over a
// parameter sweep and records one results row per run.
package montecarlo

import (
	"fmt"

	"github.com/wsnlab/wsnsim/datarecording"
	"github.com/wsnlab/wsnsim/monitoring"
	"github.com/wsnlab/wsnsim/network"
	"github.com/wsnlab/wsnsim/results"
	"github.com/wsnlab/wsnsim/sim"
)

// ResultsTable is the table the sweep writes its rows into.
const ResultsTable = "simulation_results"

// Sweep describes the parameter grid of a batch experiment. Every
// combination of loss rate and max transmissions is simulated once per
// seed.
type Sweep struct {
	LossRates        []float64
	MaxTransmissions []int

	// RunsPerCell is the number of seeded runs per parameter combination.
	// Seeds count up from FirstSeed.
	RunsPerCell int
	FirstSeed   int64

	MaxHops   int
	GuardTime sim.VTimeInMs
	Horizon   sim.VTimeInMs
	EnableCI  bool
}

// RunCount returns the total number of simulations the sweep performs.
func (s Sweep) RunCount() int {
	return len(s.LossRates) * len(s.MaxTransmissions) * s.RunsPerCell
}

func (s Sweep) validate() error {
	if len(s.LossRates) == 0 {
		return fmt.Errorf("sweep needs at least one loss rate")
	}
	if len(s.MaxTransmissions) == 0 {
		return fmt.Errorf("sweep needs at least one max transmissions value")
	}
	if s.RunsPerCell < 1 {
		return fmt.Errorf("sweep needs at least one run per cell, got %d",
			s.RunsPerCell)
	}
	if s.MaxHops < 1 {
		return fmt.Errorf("max hops must be at least 1, got %d", s.MaxHops)
	}
	return nil
}

// A Runner executes a sweep, one deterministic simulation per cell.
type Runner struct {
	sweep    Sweep
	recorder datarecording.DataRecorder
	monitor  *monitoring.Monitor
}

// NewRunner creates a Runner writing rows through the given recorder.
func NewRunner(sweep Sweep, recorder datarecording.DataRecorder) *Runner {
	return &Runner{
		sweep:    sweep,
		recorder: recorder,
	}
}

// WithMonitor makes the sweep progress observable through a monitor.
func (r *Runner) WithMonitor(m *monitoring.Monitor) *Runner {
	r.monitor = m
	return r
}

// Run executes every cell of the sweep in a fixed order, so a sweep with
// the same parameters always produces the same rows.
func (r *Runner) Run() error {
	if err := r.sweep.validate(); err != nil {
		return err
	}

	r.recorder.CreateTable(ResultsTable, results.SimulationResults{})

	var bar *monitoring.ProgressBar
	if r.monitor != nil {
		bar = r.monitor.CreateProgressBar(
			"Monte Carlo sweep", uint64(r.sweep.RunCount()))
	}

	for _, maxTx := range r.sweep.MaxTransmissions {
		for _, lossRate := range r.sweep.LossRates {
			for i := 0; i < r.sweep.RunsPerCell; i++ {
				seed := r.sweep.FirstSeed + int64(i)

				res, err := r.runOnce(lossRate, maxTx, seed)
				if err != nil {
					return fmt.Errorf(
						"run with loss %g, tx %d, seed %d: %w",
						lossRate, maxTx, seed, err)
				}

				r.recorder.InsertData(ResultsTable, res)

				if bar != nil {
					bar.IncrementFinished(1)
				}
			}
		}
	}

	r.recorder.Flush()

	if bar != nil {
		r.monitor.CompleteProgressBar(bar)
	}

	return nil
}

func (r *Runner) runOnce(
	lossRate float64,
	maxTx int,
	seed int64,
) (results.SimulationResults, error) {
	builder := network.MakeBuilder().
		WithMaxHops(r.sweep.MaxHops).
		WithLossRate(lossRate).
		WithMaxTransmissions(maxTx).
		WithSeed(seed)

	if r.sweep.GuardTime > 0 {
		builder = builder.WithGuardTime(r.sweep.GuardTime)
	}
	if r.sweep.Horizon > 0 {
		builder = builder.WithHorizon(r.sweep.Horizon)
	}
	if r.sweep.EnableCI {
		builder = builder.WithConstructiveInterference()
	}

	nw, err := builder.Build()
	if err != nil {
		return results.SimulationResults{}, err
	}

	snapshots, err := nw.Run()
	if err != nil {
		return results.SimulationResults{}, err
	}

	return results.Collect(nw.Config(), snapshots), nil
}

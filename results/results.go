// Package results aggregates the final node snapshots of a run into a
// summary of the flooding outcome. It is purely observational and never
// influences protocol behavior or simulation timing.
package results

import (
	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/network"
	"github.com/wsnlab/wsnsim/node"
	"github.com/wsnlab/wsnsim/sim"
)

// SimulationResults is an immutable summary of one simulation run.
type SimulationResults struct {
	MaxTransmissions int
	LossRate         float64
	GuardTime        float64
	Seed             int64
	MaxHops          int

	// DeviceCount is the number of nodes in the network.
	DeviceCount int

	// FloodSuccess reports whether every node received the flood.
	FloodSuccess bool

	// FloodCoverage is the fraction of nodes the flood reached.
	FloodCoverage float64

	// CompletionTime is the time the last node first received the flood.
	// It is only meaningful when the flood succeeded.
	CompletionTime sim.VTimeInMs

	// TotalTransmissions counts the frames put on the air by all nodes.
	TotalTransmissions int
}

// Collect computes the run summary from the final node snapshots.
func Collect(
	cfg network.Config,
	snapshots map[medium.NodeID]node.Snapshot,
) SimulationResults {
	res := SimulationResults{
		MaxTransmissions: cfg.MaxTransmissions,
		LossRate:         cfg.LossRate,
		GuardTime:        float64(cfg.GuardTime),
		Seed:             cfg.Seed,
		MaxHops:          cfg.MaxHops,
		DeviceCount:      len(snapshots),
	}

	reached := 0
	for _, snap := range snapshots {
		if len(snap.FloodIDs) > 0 {
			reached++
		}
		res.TotalTransmissions += snap.TxCount
	}

	if res.DeviceCount > 0 {
		res.FloodCoverage = float64(reached) / float64(res.DeviceCount)
	}
	res.FloodSuccess = res.FloodCoverage == 1.0

	if res.FloodSuccess {
		res.CompletionTime = completionTime(snapshots)
	}

	return res
}

// completionTime returns the latest first-reception time across all nodes
// and floods.
func completionTime(snapshots map[medium.NodeID]node.Snapshot) sim.VTimeInMs {
	var latest sim.VTimeInMs
	for _, snap := range snapshots {
		for _, times := range snap.RxTimes {
			if len(times) == 0 {
				continue
			}
			first := times[0]
			for _, t := range times[1:] {
				if t < first {
					first = t
				}
			}
			if first > latest {
				latest = first
			}
		}
	}
	return latest
}

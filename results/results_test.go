package results_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/network"
	"github.com/wsnlab/wsnsim/node"
	"github.com/wsnlab/wsnsim/results"
	"github.com/wsnlab/wsnsim/sim"
)

func rx(flood string, times ...sim.VTimeInMs) map[string][]sim.VTimeInMs {
	return map[string][]sim.VTimeInMs{flood: times}
}

func testConfig() network.Config {
	return network.Config{
		MaxHops:          1,
		LossRate:         0.5,
		GuardTime:        50,
		MaxTransmissions: 2,
		Seed:             7,
	}
}

func TestCollectFullCoverage(t *testing.T) {
	snapshots := map[medium.NodeID]node.Snapshot{
		1: {
			ID: 1, Kind: node.KindSink, TxCount: 3,
			FloodIDs: []string{"f"},
			RxTimes:  rx("f", 100),
		},
		2: {
			ID: 2, Kind: node.KindSensor, TxCount: 2,
			FloodIDs: []string{"f"},
			RxTimes:  rx("f", 151, 101),
		},
	}

	res := results.Collect(testConfig(), snapshots)

	assert.Equal(t, 2, res.DeviceCount)
	assert.True(t, res.FloodSuccess)
	assert.Equal(t, 1.0, res.FloodCoverage)
	assert.Equal(t, 5, res.TotalTransmissions)

	// Completion is the latest first reception, not the latest reception.
	assert.InDelta(t, 101, float64(res.CompletionTime), 1e-9)
}

func TestCollectPartialCoverage(t *testing.T) {
	snapshots := map[medium.NodeID]node.Snapshot{
		1: {ID: 1, FloodIDs: []string{"f"}, TxCount: 1},
		2: {ID: 2, TxCount: 0},
		3: {ID: 3, TxCount: 0},
		4: {ID: 4, FloodIDs: []string{"f"}, TxCount: 1},
	}

	res := results.Collect(testConfig(), snapshots)

	assert.False(t, res.FloodSuccess)
	assert.Equal(t, 0.5, res.FloodCoverage)
	assert.Zero(t, res.CompletionTime)
	assert.Equal(t, 2, res.TotalTransmissions)
}

func TestCollectEmptyNetwork(t *testing.T) {
	res := results.Collect(testConfig(), nil)

	assert.Zero(t, res.DeviceCount)
	assert.Zero(t, res.FloodCoverage)
	assert.False(t, res.FloodSuccess)
}

package network_test

import (
	"bytes"
	"fmt"
	"sort"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/network"
	"github.com/wsnlab/wsnsim/node"
	"github.com/wsnlab/wsnsim/results"
)

// TestLosslessFloodBaseline pins the full outcome of a small lossless run.
// Any change to event ordering, topology construction, or collision rules
// shows up as a diff against the golden file.
func TestLosslessFloodBaseline(t *testing.T) {
	nw, err := network.MakeBuilder().
		WithMaxHops(1).
		WithLossRate(0).
		WithSeed(42).
		WithHorizon(1000).
		Build()
	require.NoError(t, err)

	snapshots, err := nw.Run()
	require.NoError(t, err)

	res := results.Collect(nw.Config(), snapshots)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "lossless_flood_hop1", renderRun(res, snapshots))
}

// renderRun formats a run outcome as stable text.
func renderRun(
	res results.SimulationResults,
	snapshots map[medium.NodeID]node.Snapshot,
) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf,
		"max_hops=%d loss_rate=%g guard_time=%g max_transmissions=%d seed=%d\n",
		res.MaxHops, res.LossRate, res.GuardTime, res.MaxTransmissions, res.Seed)
	fmt.Fprintf(&buf,
		"devices=%d coverage=%.3f success=%t completion=%.3f total_tx=%d\n",
		res.DeviceCount, res.FloodCoverage, res.FloodSuccess,
		float64(res.CompletionTime), res.TotalTransmissions)

	ids := make([]medium.NodeID, 0, len(snapshots))
	for id := range snapshots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		snap := snapshots[id]
		rxTime, _ := firstRx(snap)
		fmt.Fprintf(&buf,
			"node=%d kind=%s pos=(%g,%g) hop=%d status=%s tx=%d floods=%d "+
				"first_rx=%.3f delivered=%d collided=%d channel_lost=%d\n",
			snap.ID, snap.Kind, snap.Position.X, snap.Position.Y, snap.Hop,
			snap.Status, snap.TxCount, len(snap.FloodIDs),
			float64(rxTime),
			snap.Outcomes.Delivered, snap.Outcomes.LostCollision,
			snap.Outcomes.LostChannel)
	}

	return buf.Bytes()
}

package node

import (
	"sort"

	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/sim"
)

// A Snapshot is an immutable end-of-run view of a node's terminal state.
// Snapshots are value copies: mutating one never touches the node.
type Snapshot struct {
	ID       medium.NodeID
	Kind     Kind
	Status   Status
	FaultMsg string

	Position medium.Position
	Hop      int

	TxCount int

	// FloodIDs lists the floods the node received or originated, sorted.
	FloodIDs []string

	// RxTimes holds every reception time per flood, in reception order.
	RxTimes map[string][]sim.VTimeInMs

	// Outcomes tallies how the medium resolved receptions at this node.
	Outcomes medium.OutcomeCounts
}

// FirstRxTime returns the earliest reception time of the given flood and
// whether the node ever received it.
func (s Snapshot) FirstRxTime(floodID string) (sim.VTimeInMs, bool) {
	times, ok := s.RxTimes[floodID]
	if !ok || len(times) == 0 {
		return 0, false
	}

	first := times[0]
	for _, t := range times[1:] {
		if t < first {
			first = t
		}
	}
	return first, true
}

// Snapshot captures the node's terminal state. It does not mutate the node.
func (b *Base) Snapshot() Snapshot {
	floodIDs := make([]string, 0, len(b.floodIDs))
	for id := range b.floodIDs {
		floodIDs = append(floodIDs, id)
	}
	sort.Strings(floodIDs)

	rxTimes := make(map[string][]sim.VTimeInMs, len(b.floodTimes))
	for id, times := range b.floodTimes {
		rxTimes[id] = append([]sim.VTimeInMs(nil), times...)
	}

	return Snapshot{
		ID:       b.cfg.ID,
		Kind:     b.kind,
		Status:   b.status,
		FaultMsg: b.faultMsg,
		Position: b.Position(),
		Hop:      b.cfg.Hop,
		TxCount:  b.txCount,
		FloodIDs: floodIDs,
		RxTimes:  rxTimes,
		Outcomes: b.radio.OutcomesFor(b.cfg.ID),
	}
}

package node

import (
	"fmt"

	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/sim"
)

// floodKickoff starts the sink's first flood round.
type floodKickoff struct{}

// KickoffDelay is how long the sink waits before triggering its flood.
const KickoffDelay sim.VTimeInMs = 100

// A Sink initiates floods and aggregates what reaches it. The baseline sink
// triggers a single flood round, then participates in the flood like any
// other node.
type Sink struct {
	*Base
}

// NewSink creates a sink node, plugs it into the medium, and schedules the
// flood kickoff.
func NewSink(
	engine sim.Engine,
	radio *medium.Medium,
	cfg Config,
) *Sink {
	s := &Sink{
		Base: NewBase(KindSink, engine, radio, cfg),
	}
	s.SetBehavior(s)
	radio.PlugIn(s)

	s.ScheduleTimer(KickoffDelay, floodKickoff{})

	return s
}

// OnTimer triggers the flood on kickoff and fires relay slots afterwards.
func (s *Sink) OnTimer(now sim.VTimeInMs, timer *Timer) {
	if s.handleFloodTimer(now, timer) {
		return
	}

	if _, ok := timer.Payload().(floodKickoff); ok {
		s.triggerFlood(now)
	}
}

// OnReceive relays floods initiated elsewhere, exactly like a sensor.
func (s *Sink) OnReceive(_ sim.VTimeInMs, frame medium.Frame) {
	if frame.Kind != KindFloodBeacon {
		return
	}
	if s.FloodRxCount(frame.FloodID) != 1 {
		return
	}

	s.startFloodRelay(frame)
}

// triggerFlood starts one flood round: a fresh sequence number and flood ID,
// one immediate beacon broadcast, then the regular relay slots. The flood ID
// derives from the origin and sequence number, so equal-seed runs produce
// identical snapshots.
func (s *Sink) triggerFlood(now sim.VTimeInMs) {
	s.seqNo++
	floodID := fmt.Sprintf("%d-%d", s.ID(), s.seqNo)

	// The sink counts as having seen its own flood.
	s.recordFloodBeacon(now, floodID)

	frame := s.Transmit(
		KindFloodBeacon,
		medium.Broadcast,
		s.seqNo,
		floodID,
		FloodBeacon{FloodID: floodID},
	)

	s.startFloodRelay(frame)
}

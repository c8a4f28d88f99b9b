// Package node provides the node-process abstraction of the simulator.
// Protocol logic plugs into the engine by implementing the Behavior
// interface; the Sink and Sensor variants in this package implement the
// baseline flooding protocol.
package node

import (
	"fmt"
	"log"

	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/sim"
)

// Kind tells the variant of a node.
type Kind string

// The node variants.
const (
	KindSink   Kind = "sink"
	KindSensor Kind = "sensor"
)

// Status tells whether a node is still participating in the run.
type Status string

const (
	// StatusOK means the node participates normally.
	StatusOK Status = "ok"

	// StatusFaulted means a handler of the node panicked. The node stopped
	// participating; the rest of the run continues without it.
	StatusFaulted Status = "faulted"
)

// A Node is a simulation actor driven purely by scheduled events. The engine
// and the medium treat every variant uniformly through this interface.
type Node interface {
	medium.Receiver
	sim.Handler

	Kind() Kind
	Snapshot() Snapshot
}

// Behavior is the protocol logic of a node variant. Handlers run
// synchronously to completion; anything they schedule takes effect strictly
// after the current simulated time.
type Behavior interface {
	// OnTimer is invoked when a previously self-scheduled timer fires.
	OnTimer(now sim.VTimeInMs, timer *Timer)

	// OnReceive is invoked when the medium delivers a frame addressed to
	// this node (or broadcast).
	OnReceive(now sim.VTimeInMs, frame medium.Frame)
}

// Config holds the construction parameters of a node.
type Config struct {
	ID   medium.NodeID
	X, Y int

	// Hop is the distance to the sink in the grid topology, kept for
	// results reporting.
	Hop int

	// MaxTransmissions is how many times the node relays one flood.
	MaxTransmissions int

	// GuardTime is the gap between consecutive relay slots in ms.
	GuardTime sim.VTimeInMs

	// AirTime is how long one frame occupies the channel in ms.
	AirTime sim.VTimeInMs

	// JitterMax, when positive, offsets every relay slot by a random
	// duration in [0, JitterMax) drawn from the medium's jitter stream.
	JitterMax sim.VTimeInMs

	Channel int

	// DebugLog, when set, receives per-node trace lines.
	DebugLog *log.Logger
}

func (c Config) withDefaults() Config {
	if c.GuardTime == 0 {
		c.GuardTime = 50
	}
	if c.AirTime == 0 {
		c.AirTime = 1
	}
	if c.Channel == 0 {
		c.Channel = 7
	}
	if c.MaxTransmissions == 0 {
		c.MaxTransmissions = 1
	}
	return c
}

// Base provides the engine plumbing shared by all node variants: timer
// scheduling, frame transmission, flood bookkeeping, and fault isolation.
// The mutable state of a Base is touched only by the owning node's own event
// handlers.
type Base struct {
	cfg      Config
	kind     Kind
	engine   sim.Engine
	radio    *medium.Medium
	behavior Behavior

	seqNo    int
	txCount  int
	status   Status
	faultMsg string

	floodIDs   map[string]bool
	floodTimes map[string][]sim.VTimeInMs
}

// NewBase creates the shared part of a node. The variant must call
// SetBehavior before the first event fires.
func NewBase(
	kind Kind,
	engine sim.Engine,
	radio *medium.Medium,
	cfg Config,
) *Base {
	b := &Base{
		cfg:        cfg.withDefaults(),
		kind:       kind,
		engine:     engine,
		radio:      radio,
		seqNo:      -1,
		status:     StatusOK,
		floodIDs:   make(map[string]bool),
		floodTimes: make(map[string][]sim.VTimeInMs),
	}
	return b
}

// SetBehavior attaches the protocol logic of the variant embedding this
// Base. Externally written variants call it from their constructor.
func (b *Base) SetBehavior(behavior Behavior) {
	b.behavior = behavior
}

// Name returns the name of the node.
func (b *Base) Name() string {
	return fmt.Sprintf("%s%d", b.kind, b.cfg.ID)
}

// ID returns the node identifier.
func (b *Base) ID() medium.NodeID {
	return b.cfg.ID
}

// Kind returns the variant of the node.
func (b *Base) Kind() Kind {
	return b.kind
}

// Status reports whether the node still participates in the run.
func (b *Base) Status() Status {
	return b.status
}

// Position returns the grid position of the node.
func (b *Base) Position() medium.Position {
	return medium.Position{X: float64(b.cfg.X), Y: float64(b.cfg.Y)}
}

// Channel returns the radio channel the node listens on.
func (b *Base) Channel() int {
	return b.cfg.Channel
}

// Handle dispatches timer events to the node's behavior. A faulted node
// ignores all further events.
func (b *Base) Handle(e sim.Event) error {
	evt, ok := e.(*timerEvent)
	if !ok {
		panic(fmt.Sprintf("node %s cannot handle event of type %T", b.Name(), e))
	}

	if b.status == StatusFaulted || evt.timer.cancelled {
		return nil
	}
	evt.timer.fired = true

	defer b.isolateFault(evt.Time())
	b.behavior.OnTimer(evt.Time(), evt.timer)

	return nil
}

// OnReceive accepts a delivered frame from the medium, applies destination
// filtering, records flood receptions, and hands the frame to the behavior.
func (b *Base) OnReceive(now sim.VTimeInMs, frame medium.Frame) {
	if b.status == StatusFaulted {
		return
	}

	if frame.Dst != medium.Broadcast && frame.Dst != b.cfg.ID {
		b.logf(now, "discard frame %s (not logical destination)", frame.ID)
		return
	}

	if frame.Kind == KindFloodBeacon {
		b.recordFloodBeacon(now, frame.FloodID)
	}

	b.logf(now, "<- receiving %s from node %d", frame.ID, frame.Src)

	defer b.isolateFault(now)
	b.behavior.OnReceive(now, frame)
}

// isolateFault converts a panic inside protocol logic into a terminal node
// state, so one misbehaving node cannot abort the whole run.
func (b *Base) isolateFault(now sim.VTimeInMs) {
	r := recover()
	if r == nil {
		return
	}

	b.status = StatusFaulted
	b.faultMsg = fmt.Sprint(r)
	b.logf(now, "node faulted: %v", r)
}

// ScheduleTimer registers a timer that fires after the given delay. The
// delay must be positive: a handler can only schedule strictly into the
// future.
func (b *Base) ScheduleTimer(
	delay sim.VTimeInMs,
	payload interface{},
) *Timer {
	if delay <= 0 {
		panic(fmt.Sprintf(
			"node %s scheduled a timer with non-positive delay %.3f",
			b.Name(), delay))
	}

	t := &Timer{payload: payload}
	b.engine.Schedule(&timerEvent{
		EventBase: sim.NewEventBase(b.engine.CurrentTime()+delay, b),
		timer:     t,
	})

	return t
}

// Transmit puts a frame on the air. The frame occupies the channel from now
// until now plus the node's air time.
func (b *Base) Transmit(
	kind string,
	dst medium.NodeID,
	seqNo int,
	floodID string,
	payload interface{},
) medium.Frame {
	now := b.engine.CurrentTime()
	frame := medium.Frame{
		ID:          sim.GetIDGenerator().Generate(),
		Kind:        kind,
		Src:         b.cfg.ID,
		Dst:         dst,
		SeqNo:       seqNo,
		FloodID:     floodID,
		Payload:     payload,
		WindowStart: now,
		WindowEnd:   now + b.cfg.AirTime,
	}

	b.txCount++
	b.logf(now, "-> transmitting %s to node %d", frame.ID, dst)
	b.radio.BeginTransmission(frame)

	return frame
}

// SlotDelay returns the delay until the next relay slot, including jitter
// when configured.
func (b *Base) SlotDelay() sim.VTimeInMs {
	return b.cfg.GuardTime + b.radio.Jitter(b.cfg.JitterMax)
}

// SeenFlood reports whether the node already received or originated the
// given flood.
func (b *Base) SeenFlood(floodID string) bool {
	return b.floodIDs[floodID]
}

func (b *Base) recordFloodBeacon(now sim.VTimeInMs, floodID string) {
	b.floodIDs[floodID] = true
	b.floodTimes[floodID] = append(b.floodTimes[floodID], now)
}

func (b *Base) logf(now sim.VTimeInMs, format string, args ...interface{}) {
	if b.cfg.DebugLog == nil {
		return
	}
	prefix := fmt.Sprintf("[%9.3f %-8s]  ", now/1000, b.Name())
	b.cfg.DebugLog.Printf(prefix+format, args...)
}

package medium

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/wsnlab/wsnsim/sim"
)

// HookPosTransmissionBegin triggers when a frame starts occupying the
// channel.
var HookPosTransmissionBegin = &sim.HookPos{Name: "TransmissionBegin"}

// HookPosReceptionResolved triggers when a (frame, receiver) pair resolves
// to an outcome. The hook detail is a ReceptionRecord.
var HookPosReceptionResolved = &sim.HookPos{Name: "ReceptionResolved"}

// ReceptionRecord describes one resolved reception.
type ReceptionRecord struct {
	Time     sim.VTimeInMs
	FrameID  string
	Src      NodeID
	Receiver NodeID
	Outcome  Outcome
}

// RangeFn decides whether a receiver can hear a sender.
type RangeFn func(sender, receiver Position) bool

// RangeWithin returns a range predicate that accepts receivers within the
// given Euclidean distance of the sender.
func RangeWithin(maxDistance float64) RangeFn {
	return func(sender, receiver Position) bool {
		dx := sender.X - receiver.X
		dy := sender.Y - receiver.Y
		return math.Sqrt(dx*dx+dy*dy) <= maxDistance
	}
}

// AllInRange is a range predicate that accepts every receiver.
func AllInRange(_, _ Position) bool {
	return true
}

// A Receiver is a node plugged into the medium.
type Receiver interface {
	sim.Named

	ID() NodeID
	Position() Position
	Channel() int

	// OnReceive is invoked when the medium delivers a frame intact.
	OnReceive(now sim.VTimeInMs, frame Frame)
}

// Medium models the shared wireless channel. Nodes hand it frames via
// BeginTransmission; the medium decides, per (frame, receiver) pair, whether
// the frame is delivered, lost to a collision, or lost to channel error.
//
// All medium state is mutated inside the single-threaded event dispatch
// loop, so no locking is needed.
type Medium struct {
	sim.HookableBase

	name     string
	engine   sim.Engine
	lossRate float64
	inRange  RangeFn
	enableCI bool
	streams  *randStreams

	receivers    []Receiver
	receiverByID map[NodeID]Receiver

	inFlight []*inFlightFrame
	ciGroups map[string]*ciGroup
	counts   map[NodeID]*OutcomeCounts
}

// An inFlightFrame is a frame that occupies the channel. It stays registered
// until every reception that may observe it has resolved.
type inFlightFrame struct {
	frame   Frame
	pending int
}

type ciGroup struct {
	repFrameID string
	lost       bool
}

// receiveEvent resolves the outcome of one (frame, receiver) pair. It fires
// at the closing edge of the frame's transmission window, so a transmission
// can never retroactively un-collide.
type receiveEvent struct {
	*sim.EventBase

	tx       *inFlightFrame
	receiver Receiver
}

// Name returns the name of the medium.
func (m *Medium) Name() string {
	return m.name
}

// PlugIn registers a node with the medium. Node IDs must be unique.
func (m *Medium) PlugIn(r Receiver) {
	if _, taken := m.receiverByID[r.ID()]; taken {
		panic(fmt.Sprintf("node %d is already plugged into the medium", r.ID()))
	}

	m.receivers = append(m.receivers, r)
	m.receiverByID[r.ID()] = r
	m.counts[r.ID()] = &OutcomeCounts{}
}

// Unplug removes a node from the medium. New transmissions no longer reach
// it, but receptions already scheduled for the node still resolve.
func (m *Medium) Unplug(id NodeID) {
	r, plugged := m.receiverByID[id]
	if !plugged {
		return
	}

	delete(m.receiverByID, id)
	for i, candidate := range m.receivers {
		if candidate == r {
			m.receivers = append(m.receivers[:i], m.receivers[i+1:]...)
			break
		}
	}
}

// Jitter draws a duration in [0, max) from the jitter stream. Node timing
// jitter shares a stream so it cannot perturb loss or tie-break draws.
func (m *Medium) Jitter(max sim.VTimeInMs) sim.VTimeInMs {
	if max <= 0 {
		return 0
	}
	return sim.VTimeInMs(m.streams.jitter.Float64() * float64(max))
}

// BeginTransmission registers a frame as in-flight for its window and
// schedules one reception resolution per in-range receiver at the closing
// edge of the window.
func (m *Medium) BeginTransmission(frame Frame) {
	now := m.engine.CurrentTime()
	if frame.WindowStart < now {
		panic(fmt.Sprintf(
			"frame %s window starts in the past, start %.3f, now %.3f",
			frame.ID, frame.WindowStart, now))
	}
	if frame.WindowEnd <= frame.WindowStart {
		panic(fmt.Sprintf("frame %s has an empty transmission window", frame.ID))
	}

	sender, ok := m.receiverByID[frame.Src]
	if !ok {
		panic(fmt.Sprintf("node %d is not plugged into the medium", frame.Src))
	}

	tx := &inFlightFrame{frame: frame}
	m.inFlight = append(m.inFlight, tx)

	for _, r := range m.receivers {
		if r.ID() == frame.Src {
			continue
		}
		if r.Channel() != sender.Channel() {
			continue
		}
		if !m.inRange(sender.Position(), r.Position()) {
			continue
		}

		tx.pending++
		m.engine.Schedule(&receiveEvent{
			EventBase: sim.NewEventBase(frame.WindowEnd, m),
			tx:        tx,
			receiver:  r,
		})
	}

	m.InvokeHook(sim.HookCtx{
		Domain: m,
		Pos:    HookPosTransmissionBegin,
		Item:   frame,
	})
}

// Handle resolves reception events.
func (m *Medium) Handle(e sim.Event) error {
	evt, ok := e.(*receiveEvent)
	if !ok {
		panic(fmt.Sprintf("medium cannot handle event of type %T", e))
	}

	m.resolveReception(evt)
	evt.tx.pending--
	m.sweep(evt.Time())

	return nil
}

// OutcomesFor returns the reception outcome tallies of one receiver.
func (m *Medium) OutcomesFor(id NodeID) OutcomeCounts {
	c, ok := m.counts[id]
	if !ok {
		return OutcomeCounts{}
	}
	return *c
}

func (m *Medium) resolveReception(evt *receiveEvent) {
	now := evt.Time()
	frame := evt.tx.frame
	receiver := evt.receiver

	outcome := m.decideOutcome(evt)

	m.counts[receiver.ID()].record(outcome)
	m.InvokeHook(sim.HookCtx{
		Domain: m,
		Pos:    HookPosReceptionResolved,
		Item:   frame,
		Detail: ReceptionRecord{
			Time:     now,
			FrameID:  frame.ID,
			Src:      frame.Src,
			Receiver: receiver.ID(),
			Outcome:  outcome,
		},
	})

	if outcome == Delivered {
		receiver.OnReceive(now, frame)
	}
}

func (m *Medium) decideOutcome(evt *receiveEvent) Outcome {
	frame := evt.tx.frame

	halfDuplex, interferers := m.audibleOverlaps(evt)

	// The receiver's own transmission blanks its radio for the whole
	// overlap, constructive or not.
	if halfDuplex {
		return LostCollision
	}

	if len(interferers) == 0 {
		if m.streams.loss.Float64() < m.lossRate {
			return LostChannel
		}
		return Delivered
	}

	if m.enableCI && identicalSignals(frame, interferers) {
		return m.resolveConstructively(evt, interferers)
	}

	return LostCollision
}

// audibleOverlaps collects the in-flight frames whose windows overlap the
// frame under resolution and whose senders are audible at the receiver. It
// also reports whether the receiver itself was transmitting.
func (m *Medium) audibleOverlaps(
	evt *receiveEvent,
) (halfDuplex bool, interferers []*inFlightFrame) {
	frame := evt.tx.frame
	receiver := evt.receiver

	for _, other := range m.inFlight {
		if other == evt.tx {
			continue
		}
		if !other.frame.Overlaps(frame) {
			continue
		}
		if other.frame.Src == receiver.ID() {
			halfDuplex = true
			continue
		}

		sender, ok := m.receiverByID[other.frame.Src]
		if !ok {
			continue
		}
		if sender.Channel() != receiver.Channel() {
			continue
		}
		if !m.inRange(sender.Position(), receiver.Position()) {
			continue
		}

		interferers = append(interferers, other)
	}

	return halfDuplex, interferers
}

// resolveConstructively handles k identical overlapping signals as one
// reception. The group decides once, on its first resolved member: a
// tie-break draw picks the representative pair, and a single loss draw with
// the CI-reduced rate decides delivery. The representative reports the group
// outcome; the absorbed members resolve as collision losses.
func (m *Medium) resolveConstructively(
	evt *receiveEvent,
	interferers []*inFlightFrame,
) Outcome {
	members := make([]string, 0, len(interferers)+1)
	members = append(members, evt.tx.frame.ID)
	for _, tx := range interferers {
		members = append(members, tx.frame.ID)
	}
	sort.Strings(members)

	key := fmt.Sprintf("%d|%s|%s",
		evt.receiver.ID(), evt.tx.frame.Identity(), strings.Join(members, ","))

	group, decided := m.ciGroups[key]
	if !decided {
		k := len(members)
		effectiveLoss := math.Pow(m.lossRate, math.Log2(float64(k+1)))

		group = &ciGroup{
			repFrameID: members[m.streams.tieBreak.Intn(k)],
			lost:       m.streams.loss.Float64() < effectiveLoss,
		}
		m.ciGroups[key] = group
	}

	if evt.tx.frame.ID != group.repFrameID {
		return LostCollision
	}
	if group.lost {
		return LostChannel
	}
	return Delivered
}

func identicalSignals(frame Frame, interferers []*inFlightFrame) bool {
	identity := frame.Identity()
	for _, tx := range interferers {
		if tx.frame.Identity() != identity {
			return false
		}
	}
	return true
}

// sweep drops in-flight frames that can no longer influence any pending
// reception. A frame is kept while its own receptions are pending, or while
// any frame with pending receptions overlaps it.
func (m *Medium) sweep(now sim.VTimeInMs) {
	kept := make([]*inFlightFrame, 0, len(m.inFlight))
	for _, tx := range m.inFlight {
		if tx.pending > 0 || tx.frame.WindowEnd > now {
			kept = append(kept, tx)
			continue
		}
		if m.overlapsPending(tx) {
			kept = append(kept, tx)
		}
	}
	m.inFlight = kept
}

func (m *Medium) overlapsPending(tx *inFlightFrame) bool {
	for _, other := range m.inFlight {
		if other == tx || other.pending == 0 {
			continue
		}
		if other.frame.Overlaps(tx.frame) {
			return true
		}
	}
	return false
}

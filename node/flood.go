package node

import (
	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/sim"
)

// relayTask carries one flood through its retransmission slots.
type relayTask struct {
	frame     medium.Frame
	remaining int
}

// FloodRxCount returns how often the node has received the given flood.
func (b *Base) FloodRxCount(floodID string) int {
	return len(b.floodTimes[floodID])
}

// startFloodRelay schedules the retransmission slots for a newly seen
// flood: one transmission per guard-time slot, MaxTransmissions in total.
func (b *Base) startFloodRelay(frame medium.Frame) {
	if b.cfg.MaxTransmissions <= 0 {
		return
	}

	b.ScheduleTimer(b.SlotDelay(), &relayTask{
		frame:     frame,
		remaining: b.cfg.MaxTransmissions,
	})
}

// handleFloodTimer retransmits the flood if the timer carries a relay task.
// It reports whether the timer was consumed.
func (b *Base) handleFloodTimer(_ sim.VTimeInMs, timer *Timer) bool {
	task, ok := timer.Payload().(*relayTask)
	if !ok {
		return false
	}

	b.Transmit(
		task.frame.Kind,
		task.frame.Dst,
		task.frame.SeqNo,
		task.frame.FloodID,
		task.frame.Payload,
	)

	task.remaining--
	if task.remaining > 0 {
		b.ScheduleTimer(b.SlotDelay(), task)
	}

	return true
}

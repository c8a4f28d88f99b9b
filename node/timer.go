package node

import (
	"github.com/wsnlab/wsnsim/sim"
)

// A Timer is a handle to a self-scheduled wake-up. The owning node may
// cancel it any time before it fires; cancelling a fired timer is a no-op.
type Timer struct {
	payload   interface{}
	cancelled bool
	fired     bool
}

// Payload returns the value the node attached when scheduling the timer.
func (t *Timer) Payload() interface{} {
	return t.payload
}

// Cancel invalidates the timer so it will be ignored when popped.
func (t *Timer) Cancel() {
	if t.fired {
		return
	}
	t.cancelled = true
}

// Cancelled reports whether the timer was invalidated before firing.
func (t *Timer) Cancelled() bool {
	return t.cancelled
}

// timerEvent resumes the owning node when its wake-up time is reached.
type timerEvent struct {
	*sim.EventBase

	timer *Timer
}

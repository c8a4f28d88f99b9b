package medium

import (
	"fmt"

	"github.com/wsnlab/wsnsim/sim"
)

// NodeID identifies a node within one simulation run.
type NodeID int

// Broadcast is the network-layer broadcast destination.
const Broadcast NodeID = 0

// Position is the location of a node on the simulation grid.
type Position struct {
	X, Y float64
}

// A Frame is a single radio transmission attempt. A frame occupies the
// channel for its transmission window and is never mutated after creation.
type Frame struct {
	ID      string
	Kind    string
	Src     NodeID
	Dst     NodeID
	SeqNo   int
	FloodID string
	Payload interface{}

	// The window is half-open: the frame is on the air in
	// [WindowStart, WindowEnd).
	WindowStart sim.VTimeInMs
	WindowEnd   sim.VTimeInMs
}

// Identity describes the on-air content of the frame. Two frames with the
// same identity carry the same signal and can interfere constructively.
// The transmitter is not part of the identity: relays of one flood by
// different nodes radiate the same signal.
func (f Frame) Identity() string {
	return fmt.Sprintf("%s/%d/%d/%s", f.Kind, f.Dst, f.SeqNo, f.FloodID)
}

// Overlaps reports whether the two transmission windows share any instant.
func (f Frame) Overlaps(other Frame) bool {
	return f.WindowStart < other.WindowEnd && other.WindowStart < f.WindowEnd
}

package medium

// Outcome is the result of one (frame, receiver) reception attempt. Every
// scheduled reception resolves to exactly one outcome.
type Outcome int

const (
	// Delivered means the frame reached the receiver intact.
	Delivered Outcome = iota

	// LostCollision means another transmission window overlapped the frame
	// at the receiver.
	LostCollision

	// LostChannel means the frame was lost to independent channel error.
	LostChannel
)

// String returns the name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case LostCollision:
		return "lost_collision"
	case LostChannel:
		return "lost_channel"
	}
	return "unknown"
}

// OutcomeCounts tallies reception outcomes at one receiver.
type OutcomeCounts struct {
	Delivered     uint64
	LostCollision uint64
	LostChannel   uint64
}

// Total returns the number of resolved receptions.
func (c OutcomeCounts) Total() uint64 {
	return c.Delivered + c.LostCollision + c.LostChannel
}

func (c *OutcomeCounts) record(o Outcome) {
	switch o {
	case Delivered:
		c.Delivered++
	case LostCollision:
		c.LostCollision++
	case LostChannel:
		c.LostChannel++
	}
}

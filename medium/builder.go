package medium

import (
	"github.com/wsnlab/wsnsim/sim"
)

// DefaultTxDistance is the transmission range of a node in grid units.
const DefaultTxDistance = 1.5

// Builder can build mediums.
type Builder struct {
	engine   sim.Engine
	name     string
	lossRate float64
	inRange  RangeFn
	seed     int64
	enableCI bool
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		name:     "Medium",
		lossRate: 0.6,
		inRange:  RangeWithin(DefaultTxDistance),
	}
}

// WithEngine sets the engine that drives the medium.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithName sets the name of the medium.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithLossRate sets the probability that a collision-free reception is lost
// to channel error.
func (b Builder) WithLossRate(rate float64) Builder {
	b.lossRate = rate
	return b
}

// WithRange sets the predicate that gates which receivers hear a sender.
func (b Builder) WithRange(fn RangeFn) Builder {
	b.inRange = fn
	return b
}

// WithSeed seeds the medium's random streams.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithConstructiveInterference lets identical overlapping signals combine
// instead of colliding.
func (b Builder) WithConstructiveInterference() Builder {
	b.enableCI = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		panic("medium requires an engine")
	}
	if b.lossRate < 0 || b.lossRate > 1 {
		panic("loss rate must be within [0, 1]")
	}
	if b.inRange == nil {
		panic("medium requires a range predicate")
	}
}

// Build builds the medium.
func (b Builder) Build() *Medium {
	b.parametersMustBeValid()

	return &Medium{
		name:         b.name,
		engine:       b.engine,
		lossRate:     b.lossRate,
		inRange:      b.inRange,
		enableCI:     b.enableCI,
		streams:      newRandStreams(b.seed),
		receiverByID: make(map[NodeID]Receiver),
		ciGroups:     make(map[string]*ciGroup),
		counts:       make(map[NodeID]*OutcomeCounts),
	}
}

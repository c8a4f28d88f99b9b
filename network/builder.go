package network

import (
	"fmt"
	"io"
	"log"

	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/monitoring"
	"github.com/wsnlab/wsnsim/node"
	"github.com/wsnlab/wsnsim/sim"
)

// Builder builds a network with a layered grid topology.
type Builder struct {
	maxHops          int
	lossRate         float64
	seed             int64
	guardTime        sim.VTimeInMs
	maxTransmissions int
	horizon          sim.VTimeInMs
	jitterMax        sim.VTimeInMs

	rangeFn  medium.RangeFn
	enableCI bool

	eventLog    io.Writer
	debugLog    io.Writer
	monitorOn   bool
	monitorPort int
	monitorOpen bool
}

// MakeBuilder creates a builder with the default experiment parameters.
func MakeBuilder() Builder {
	return Builder{
		maxHops:          4,
		lossRate:         0.6,
		guardTime:        50,
		maxTransmissions: 1,
	}
}

// WithMaxHops sets the grid radius. The network holds (2n+1)^2 nodes.
func (b Builder) WithMaxHops(n int) Builder {
	b.maxHops = n
	return b
}

// WithLossRate sets the per-reception channel loss probability.
func (b Builder) WithLossRate(p float64) Builder {
	b.lossRate = p
	return b
}

// WithSeed sets the seed of the medium's random streams.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithGuardTime sets the delay between consecutive relay slots.
func (b Builder) WithGuardTime(ms sim.VTimeInMs) Builder {
	b.guardTime = ms
	return b
}

// WithMaxTransmissions sets how often each node retransmits a flood.
func (b Builder) WithMaxTransmissions(k int) Builder {
	b.maxTransmissions = k
	return b
}

// WithHorizon caps the run at the given virtual time.
func (b Builder) WithHorizon(ms sim.VTimeInMs) Builder {
	b.horizon = ms
	return b
}

// WithJitter adds up to the given random delay to every relay slot.
func (b Builder) WithJitter(max sim.VTimeInMs) Builder {
	b.jitterMax = max
	return b
}

// WithRange replaces the default transmission range predicate.
func (b Builder) WithRange(fn medium.RangeFn) Builder {
	b.rangeFn = fn
	return b
}

// WithConstructiveInterference lets identical overlapping frames combine
// instead of colliding.
func (b Builder) WithConstructiveInterference() Builder {
	b.enableCI = true
	return b
}

// WithEventLogger writes one line per dispatched event to the given writer.
func (b Builder) WithEventLogger(w io.Writer) Builder {
	b.eventLog = w
	return b
}

// WithMonitor starts the monitoring server on the given port. Port 0 picks
// a free port.
func (b Builder) WithMonitor(port int) Builder {
	b.monitorOn = true
	b.monitorPort = port
	return b
}

// WithMonitorBrowser opens the monitor page in the default browser once the
// server is listening.
func (b Builder) WithMonitorBrowser() Builder {
	b.monitorOpen = true
	return b
}

// WithDebugLog turns on per-node trace logging to the given writer.
func (b Builder) WithDebugLog(w io.Writer) Builder {
	b.debugLog = w
	return b
}

func (b Builder) validate() error {
	if b.maxHops < 1 {
		return fmt.Errorf("max hops must be at least 1, got %d", b.maxHops)
	}
	if b.lossRate < 0 || b.lossRate > 1 {
		return fmt.Errorf("loss rate must be in [0, 1], got %g", b.lossRate)
	}
	if b.guardTime < 1 {
		return fmt.Errorf("guard time must be at least 1 ms, got %g",
			float64(b.guardTime))
	}
	if b.maxTransmissions < 0 {
		return fmt.Errorf("max transmissions must not be negative, got %d",
			b.maxTransmissions)
	}
	if b.horizon < 0 {
		return fmt.Errorf("horizon must be positive when set, got %g",
			float64(b.horizon))
	}
	if b.jitterMax < 0 {
		return fmt.Errorf("jitter must not be negative, got %g",
			float64(b.jitterMax))
	}
	if !b.monitorOn && b.monitorPort != 0 {
		return fmt.Errorf("monitor port cannot be set when monitoring is disabled")
	}
	if !b.monitorOn && b.monitorOpen {
		return fmt.Errorf("cannot open the monitor page when monitoring is disabled")
	}
	return nil
}

// Build validates the configuration and assembles the engine, the medium,
// and the full grid of nodes.
func (b Builder) Build() (*Network, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	engine := sim.NewSerialEngine()
	if b.eventLog != nil {
		engine.AcceptHook(sim.NewEventLogger(log.New(b.eventLog, "", 0)))
	}

	mediumBuilder := medium.MakeBuilder().
		WithEngine(engine).
		WithLossRate(b.lossRate).
		WithSeed(b.seed)
	if b.rangeFn != nil {
		mediumBuilder = mediumBuilder.WithRange(b.rangeFn)
	}
	if b.enableCI {
		mediumBuilder = mediumBuilder.WithConstructiveInterference()
	}
	radio := mediumBuilder.Build()

	nw := &Network{
		cfg: Config{
			MaxHops:          b.maxHops,
			LossRate:         b.lossRate,
			GuardTime:        b.guardTime,
			MaxTransmissions: b.maxTransmissions,
			Seed:             b.seed,
			Horizon:          b.horizon,
		},
		engine:   engine,
		radio:    radio,
		nodeByID: make(map[medium.NodeID]node.Node),
	}

	b.addNodes(nw, engine, radio)

	if b.monitorOn {
		monitor := monitoring.NewMonitor()
		if b.monitorPort > 0 {
			monitor.WithPortNumber(b.monitorPort)
		}
		if b.monitorOpen {
			monitor.WithBrowser()
		}
		monitor.RegisterEngine(engine)
		for _, nd := range nw.nodes {
			monitor.RegisterNode(nd)
		}
		monitor.StartServer()
		nw.monitor = monitor
	}

	return nw, nil
}

// addNodes places one node per grid cell, layer by layer. The sink sits at
// the origin and is always node 1.
func (b Builder) addNodes(
	nw *Network,
	engine sim.Engine,
	radio *medium.Medium,
) {
	var debugLog *log.Logger
	if b.debugLog != nil {
		debugLog = log.New(b.debugLog, "", 0)
	}

	id := medium.NodeID(1)
	for _, cell := range gridCells(b.maxHops) {
		cfg := node.Config{
			ID:               id,
			X:                cell.x,
			Y:                cell.y,
			Hop:              cell.hop,
			MaxTransmissions: b.maxTransmissions,
			GuardTime:        b.guardTime,
			JitterMax:        b.jitterMax,
			DebugLog:         debugLog,
		}

		var nd node.Node
		if cell.hop == 0 {
			nd = node.NewSink(engine, radio, cfg)
		} else {
			nd = node.NewSensor(engine, radio, cfg)
		}

		if err := nw.AddNode(nd); err != nil {
			panic(err)
		}
		id++
	}
}

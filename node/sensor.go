package node

import (
	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/sim"
)

// A Sensor is a battery-less sensor node. The baseline sensor originates no
// data: it relays every new flood it hears, once per guard-time slot.
type Sensor struct {
	*Base
}

// NewSensor creates a sensor node and plugs it into the medium.
func NewSensor(
	engine sim.Engine,
	radio *medium.Medium,
	cfg Config,
) *Sensor {
	s := &Sensor{
		Base: NewBase(KindSensor, engine, radio, cfg),
	}
	s.SetBehavior(s)
	radio.PlugIn(s)

	return s
}

// OnTimer fires the pending relay slot.
func (s *Sensor) OnTimer(now sim.VTimeInMs, timer *Timer) {
	s.handleFloodTimer(now, timer)
}

// OnReceive relays a flood the first time the sensor hears it.
func (s *Sensor) OnReceive(_ sim.VTimeInMs, frame medium.Frame) {
	if frame.Kind != KindFloodBeacon {
		return
	}
	if s.FloodRxCount(frame.FloodID) != 1 {
		return
	}

	s.startFloodRelay(frame)
}

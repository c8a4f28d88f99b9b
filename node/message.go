package node

// Frame kinds exchanged by the baseline flooding protocol.
const (
	// KindFloodBeacon floods the network from the sink. Reception of a
	// flood beacon is recorded by the framework, not by protocol logic.
	KindFloodBeacon = "FLOOD_BEACON"
)

// FloodBeacon is the payload of a flood frame. The flood ID stays constant
// across retransmissions of one flood.
type FloodBeacon struct {
	FloodID string
}

// Package network assembles the shared medium and the node population into a
// runnable sensor network and drives a complete simulation run.
package network

import (
	"fmt"

	"github.com/wsnlab/wsnsim/medium"
	"github.com/wsnlab/wsnsim/monitoring"
	"github.com/wsnlab/wsnsim/node"
	"github.com/wsnlab/wsnsim/sim"
)

// Config carries the parameters a run was built with. It is embedded into
// the results so every row is self-describing.
type Config struct {
	MaxHops          int
	LossRate         float64
	GuardTime        sim.VTimeInMs
	MaxTransmissions int
	Seed             int64
	Horizon          sim.VTimeInMs
}

// A Network owns the engine, the medium, and the node registry of one
// simulation run.
type Network struct {
	cfg    Config
	engine sim.Engine
	radio  *medium.Medium

	nodes    []node.Node
	nodeByID map[medium.NodeID]node.Node

	monitor *monitoring.Monitor
}

// Config returns the parameters the network was built with.
func (n *Network) Config() Config {
	return n.cfg
}

// Engine returns the event engine driving the network.
func (n *Network) Engine() sim.Engine {
	return n.engine
}

// Medium returns the shared communication medium.
func (n *Network) Medium() *medium.Medium {
	return n.radio
}

// AddNode registers a node with the network. Node IDs must be unique.
func (n *Network) AddNode(nd node.Node) error {
	if _, taken := n.nodeByID[nd.ID()]; taken {
		return fmt.Errorf("node %d is already part of the network", nd.ID())
	}

	n.nodes = append(n.nodes, nd)
	n.nodeByID[nd.ID()] = nd

	return nil
}

// RemoveNode takes a node out of the network and unplugs it from the medium.
// Frames already in the air still resolve.
func (n *Network) RemoveNode(id medium.NodeID) error {
	nd, known := n.nodeByID[id]
	if !known {
		return fmt.Errorf("node %d is not part of the network", id)
	}

	delete(n.nodeByID, id)
	for i, candidate := range n.nodes {
		if candidate == nd {
			n.nodes = append(n.nodes[:i], n.nodes[i+1:]...)
			break
		}
	}
	n.radio.Unplug(id)

	return nil
}

// Node looks a node up by its ID.
func (n *Network) Node(id medium.NodeID) (node.Node, bool) {
	nd, known := n.nodeByID[id]
	return nd, known
}

// Nodes returns the nodes of the network in ID order.
func (n *Network) Nodes() []node.Node {
	out := make([]node.Node, len(n.nodes))
	copy(out, n.nodes)
	return out
}

// NodeCount returns the number of nodes currently in the network.
func (n *Network) NodeCount() int {
	return len(n.nodes)
}

// Run drives the engine until the event queue drains, or until the horizon
// when one is configured, then collects one snapshot per node.
func (n *Network) Run() (map[medium.NodeID]node.Snapshot, error) {
	var err error
	if n.cfg.Horizon > 0 {
		err = n.engine.RunUntil(n.cfg.Horizon)
	} else {
		err = n.engine.Run()
	}
	if err != nil {
		return nil, err
	}

	snapshots := make(map[medium.NodeID]node.Snapshot, len(n.nodes))
	for _, nd := range n.nodes {
		snapshots[nd.ID()] = nd.Snapshot()
	}

	return snapshots, nil
}

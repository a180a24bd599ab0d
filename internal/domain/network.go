package domain

import (
	"fmt"
	"sync"
)

// Network is the owned graph state for a planning session.
//
// Nodes and edges keep their insertion order, which is the order handed to
// the spanning tree solver and therefore decides tie-breaking between equal
// weights. All methods are safe for concurrent use.
type Network struct {
	mu    sync.RWMutex
	nodes []Node
	edges []Edge
}

// NewNetwork creates an empty network
func NewNetwork() *Network {
	return &Network{
		nodes: make([]Node, 0),
		edges: make([]Edge, 0),
	}
}

// NetworkFromFragment builds a network from a fragment, enforcing the same
// invariants as AddNode/AddEdge.
func NetworkFromFragment(f *GraphFragment) (*Network, error) {
	n := NewNetwork()
	for _, node := range f.Nodes {
		if err := n.AddNode(node); err != nil {
			return nil, err
		}
	}
	for _, edge := range f.Edges {
		if err := n.AddEdge(edge); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Load replaces the contents of the network with the fragment. The network
// is left unchanged if the fragment is invalid.
func (n *Network) Load(f *GraphFragment) error {
	fresh, err := NetworkFromFragment(f)
	if err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.nodes = fresh.nodes
	n.edges = fresh.edges
	return nil
}

// AddNode appends a node. The ID must be set and unused.
func (n *Network) AddNode(node Node) error {
	if err := node.Validate(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.nodeIndex(node.ID) >= 0 {
		return fmt.Errorf("node %s: %w", node.ID, ErrAlreadyExists)
	}
	n.nodes = append(n.nodes, node.Clone())
	return nil
}

// UpdateNode replaces the node with the same ID
func (n *Network) UpdateNode(node Node) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := n.nodeIndex(node.ID)
	if i < 0 {
		return fmt.Errorf("node %s: %w", node.ID, ErrNotFound)
	}
	n.nodes[i] = node.Clone()
	return nil
}

// RemoveNode deletes a node and every edge touching it
func (n *Network) RemoveNode(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	i := n.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	n.nodes = append(n.nodes[:i], n.nodes[i+1:]...)

	kept := n.edges[:0]
	for _, e := range n.edges {
		if !e.Connects(id) {
			kept = append(kept, e)
		}
	}
	n.edges = kept
	return nil
}

// AddEdge appends an edge after checking both endpoints exist, the edge is
// not a self-loop and the pair is not already connected. An empty edge ID is
// generated from the endpoints.
func (n *Network) AddEdge(edge Edge) error {
	if edge.IsSelfLoop() {
		return fmt.Errorf("edge %s: %w", edge.ID, ErrSelfLoop)
	}
	if edge.ID == "" {
		edge.ID = edge.GenerateID()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.nodeIndex(edge.Source) < 0 {
		return fmt.Errorf("edge %s source %s: %w", edge.ID, edge.Source, ErrNotFound)
	}
	if n.nodeIndex(edge.Target) < 0 {
		return fmt.Errorf("edge %s target %s: %w", edge.ID, edge.Target, ErrNotFound)
	}

	key := edge.PairKey()
	for _, e := range n.edges {
		if e.ID == edge.ID {
			return fmt.Errorf("edge %s: %w", edge.ID, ErrAlreadyExists)
		}
		if e.PairKey() == key {
			return fmt.Errorf("edge %s: %w", edge.ID, ErrDuplicatePair)
		}
	}

	n.edges = append(n.edges, edge)
	return nil
}

// SetEdgeWeight changes the weight of an existing edge
func (n *Network) SetEdgeWeight(id string, w Weight) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range n.edges {
		if n.edges[i].ID == id {
			n.edges[i].Weight = w
			return nil
		}
	}
	return fmt.Errorf("edge %s: %w", id, ErrNotFound)
}

// RemoveEdge deletes an edge
func (n *Network) RemoveEdge(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.edges {
		if e.ID == id {
			n.edges = append(n.edges[:i], n.edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("edge %s: %w", id, ErrNotFound)
}

// Node returns a copy of the node with the given ID
func (n *Network) Node(id string) (Node, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	i := n.nodeIndex(id)
	if i < 0 {
		return Node{}, false
	}
	return n.nodes[i].Clone(), true
}

// Nodes returns a copy of all nodes in insertion order
func (n *Network) Nodes() []Node {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Node, len(n.nodes))
	for i, node := range n.nodes {
		out[i] = node.Clone()
	}
	return out
}

// Edges returns a copy of all edges in insertion order
func (n *Network) Edges() []Edge {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// Len returns the node and edge counts
func (n *Network) Len() (nodes, edges int) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.nodes), len(n.edges)
}

// Clear removes all nodes and edges
func (n *Network) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nodes = make([]Node, 0)
	n.edges = make([]Edge, 0)
}

// Fragment returns a snapshot of the network as a fragment
func (n *Network) Fragment() *GraphFragment {
	return &GraphFragment{
		Nodes: n.Nodes(),
		Edges: n.Edges(),
	}
}

// nodeIndex must be called with the lock held
func (n *Network) nodeIndex(id string) int {
	for i := range n.nodes {
		if n.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

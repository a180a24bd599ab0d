package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Node represents a building on the campus map
type Node struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

// NewNode creates a new node. An empty id is replaced by a generated one.
func NewNode(id, name string) *Node {
	if id == "" {
		id = NewNodeID()
	}
	return &Node{
		ID:   id,
		Name: name,
	}
}

// NewNodeID generates a unique node identifier
func NewNodeID() string {
	return uuid.New().String()
}

// DefaultNodeName returns the placeholder name used for unnamed buildings
func DefaultNodeName(existing int) string {
	return fmt.Sprintf("Building %d", existing+1)
}

// SetLocation sets the node coordinates
func (n *Node) SetLocation(lat, lng float64) {
	n.Lat = &lat
	n.Lng = &lng
}

// HasLocation reports whether both coordinates are set
func (n Node) HasLocation() bool {
	return n.Lat != nil && n.Lng != nil
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	c := n
	if n.Lat != nil {
		lat := *n.Lat
		c.Lat = &lat
	}
	if n.Lng != nil {
		lng := *n.Lng
		c.Lng = &lng
	}
	return c
}

// Validate checks the node has an identifier
func (n Node) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: id required", ErrInvalidNode)
	}
	return nil
}

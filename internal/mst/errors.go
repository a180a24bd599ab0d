package mst

import (
	"errors"
	"fmt"

	"campusnet/internal/domain"
)

var (
	// ErrUnknownNodeReference is returned when an edge names a node that is not in the node list
	ErrUnknownNodeReference = errors.New("mst: edge references unknown node")

	// ErrInvalidEdge is returned for structurally malformed edges
	ErrInvalidEdge = errors.New("mst: invalid edge")

	// ErrDuplicateNode is returned when two nodes share an ID
	ErrDuplicateNode = errors.New("mst: duplicate node id")

	// ErrIndexOutOfRange is returned by DisjointSet for indices outside [0, n)
	ErrIndexOutOfRange = errors.New("mst: index out of range")

	// ErrCostOverflow is returned when the tree's total cost does not fit in an int64
	ErrCostOverflow = errors.New("mst: total cost overflows")

	// ErrDisconnected is returned by ComputeWith(WithRequireConnected()) when
	// no single tree spans every node.
	ErrDisconnected = errors.New("mst: graph is disconnected")
)

// UnknownNodeError reports which edge endpoint could not be resolved
type UnknownNodeError struct {
	EdgeID string
	NodeID string
	Field  string // "source" or "target"
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("mst: edge %q %s %q is not a known node", e.EdgeID, e.Field, e.NodeID)
}

func (e *UnknownNodeError) Is(target error) bool {
	return target == ErrUnknownNodeReference
}

// InvalidEdgeError reports a malformed edge
type InvalidEdgeError struct {
	EdgeID string
	Reason string
}

func (e *InvalidEdgeError) Error() string {
	return fmt.Sprintf("mst: edge %q: %s", e.EdgeID, e.Reason)
}

func (e *InvalidEdgeError) Is(target error) bool {
	return target == ErrInvalidEdge
}

// DuplicateNodeError reports a node ID that appears more than once
type DuplicateNodeError struct {
	NodeID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("mst: node %q appears more than once", e.NodeID)
}

func (e *DuplicateNodeError) Is(target error) bool {
	return target == ErrDuplicateNode
}

// IndexError reports an out of range DisjointSet index
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("mst: index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// CostOverflowError reports the tree edge whose weight overflowed the total
type CostOverflowError struct {
	EdgeID string
	Total  domain.Weight
	Weight domain.Weight
}

func (e *CostOverflowError) Error() string {
	return fmt.Sprintf("mst: adding edge %q weight %d to total %d overflows", e.EdgeID, e.Weight, e.Total)
}

func (e *CostOverflowError) Is(target error) bool {
	return target == ErrCostOverflow
}

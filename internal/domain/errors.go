package domain

import "errors"

var (
	// ErrNotFound is returned when a node or edge does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an ID is already taken
	ErrAlreadyExists = errors.New("already exists")

	// ErrSelfLoop is returned when an edge connects a node to itself
	ErrSelfLoop = errors.New("source and target cannot be the same")

	// ErrDuplicatePair is returned when two nodes are already connected
	ErrDuplicatePair = errors.New("connection between these nodes already exists")

	// ErrInvalidWeight is returned for a missing or non-numeric edge weight
	ErrInvalidWeight = errors.New("invalid weight")

	// ErrNoLocation is returned when a distance is requested for a node without coordinates
	ErrNoLocation = errors.New("node has no location")

	// ErrInvalidNode is returned for structurally invalid nodes
	ErrInvalidNode = errors.New("invalid node")
)

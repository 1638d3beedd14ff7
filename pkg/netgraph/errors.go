package netgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is matched by every [*LookupError].
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned by [Graph.AddNode] when the ID is already
	// registered. The existing node is left untouched.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrInvalidCapacity is returned by [Graph.AddEdge] for negative, NaN or
	// infinite capacities.
	ErrInvalidCapacity = errors.New("invalid capacity")
)

// LookupError reports an external node ID that was never registered.
type LookupError struct {
	ID int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("node %d: %v", e.ID, ErrNodeNotFound)
}

// Unwrap returns ErrNodeNotFound.
func (e *LookupError) Unwrap() error { return ErrNodeNotFound }

// ValidationError reports input rejected before it reached the graph.
// Err is one of ErrDuplicateNode or ErrInvalidCapacity.
type ValidationError struct {
	Field string
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the sentinel describing the failure.
func (e *ValidationError) Unwrap() error { return e.Err }

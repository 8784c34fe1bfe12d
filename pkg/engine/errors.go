package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfig       = errors.New("invalid engine configuration")
	ErrNodeNotFound        = errors.New("node not found")
	ErrNodeExists          = errors.New("node already added")
	ErrSocketOutOfRange    = errors.New("socket index out of range")
	ErrIncompatibleSockets = errors.New("incompatible socket types")
	ErrCycle               = errors.New("connection would create a cycle")
)

// NodeError wraps engine errors with the node they concern.
type NodeError struct {
	Op  string // Operation being performed (e.g., "Connect", "Remove")
	UID uint64 // Instance identifier
	Err error  // Underlying error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s operation failed for node %d: %v", e.Op, e.UID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func (e *NodeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsNodeNotFound checks if an error indicates an unknown instance.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

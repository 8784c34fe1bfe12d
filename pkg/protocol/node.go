// Package protocol defines the interfaces and contracts for pluggable nodes.
package protocol

import (
	"github.com/audionodes/native/pkg/node"
)

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Creator returns the construct/copy pair for this node type
	Creator() node.Creator

	// ID returns the unique identifier for this node type
	ID() string

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string
}

package meter

import (
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/protocol"
)

// MeterNodeFactory creates Meter instances.
type MeterNodeFactory struct{}

// Creator returns the construct/copy pair for meters.
func (f *MeterNodeFactory) Creator() node.Creator {
	return node.Creator{
		Construct: func() node.Node {
			return New()
		},
		Copy: func(src node.Node) node.Node {
			return node.CopyAs(src, (*Meter).Clone)
		},
	}
}

// ID returns the factory ID.
func (f *MeterNodeFactory) ID() string {
	return TypeID
}

// Name returns the factory name.
func (f *MeterNodeFactory) Name() string {
	return "Meter"
}

// Description returns the factory description.
func (f *MeterNodeFactory) Description() string {
	return "Measures the peak or RMS level of every voice of its input and reports it to the host"
}

// NewFactory creates a new factory instance.
func NewFactory() protocol.NodeFactory {
	return &MeterNodeFactory{}
}

package oscillator

import (
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/protocol"
)

// OscillatorNodeFactory creates Oscillator instances.
type OscillatorNodeFactory struct{}

// Creator returns the construct/copy pair for oscillators.
func (f *OscillatorNodeFactory) Creator() node.Creator {
	return node.Creator{
		Construct: func() node.Node {
			return New()
		},
		Copy: func(src node.Node) node.Node {
			return node.CopyAs(src, (*Oscillator).Clone)
		},
	}
}

// ID returns the factory ID.
func (f *OscillatorNodeFactory) ID() string {
	return TypeID
}

// Name returns the factory name.
func (f *OscillatorNodeFactory) Name() string {
	return "Oscillator"
}

// Description returns the factory description.
func (f *OscillatorNodeFactory) Description() string {
	return "Generates a periodic waveform per voice from frequency, amplitude, offset and shape inputs"
}

// NewFactory creates a new factory instance.
func NewFactory() protocol.NodeFactory {
	return &OscillatorNodeFactory{}
}

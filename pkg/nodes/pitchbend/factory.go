package pitchbend

import (
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/protocol"
)

// PitchBendNodeFactory creates PitchBend instances.
type PitchBendNodeFactory struct{}

// Creator returns the construct/copy pair for pitch bend nodes.
func (f *PitchBendNodeFactory) Creator() node.Creator {
	return node.Creator{
		Construct: func() node.Node {
			return New()
		},
		Copy: func(src node.Node) node.Node {
			return node.CopyAs(src, (*PitchBend).Clone)
		},
	}
}

// ID returns the factory ID.
func (f *PitchBendNodeFactory) ID() string {
	return TypeID
}

// Name returns the factory name.
func (f *PitchBendNodeFactory) Name() string {
	return "Pitch Bend"
}

// Description returns the factory description.
func (f *PitchBendNodeFactory) Description() string {
	return "Converts MIDI pitch wheel messages into a frequency multiplier"
}

// NewFactory creates a new factory instance.
func NewFactory() protocol.NodeFactory {
	return &PitchBendNodeFactory{}
}

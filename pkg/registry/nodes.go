package registry

import (
	"github.com/audionodes/native/pkg/nodes/meter"
	"github.com/audionodes/native/pkg/nodes/oscillator"
	"github.com/audionodes/native/pkg/nodes/pitchbend"
)

// RegisterDefaultNodes registers all built-in node factories with the registry.
func (r *Registry) RegisterDefaultNodes() error {
	// Register Oscillator node
	if err := r.RegisterNode(oscillator.NewFactory()); err != nil {
		return err
	}

	// Register Pitch Bend node
	if err := r.RegisterNode(pitchbend.NewFactory()); err != nil {
		return err
	}

	// Register Meter node
	return r.RegisterNode(meter.NewFactory())
}

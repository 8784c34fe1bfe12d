// Package pitchbend turns MIDI pitch wheel messages into a frequency ratio
// signal.
package pitchbend

import (
	"math"

	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/window"
)

const TypeID = "pitch_bend"

const (
	InputMIDI = iota
)

const (
	OutputBend = iota
)

const (
	PropertyRange = iota
)

// DefaultRange is the bend range in semitones.
const DefaultRange = 2

// BendMessage is the return message kind echoing the wheel position.
const BendMessage = 1

// PitchBend outputs 2^(position*range/12), a multiplier for a frequency
// input. The wheel is a single global control, so the node always runs one
// voice.
type PitchBend struct {
	*node.Base

	state float32
	sent  float32
}

func New() *PitchBend {
	p := &PitchBend{
		Base: node.NewBase(node.Spec{
			TypeID:     TypeID,
			Inputs:     models.SocketTypeList{models.SocketMIDI},
			Outputs:    models.SocketTypeList{models.SocketAudio},
			Properties: models.PropertyTypeList{models.PropertyInteger},
		}),
	}

	_ = p.SetPropertyValue(PropertyRange, DefaultRange)

	return p
}

func (p *PitchBend) Clone() *PitchBend {
	return &PitchBend{
		Base:  p.Base.Clone(),
		state: p.state,
		sent:  p.sent,
	}
}

// Bend returns the current wheel position in [-1, 1).
func (p *PitchBend) Bend() float32 {
	return p.state
}

func (p *PitchBend) InferPolyphonyOperation(inputs []polyphony.Pointer) polyphony.Descriptor {
	return polyphony.Mono(inputs)
}

// DisconnectCallback recenters the wheel so a reconnected node starts neutral.
func (p *PitchBend) DisconnectCallback() {
	p.state = 0
}

func (p *PitchBend) Process(in *window.InputWindow) {
	out := p.Output()
	if out.Voices() == 0 {
		return
	}

	dst := out.Samples(0, OutputBend)
	semitones := float64(p.Property(PropertyRange))
	ratio := p.ratio(semitones)
	frame := 0

	for _, e := range in.Events(InputMIDI, 0) {
		if !e.IsPitchBend() {
			continue
		}

		end := min(max(e.Frame, frame), len(dst))
		for ; frame < end; frame++ {
			dst[frame] = ratio
		}

		p.state = e.Bend()
		ratio = p.ratio(semitones)
	}

	for ; frame < len(dst); frame++ {
		dst[frame] = ratio
	}

	if p.state != p.sent {
		p.sent = p.state
		p.SendReturnMessageF(BendMessage, p.state, true)
	}
}

func (p *PitchBend) ratio(semitones float64) float32 {
	return float32(math.Exp2(float64(p.state) * semitones / 12))
}

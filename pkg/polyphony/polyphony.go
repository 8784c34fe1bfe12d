// Package polyphony infers how many parallel voices a node evaluates per tick
// and how each local voice maps onto the voices of its upstream producers.
package polyphony

// Pointer is the addressing token an upstream node hands to its consumers:
// which node produced the stream and how many voices it carries this tick.
// The zero Pointer stands for an unconnected input.
type Pointer struct {
	Source uint64 `json:"source"`
	Voices int    `json:"voices"`
}

// Connected reports whether the pointer refers to a live upstream producer.
func (p Pointer) Connected() bool {
	return p.Voices > 0
}

// Descriptor describes one node's voice shape for one tick.
type Descriptor struct {
	// Voices is the number of parallel instances the node evaluates.
	Voices int
	// Inputs holds one pointer per input socket, in socket order.
	Inputs []Pointer
}

// UpstreamVoice returns the voice of input's producer that feeds local voice.
// Inputs with fewer voices than the descriptor are repeated across the
// higher voice count, never truncated.
func (d Descriptor) UpstreamVoice(input, voice int) int {
	if input < 0 || input >= len(d.Inputs) {
		return 0
	}

	n := d.Inputs[input].Voices
	if n <= 1 {
		return 0
	}

	return voice % n
}

// Equal reports whether two descriptors describe the same shape and
// addressing.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.Voices != o.Voices || len(d.Inputs) != len(o.Inputs) {
		return false
	}

	for i := range d.Inputs {
		if d.Inputs[i] != o.Inputs[i] {
			return false
		}
	}

	return true
}

// Broadcast is the default inference: the voice count is the maximum over the
// connected inputs, or one when nothing polyphonic is connected.
func Broadcast(inputs []Pointer) Descriptor {
	voices := 0
	for _, p := range inputs {
		if p.Voices > voices {
			voices = p.Voices
		}
	}

	if voices == 0 {
		voices = 1
	}

	return Descriptor{Voices: voices, Inputs: inputs}
}

// Mono always evaluates a single voice. Nodes that reduce many voices to one
// read every upstream voice themselves.
func Mono(inputs []Pointer) Descriptor {
	return Descriptor{Voices: 1, Inputs: inputs}
}

// Pairwise combines polyphonic inputs voice by voice. The voice count is the
// smallest count among connected polyphonic inputs; monophonic inputs are
// broadcast.
func Pairwise(inputs []Pointer) Descriptor {
	voices := 0
	for _, p := range inputs {
		if p.Voices <= 1 {
			continue
		}

		if voices == 0 || p.Voices < voices {
			voices = p.Voices
		}
	}

	if voices == 0 {
		voices = 1
	}

	return Descriptor{Voices: voices, Inputs: inputs}
}

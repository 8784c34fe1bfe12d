package window

import (
	"github.com/audionodes/native/pkg/midi"
	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/polyphony"
)

type view struct {
	src      *Window
	socket   int
	constant []float32
}

// InputWindow presents a node's inputs for one tick. Sample slices returned
// by its methods alias upstream storage and must be treated as read-only.
type InputWindow struct {
	format Format
	desc   polyphony.Descriptor
	types  models.SocketTypeList
	views  []view
}

// Bind resets the window for a new tick. Every socket starts unconnected and
// silent until Connect or Constant is called for it.
func (in *InputWindow) Bind(format Format, desc polyphony.Descriptor, types models.SocketTypeList) {
	in.format = format
	in.desc = desc
	in.types = types

	if cap(in.views) < len(types) {
		in.views = make([]view, len(types))
	} else {
		in.views = in.views[:len(types)]
		clear(in.views)
	}
}

// Connect routes socket to output socket out of an upstream window.
func (in *InputWindow) Connect(socket int, src *Window, out int) {
	in.views[socket] = view{src: src, socket: out}
}

// Constant feeds socket from a caller-owned buffer holding the socket's
// unconnected value.
func (in *InputWindow) Constant(socket int, buf []float32) {
	in.views[socket] = view{constant: buf}
}

// Format returns the stream format of the tick.
func (in *InputWindow) Format() Format {
	return in.format
}

// Descriptor returns the voice shape the node was inferred to have.
func (in *InputWindow) Descriptor() polyphony.Descriptor {
	return in.desc
}

// Voices returns the local voice count.
func (in *InputWindow) Voices() int {
	return in.desc.Voices
}

// Sockets returns the number of input sockets.
func (in *InputWindow) Sockets() int {
	return len(in.views)
}

// Connected reports whether socket reads from an upstream node.
func (in *InputWindow) Connected(socket int) bool {
	return in.views[socket].src != nil
}

// Samples returns the frames feeding local voice of socket.
func (in *InputWindow) Samples(socket, voice int) []float32 {
	return in.UpstreamSamples(socket, in.desc.UpstreamVoice(socket, voice))
}

// Events returns the MIDI events feeding local voice of socket.
func (in *InputWindow) Events(socket, voice int) []midi.Event {
	return in.UpstreamEvents(socket, in.desc.UpstreamVoice(socket, voice))
}

// UpstreamVoices returns how many voices the producer of socket carries.
// Unconnected sockets carry one.
func (in *InputWindow) UpstreamVoices(socket int) int {
	v := in.views[socket]
	if v.src == nil {
		return 1
	}

	return v.src.Voices()
}

// UpstreamSamples returns the frames of one upstream voice, bypassing the
// local voice mapping. Reducing nodes use it to visit every upstream voice.
func (in *InputWindow) UpstreamSamples(socket, upstreamVoice int) []float32 {
	v := in.views[socket]
	if v.src == nil {
		return v.constant
	}

	n := v.src.Voices()
	if n == 0 {
		return nil
	}

	return v.src.Samples(upstreamVoice%n, v.socket)
}

// UpstreamEvents returns the events of one upstream voice.
func (in *InputWindow) UpstreamEvents(socket, upstreamVoice int) []midi.Event {
	v := in.views[socket]
	if v.src == nil || v.src.SocketType(v.socket) != models.SocketMIDI {
		return nil
	}

	n := v.src.Voices()
	if n == 0 {
		return nil
	}

	return v.src.Events(upstreamVoice%n, v.socket).Events()
}

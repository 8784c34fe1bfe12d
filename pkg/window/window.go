// Package window holds the per-tick sample buffers nodes exchange.
//
// Every node owns exactly one output Window shaped voices x sockets x block.
// Consumers never own upstream data: an InputWindow is a set of views into
// upstream output windows and is only valid during one Process call.
package window

import (
	"github.com/audionodes/native/pkg/midi"
	"github.com/audionodes/native/pkg/models"
)

// Format is the stream format shared by every window of one engine.
type Format struct {
	SampleRate int `json:"sample_rate"`
	BlockSize  int `json:"block_size"`
}

// Window is one node's output buffer for the current tick.
type Window struct {
	voices  int
	block   int
	types   models.SocketTypeList
	samples []float32
	events  []midi.Buffer
}

// Prepare shapes the window for voices voices of the given sockets and clears
// it. Storage is reused when its capacity suffices, so preparing an unchanged
// shape never allocates.
func (w *Window) Prepare(voices int, types models.SocketTypeList, block int) {
	if voices < 0 {
		voices = 0
	}

	sockets := len(types)
	w.voices = voices
	w.block = block
	w.types = types

	n := voices * sockets * block
	if cap(w.samples) < n {
		w.samples = make([]float32, n)
	} else {
		w.samples = w.samples[:n]
		clear(w.samples)
	}

	slots := voices * sockets
	for len(w.events) < slots {
		w.events = append(w.events, midi.NewBuffer())
	}

	w.events = w.events[:slots]
	for i := range w.events {
		w.events[i].Reset()
	}
}

// Voices returns the voice count the window was prepared for.
func (w *Window) Voices() int {
	return w.voices
}

// Sockets returns the number of sockets per voice.
func (w *Window) Sockets() int {
	return len(w.types)
}

// BlockSize returns the number of frames per socket.
func (w *Window) BlockSize() int {
	return w.block
}

// SocketType returns the kind of socket s.
func (w *Window) SocketType(s int) models.SocketType {
	return w.types[s]
}

// Samples returns the writable frames of one voice and socket.
func (w *Window) Samples(voice, socket int) []float32 {
	off := (voice*len(w.types) + socket) * w.block

	return w.samples[off : off+w.block : off+w.block]
}

// Events returns the event buffer of one voice and socket.
func (w *Window) Events(voice, socket int) *midi.Buffer {
	return &w.events[voice*len(w.types)+socket]
}

// Silence zeroes every sample and drops every event.
func (w *Window) Silence() {
	clear(w.samples)

	for i := range w.events {
		w.events[i].Reset()
	}
}

// Package testutil provides signal builders shared by node tests.
package testutil

import (
	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/window"
)

// Constant returns frames samples all equal to value.
func Constant(frames int, value float32) []float32 {
	buf := make([]float32, frames)
	for i := range buf {
		buf[i] = value
	}

	return buf
}

// AudioSource returns a one-socket audio window holding one voice per slice.
// Slices shorter than block leave the remaining frames silent.
func AudioSource(block int, voices ...[]float32) *window.Window {
	var w window.Window

	w.Prepare(len(voices), models.SocketTypeList{models.SocketAudio}, block)

	for v, samples := range voices {
		copy(w.Samples(v, 0), samples)
	}

	return &w
}

// FeedUnconnected streams the stored value of every input of n into in, the
// way a scheduler does for sockets without an upstream connection.
func FeedUnconnected(in *window.InputWindow, n node.Node, frames int) {
	for i := range n.InputCount() {
		v, _ := n.Core().InputValue(i)
		in.Constant(i, Constant(frames, v))
	}
}

// Package models defines the shared value types of the node graph: socket and
// property kinds and host-facing configuration descriptors.
package models

// SocketType represents the kind of stream carried by one connection point.
type SocketType uint8

const (
	SocketAudio SocketType = iota
	SocketMIDI
	SocketTrigger
)

var socketTypeName = map[SocketType]string{
	SocketAudio:   "audio",
	SocketMIDI:    "midi",
	SocketTrigger: "trigger",
}

func (t SocketType) String() string {
	if name, ok := socketTypeName[t]; ok {
		return name
	}

	return "unknown"
}

// IsSampled reports whether the socket carries one sample per frame.
// MIDI sockets carry events instead.
func (t SocketType) IsSampled() bool {
	return t == SocketAudio || t == SocketTrigger
}

// SocketTypeList is an ordered list of socket kinds, one per socket.
type SocketTypeList []SocketType

// Clone returns an independent copy of the list.
func (l SocketTypeList) Clone() SocketTypeList {
	if l == nil {
		return nil
	}

	out := make(SocketTypeList, len(l))
	copy(out, l)

	return out
}

// Compatible reports whether an output socket of kind src may feed an input
// socket of kind dst. Audio and trigger streams are interchangeable sample
// streams; MIDI only connects to MIDI.
func Compatible(src, dst SocketType) bool {
	if src == SocketMIDI || dst == SocketMIDI {
		return src == dst
	}

	return true
}

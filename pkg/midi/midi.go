// Package midi defines the events carried on midi sockets.
package midi

// Status nibbles of channel voice messages.
const (
	NoteOff         byte = 0x80
	NoteOn          byte = 0x90
	PolyPressure    byte = 0xA0
	ControlChange   byte = 0xB0
	ProgramChange   byte = 0xC0
	ChannelPressure byte = 0xD0
	PitchBend       byte = 0xE0
)

// MaxEventsPerBlock bounds how many events one socket carries per voice per
// block. Buffers are allocated once at this capacity.
const MaxEventsPerBlock = 256

const pitchBendCenter = 8192

// Event is one MIDI message positioned inside the current block.
type Event struct {
	Frame  int  `json:"frame"`  // Offset of the event inside the block.
	Status byte `json:"status"` // Status byte, command in the high nibble.
	Data1  byte `json:"data1"`
	Data2  byte `json:"data2"`
}

// Command returns the message kind without the channel.
func (e Event) Command() byte {
	return e.Status & 0xF0
}

// Channel returns the zero-based MIDI channel.
func (e Event) Channel() int {
	return int(e.Status & 0x0F)
}

// IsNoteOn reports a note-on with non-zero velocity.
func (e Event) IsNoteOn() bool {
	return e.Command() == NoteOn && e.Data2 > 0
}

// IsNoteOff reports a note-off, including note-on with zero velocity.
func (e Event) IsNoteOff() bool {
	return e.Command() == NoteOff || (e.Command() == NoteOn && e.Data2 == 0)
}

// IsPitchBend reports a pitch wheel message.
func (e Event) IsPitchBend() bool {
	return e.Command() == PitchBend
}

// Bend returns the pitch wheel position normalized to [-1, 1).
func (e Event) Bend() float32 {
	raw := int(e.Data2&0x7F)<<7 | int(e.Data1&0x7F)

	return float32(raw-pitchBendCenter) / pitchBendCenter
}

// NewPitchBend builds a pitch wheel event from a position in [-1, 1].
func NewPitchBend(frame, channel int, bend float32) Event {
	if bend > 1 {
		bend = 1
	}

	if bend < -1 {
		bend = -1
	}

	raw := int(bend*pitchBendCenter) + pitchBendCenter
	if raw > 0x3FFF {
		raw = 0x3FFF
	}

	return Event{
		Frame:  frame,
		Status: PitchBend | byte(channel&0x0F),
		Data1:  byte(raw & 0x7F),
		Data2:  byte(raw >> 7 & 0x7F),
	}
}

// Buffer is a fixed-capacity list of events for one socket and voice.
type Buffer struct {
	events []Event
}

// NewBuffer allocates a buffer holding up to MaxEventsPerBlock events.
func NewBuffer() Buffer {
	return Buffer{events: make([]Event, 0, MaxEventsPerBlock)}
}

// Append adds e and reports false when the buffer is full.
func (b *Buffer) Append(e Event) bool {
	if len(b.events) == cap(b.events) {
		return false
	}

	b.events = append(b.events, e)

	return true
}

// Events returns the buffered events in arrival order.
func (b *Buffer) Events() []Event {
	return b.events
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.events)
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.events = b.events[:0]
}

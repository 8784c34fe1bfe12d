package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_Classification(t *testing.T) {
	on := Event{Status: NoteOn | 3, Data1: 60, Data2: 100}
	assert.True(t, on.IsNoteOn())
	assert.False(t, on.IsNoteOff())
	assert.Equal(t, 3, on.Channel())
	assert.Equal(t, NoteOn, on.Command())

	silentOn := Event{Status: NoteOn, Data1: 60}
	assert.True(t, silentOn.IsNoteOff())
	assert.False(t, silentOn.IsNoteOn())

	assert.True(t, Event{Status: NoteOff, Data1: 60}.IsNoteOff())
	assert.True(t, Event{Status: PitchBend | 1}.IsPitchBend())
}

func TestPitchBend(t *testing.T) {
	center := NewPitchBend(5, 2, 0)
	assert.Equal(t, 5, center.Frame)
	assert.Equal(t, 2, center.Channel())
	assert.InDelta(t, 0, center.Bend(), 1e-6)

	up := NewPitchBend(0, 0, 1)
	assert.InDelta(t, 1, up.Bend(), 2.0/pitchBendCenter)

	down := NewPitchBend(0, 0, -1)
	assert.InDelta(t, -1, down.Bend(), 1e-6)

	half := NewPitchBend(0, 0, 0.5)
	assert.InDelta(t, 0.5, half.Bend(), 1e-3)

	clamped := NewPitchBend(0, 0, 4)
	assert.Equal(t, up, clamped)
}

func TestBuffer(t *testing.T) {
	b := NewBuffer()

	for i := range MaxEventsPerBlock {
		assert.True(t, b.Append(Event{Frame: i}))
	}

	assert.False(t, b.Append(Event{}))
	assert.Equal(t, MaxEventsPerBlock, b.Len())
	assert.Equal(t, 7, b.Events()[7].Frame)

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.True(t, b.Append(Event{Frame: 1}))
}

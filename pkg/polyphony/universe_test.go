package polyphony

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniverse_FirstUpdateIsAChange(t *testing.T) {
	var u Universe

	assert.True(t, u.Update(Descriptor{Voices: 1}))
	assert.Equal(t, 1, u.Voices())
	assert.Equal(t, 0, u.PreviousVoices())
	assert.Equal(t, uint64(1), u.Changes())
}

func TestUniverse_UpdateReportsOnlyChanges(t *testing.T) {
	var u Universe

	inputs := []Pointer{{Source: 7, Voices: 1}}
	u.Update(Broadcast(inputs))

	assert.False(t, u.Update(Broadcast([]Pointer{{Source: 7, Voices: 1}})))

	assert.True(t, u.Update(Broadcast([]Pointer{{Source: 7, Voices: 4}})))
	assert.Equal(t, 4, u.Voices())
	assert.Equal(t, 1, u.PreviousVoices())

	assert.True(t, u.Update(Broadcast([]Pointer{{Source: 8, Voices: 4}})))
	assert.Equal(t, uint64(3), u.Changes())
}

func TestUniverse_OwnsInputs(t *testing.T) {
	var u Universe

	inputs := []Pointer{{Source: 1, Voices: 2}}
	u.Update(Broadcast(inputs))

	inputs[0].Voices = 9

	assert.Equal(t, 2, u.Descriptor().Inputs[0].Voices)
	assert.False(t, u.Update(Descriptor{Voices: 2, Inputs: []Pointer{{Source: 1, Voices: 2}}}))
}

func TestUniverse_Reset(t *testing.T) {
	var u Universe

	u.Update(Descriptor{Voices: 3})
	u.Reset()

	assert.Equal(t, 0, u.Voices())
	assert.Equal(t, 3, u.PreviousVoices())
	assert.True(t, u.Update(Descriptor{Voices: 3}))
}

func TestUniverse_Pointer(t *testing.T) {
	var u Universe

	u.Update(Descriptor{Voices: 5})

	assert.Equal(t, Pointer{Source: 42, Voices: 5}, u.Pointer(42))
}

package oscillator

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/testutil"
	"github.com/audionodes/native/pkg/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness drives an oscillator the way a scheduler does, feeding every input
// from its unconnected value.
type harness struct {
	universe polyphony.Universe
	in       window.InputWindow
}

func (h *harness) tick(o *Oscillator, voices int, format window.Format) {
	if h.universe.Update(polyphony.Descriptor{Voices: voices}) {
		o.ApplyBundleUniverseChanges(&h.universe)
	}

	o.PrepareOutputWindow(voices, format.BlockSize)
	h.in.Bind(format, h.universe.Descriptor(), o.InputSocketTypes())

	testutil.FeedUnconnected(&h.in, o, format.BlockSize)
	o.Process(&h.in)
}

func wavetableBytes(samples ...float32) []byte {
	data := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(s))
	}

	return data
}

func TestNew_Defaults(t *testing.T) {
	o := New()

	assert.Equal(t, TypeID, o.TypeID())
	assert.Equal(t, 4, o.InputCount())
	assert.Equal(t, 1, o.OutputCount())
	assert.False(t, o.IsSink())

	freq, err := o.InputValue(InputFrequency)
	require.NoError(t, err)
	assert.InDelta(t, 440, freq, 1e-6)

	amp, err := o.InputValue(InputAmplitude)
	require.NoError(t, err)
	assert.InDelta(t, 1, amp, 1e-6)

	opts := o.ConfigurationOptions()
	require.Len(t, opts, 1)
	assert.Equal(t, ConfigWaveform, opts[0].Name)
	assert.Equal(t, "sine", opts[0].CurrentValue)
}

func TestOscillator_SetConfigurationOption(t *testing.T) {
	o := New()

	assert.Equal(t, node.StatusOK, o.SetConfigurationOption(ConfigWaveform, "square"))
	assert.Equal(t, Square, o.Property(PropertyOscillationFunc))
	assert.Equal(t, "square", o.ConfigurationOptions()[0].CurrentValue)

	assert.Equal(t, node.StatusInvalidValue, o.SetConfigurationOption(ConfigWaveform, "noise"))
	assert.Equal(t, Square, o.Property(PropertyOscillationFunc))

	assert.Equal(t, node.StatusUnknownOption, o.SetConfigurationOption("shape", "sine"))
}

func TestOscillator_ReceiveBinary(t *testing.T) {
	o := New()

	require.NoError(t, o.ReceiveBinary(WavetableMessage, wavetableBytes(0, 1, 0, -1)))
	assert.Equal(t, []float32{0, 1, 0, -1}, o.wavetable)

	assert.ErrorIs(t, o.ReceiveBinary(WavetableMessage, []byte{1, 2, 3}), ErrMalformedWavetable)
	assert.ErrorIs(t, o.ReceiveBinary(WavetableMessage, nil), ErrMalformedWavetable)
	assert.Equal(t, []float32{0, 1, 0, -1}, o.wavetable)

	assert.NoError(t, o.ReceiveBinary(99, []byte{1}))
}

func TestOscillator_Saw(t *testing.T) {
	o := New()
	require.Equal(t, node.StatusOK, o.SetConfigurationOption(ConfigWaveform, "saw"))
	require.NoError(t, o.SetInputValue(InputFrequency, 1))

	var h harness
	h.tick(o, 1, window.Format{SampleRate: 8, BlockSize: 8})

	assert.Equal(t, []float32{-1, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75}, o.Output().Samples(0, OutputSignal))
	assert.InDelta(t, 0, o.Phases()[0], 1e-12)
}

func TestOscillator_AmplitudeAndOffset(t *testing.T) {
	o := New()
	require.Equal(t, node.StatusOK, o.SetConfigurationOption(ConfigWaveform, "square"))
	require.NoError(t, o.SetInputValue(InputFrequency, 1))
	require.NoError(t, o.SetInputValue(InputAmplitude, 0.5))
	require.NoError(t, o.SetInputValue(InputOffset, 1))

	var h harness
	h.tick(o, 1, window.Format{SampleRate: 4, BlockSize: 4})

	assert.Equal(t, []float32{1.5, 1.5, 0.5, 0.5}, o.Output().Samples(0, OutputSignal))
}

func TestOscillator_PhaseContinuesAcrossBlocks(t *testing.T) {
	o := New()
	require.Equal(t, node.StatusOK, o.SetConfigurationOption(ConfigWaveform, "saw"))
	require.NoError(t, o.SetInputValue(InputFrequency, 1))

	var h harness
	format := window.Format{SampleRate: 8, BlockSize: 4}

	h.tick(o, 1, format)
	assert.InDelta(t, 0.5, o.Phases()[0], 1e-12)

	h.tick(o, 1, format)
	assert.Equal(t, []float32{0, 0.25, 0.5, 0.75}, o.Output().Samples(0, OutputSignal))
}

func TestOscillator_VoicesSurvivePolyphonyChanges(t *testing.T) {
	o := New()
	require.NoError(t, o.SetInputValue(InputFrequency, 1))

	var h harness
	format := window.Format{SampleRate: 8, BlockSize: 2}

	h.tick(o, 1, format)
	require.Len(t, o.Phases(), 1)
	assert.InDelta(t, 0.25, o.Phases()[0], 1e-12)

	h.tick(o, 4, format)
	require.Len(t, o.Phases(), 4)
	assert.InDelta(t, 0.5, o.Phases()[0], 1e-12)
	assert.InDelta(t, 0.25, o.Phases()[3], 1e-12)
	assert.Equal(t, 4, o.Output().Voices())

	h.tick(o, 2, format)
	require.Len(t, o.Phases(), 2)
	assert.InDelta(t, 0.75, o.Phases()[0], 1e-12)
}

func TestOscillator_Wavetable(t *testing.T) {
	o := New()
	require.Equal(t, node.StatusOK, o.SetConfigurationOption(ConfigWaveform, "wavetable"))
	require.NoError(t, o.SetInputValue(InputFrequency, 1))

	var h harness
	format := window.Format{SampleRate: 8, BlockSize: 8}

	h.tick(o, 1, format)
	assert.Equal(t, make([]float32, 8), o.Output().Samples(0, OutputSignal))

	require.NoError(t, o.ReceiveBinary(WavetableMessage, wavetableBytes(0, 1, 0, -1)))
	h.tick(o, 1, format)

	assert.Equal(t, []float32{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5}, o.Output().Samples(0, OutputSignal))
}

func TestOscillator_NonFiniteFrequencyRecovers(t *testing.T) {
	format := window.Format{SampleRate: 48000, BlockSize: 4}

	for _, waveform := range []string{"sine", "saw", "square", "triangle", "wavetable"} {
		for _, bad := range []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))} {
			t.Run(fmt.Sprintf("%s/%v", waveform, bad), func(t *testing.T) {
				o := New()
				require.Equal(t, node.StatusOK, o.SetConfigurationOption(ConfigWaveform, waveform))
				require.NoError(t, o.ReceiveBinary(WavetableMessage, wavetableBytes(0, 1, 0, -1)))

				var h harness

				require.NoError(t, o.SetInputValue(InputFrequency, bad))
				assert.NotPanics(t, func() { h.tick(o, 1, format) })

				require.NoError(t, o.SetInputValue(InputFrequency, 440))

				for range 3 {
					assert.NotPanics(t, func() { h.tick(o, 1, format) })

					for _, s := range o.Output().Samples(0, OutputSignal) {
						assert.False(t, math.IsNaN(float64(s)) || math.IsInf(float64(s), 0), "sample %v", s)
					}
				}

				require.Len(t, o.Phases(), 1)
				assert.GreaterOrEqual(t, o.Phases()[0], 0.0)
				assert.Less(t, o.Phases()[0], 1.0)
			})
		}
	}
}

func TestOscillator_NonFiniteSamplesAreSilenced(t *testing.T) {
	o := New()
	require.NoError(t, o.SetInputValue(InputFrequency, 1))
	require.NoError(t, o.SetInputValue(InputOffset, float32(math.Inf(1))))

	var h harness
	h.tick(o, 1, window.Format{SampleRate: 4, BlockSize: 4})

	assert.Equal(t, make([]float32, 4), o.Output().Samples(0, OutputSignal))
}

func TestOscillator_Clone(t *testing.T) {
	o := New()
	require.NoError(t, o.ReceiveBinary(WavetableMessage, wavetableBytes(1, 2)))
	require.NoError(t, o.SetInputValue(InputFrequency, 1))

	var h harness
	h.tick(o, 2, window.Format{SampleRate: 8, BlockSize: 2})

	c := o.Clone()

	assert.NotEqual(t, o.UID(), c.UID())
	assert.Equal(t, o.Phases(), c.Phases())
	assert.Equal(t, o.wavetable, c.wavetable)

	c.ResetState()
	c.wavetable[0] = 9

	assert.InDelta(t, 0.25, o.Phases()[0], 1e-12)
	assert.InDelta(t, 1, o.wavetable[0], 1e-9)
}

func TestFactory(t *testing.T) {
	f := NewFactory()
	creator := f.Creator()

	n := creator.Construct()
	require.NotNil(t, n)
	assert.Equal(t, f.ID(), n.Core().TypeID())

	assert.NotNil(t, creator.Copy(n))
	assert.Nil(t, creator.Copy(&other{Base: node.NewBase(node.Spec{TypeID: "other"})}))
}

type other struct {
	*node.Base
}

func (o *other) Process(*window.InputWindow) {}

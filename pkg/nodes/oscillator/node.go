// Package oscillator provides a polyphonic periodic signal generator.
package oscillator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/window"
)

const TypeID = "oscillator"

// Input sockets.
const (
	InputFrequency = iota
	InputAmplitude
	InputOffset
	InputParam
)

// Output sockets.
const (
	OutputSignal = iota
)

// Properties.
const (
	PropertyOscillationFunc = iota
)

// Oscillation functions, in the order of PropertyOscillationFunc values.
const (
	Sine = iota
	Saw
	Square
	Triangle
	Wavetable
)

// WavetableMessage is the ReceiveBinary kind carrying a wavetable as
// little-endian float32 samples.
const WavetableMessage = 1

// MaxWavetableSize bounds the number of samples of a loaded wavetable.
const MaxWavetableSize = 1 << 16

// ConfigWaveform is the configuration option selecting the oscillation
// function.
const ConfigWaveform = "waveform"

var ErrMalformedWavetable = errors.New("malformed wavetable payload")

var waveformNames = []string{"sine", "saw", "square", "triangle", "wavetable"}

type oscillationFunc func(phase, param float64, table []float32) float64

var oscillationFuncs = []oscillationFunc{
	Sine: func(phase, _ float64, _ []float32) float64 {
		return math.Sin(2 * math.Pi * phase)
	},
	Saw: func(phase, _ float64, _ []float32) float64 {
		return 2*phase - 1
	},
	Square: func(phase, param float64, _ []float32) float64 {
		if phase < pulseWidth(param) {
			return 1
		}

		return -1
	},
	Triangle: func(phase, _ float64, _ []float32) float64 {
		if phase < 0.5 {
			return 4*phase - 1
		}

		return 3 - 4*phase
	},
	Wavetable: func(phase, _ float64, table []float32) float64 {
		if len(table) == 0 {
			return 0
		}

		pos := phase * float64(len(table))
		i := int(pos)
		frac := pos - float64(i)
		a := float64(table[i%len(table)])
		b := float64(table[(i+1)%len(table)])

		return a + (b-a)*frac
	},
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// pulseWidth maps param in [-1, 1] to a duty cycle, 0 meaning 50%.
func pulseWidth(param float64) float64 {
	return math.Min(0.99, math.Max(0.01, 0.5+param/2))
}

// Oscillator generates one periodic signal per voice. Its running phase is
// kept per voice, so voices survive polyphony changes.
type Oscillator struct {
	*node.Base

	phases    polyphony.Bundles[float64]
	wavetable []float32
}

// New creates an oscillator playing a 440 Hz sine at full amplitude.
func New() *Oscillator {
	o := &Oscillator{
		Base: node.NewBase(node.Spec{
			TypeID:     TypeID,
			Inputs:     models.SocketTypeList{models.SocketAudio, models.SocketAudio, models.SocketAudio, models.SocketAudio},
			Outputs:    models.SocketTypeList{models.SocketAudio},
			Properties: models.PropertyTypeList{models.PropertySelect},
		}),
	}

	_ = o.SetInputValue(InputFrequency, 440)
	_ = o.SetInputValue(InputAmplitude, 1)

	return o
}

// Clone duplicates the oscillator, including its per-voice phases.
func (o *Oscillator) Clone() *Oscillator {
	c := &Oscillator{
		Base:   o.Base.Clone(),
		phases: o.phases.Clone(),
	}

	if o.wavetable != nil {
		c.wavetable = make([]float32, len(o.wavetable))
		copy(c.wavetable, o.wavetable)
	}

	return c
}

// ResetState restarts every voice at phase zero.
func (o *Oscillator) ResetState() {
	for i := range o.phases.Slice() {
		*o.phases.At(i) = 0
	}
}

// Phases returns the running phase of each voice.
func (o *Oscillator) Phases() []float64 {
	return o.phases.Slice()
}

func (o *Oscillator) ApplyBundleUniverseChanges(u *polyphony.Universe) {
	o.phases.Resize(u.Voices(), func(int) float64 { return 0 })
}

func (o *Oscillator) ConfigurationOptions() []models.ConfigurationDescriptor {
	current := o.Property(PropertyOscillationFunc)
	if current < 0 || current >= len(waveformNames) {
		current = Sine
	}

	return []models.ConfigurationDescriptor{{
		Name:            ConfigWaveform,
		CurrentValue:    waveformNames[current],
		AvailableValues: waveformNames,
	}}
}

func (o *Oscillator) SetConfigurationOption(name, value string) node.Status {
	idx, status := node.ValidateOption(o.ConfigurationOptions(), name, value)
	if !status.OK() {
		return status
	}

	_ = o.SetPropertyValue(PropertyOscillationFunc, idx)

	return node.StatusOK
}

// ReceiveBinary loads a wavetable. Payloads of other kinds are ignored.
func (o *Oscillator) ReceiveBinary(kind int, data []byte) error {
	if kind != WavetableMessage {
		return nil
	}

	if len(data) == 0 || len(data)%4 != 0 || len(data)/4 > MaxWavetableSize {
		return fmt.Errorf("%w: %d bytes", ErrMalformedWavetable, len(data))
	}

	table := make([]float32, len(data)/4)
	for i := range table {
		table[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}

	o.wavetable = table

	return nil
}

func (o *Oscillator) Process(in *window.InputWindow) {
	out := o.Output()
	format := in.Format()

	fn := Sine
	if f := o.Property(PropertyOscillationFunc); f >= 0 && f < len(oscillationFuncs) {
		fn = f
	}

	osc := oscillationFuncs[fn]

	if format.SampleRate <= 0 {
		return
	}

	step := 1 / float64(format.SampleRate)

	for v := 0; v < out.Voices() && v < o.phases.Len(); v++ {
		freq := in.Samples(InputFrequency, v)
		amp := in.Samples(InputAmplitude, v)
		offset := in.Samples(InputOffset, v)
		param := in.Samples(InputParam, v)
		dst := out.Samples(v, OutputSignal)

		if len(freq) < len(dst) || len(amp) < len(dst) || len(offset) < len(dst) || len(param) < len(dst) {
			continue
		}

		phase := o.phases.At(v)
		if !finite(*phase) {
			*phase = 0
		}

		for i := range dst {
			sample := float32(osc(*phase, float64(param[i]), o.wavetable)*float64(amp[i]) + float64(offset[i]))
			if !finite(float64(sample)) {
				sample = 0
			}

			dst[i] = sample

			// A non-finite frequency holds the phase for that frame.
			if inc := float64(freq[i]) * step; finite(inc) {
				*phase += inc
				*phase -= math.Floor(*phase)
			}
		}
	}
}

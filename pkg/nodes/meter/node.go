// Package meter provides a sink measuring the level of its input.
package meter

import (
	"math"
	"sync/atomic"

	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/window"
)

const TypeID = "meter"

const (
	InputSignal = iota
)

const (
	PropertyMode = iota
)

// Measurement modes, in the order of PropertyMode values.
const (
	ModePeak = iota
	ModeRMS
)

// ConfigMode is the configuration option selecting the measurement.
const ConfigMode = "mode"

// LevelMessage is the return message kind carrying the measured level.
const LevelMessage = 1

var modeNames = []string{"peak", "rms"}

// Meter sums every upstream voice into one measurement per block and reports
// it to the host. It terminates the graph.
type Meter struct {
	*node.Base

	level atomic.Uint32
}

func New() *Meter {
	return &Meter{
		Base: node.NewBase(node.Spec{
			TypeID:     TypeID,
			Inputs:     models.SocketTypeList{models.SocketAudio},
			Properties: models.PropertyTypeList{models.PropertySelect},
			Sink:       true,
		}),
	}
}

func (m *Meter) Clone() *Meter {
	c := &Meter{Base: m.Base.Clone()}
	c.level.Store(m.level.Load())

	return c
}

// Level returns the most recent measurement. Safe to call from any context.
func (m *Meter) Level() float32 {
	return math.Float32frombits(m.level.Load())
}

func (m *Meter) InferPolyphonyOperation(inputs []polyphony.Pointer) polyphony.Descriptor {
	return polyphony.Mono(inputs)
}

func (m *Meter) ConfigurationOptions() []models.ConfigurationDescriptor {
	current := m.Property(PropertyMode)
	if current < 0 || current >= len(modeNames) {
		current = ModePeak
	}

	return []models.ConfigurationDescriptor{{
		Name:            ConfigMode,
		CurrentValue:    modeNames[current],
		AvailableValues: modeNames,
	}}
}

func (m *Meter) SetConfigurationOption(name, value string) node.Status {
	idx, status := node.ValidateOption(m.ConfigurationOptions(), name, value)
	if !status.OK() {
		return status
	}

	_ = m.SetPropertyValue(PropertyMode, idx)

	return node.StatusOK
}

func (m *Meter) DisconnectCallback() {
	m.level.Store(0)
}

func (m *Meter) Process(in *window.InputWindow) {
	voices := in.UpstreamVoices(InputSignal)
	rms := m.Property(PropertyMode) == ModeRMS

	var peak, sum float64

	frames := 0

	for v := 0; v < voices; v++ {
		for _, s := range in.UpstreamSamples(InputSignal, v) {
			x := float64(s)
			sum += x * x
			peak = math.Max(peak, math.Abs(x))
			frames++
		}
	}

	level := peak
	if rms {
		level = 0
		if frames > 0 {
			level = math.Sqrt(sum / float64(frames))
		}
	}

	m.level.Store(math.Float32bits(float32(level)))

	// One level update in flight at a time; the host clears the latch.
	if !m.RefreshUIPending() {
		m.SendReturnMessageF(LevelMessage, float32(level), true)
	}
}

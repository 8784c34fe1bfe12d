package node

import (
	"math"
	"sync/atomic"

	"github.com/audionodes/native/pkg/messages"
	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/window"
)

var lastUID atomic.Uint64

// NewestUID returns the most recently assigned instance identifier, or zero
// when no node has been created yet.
func NewestUID() uint64 {
	return lastUID.Load()
}

// debounceKinds is how many distinct message kinds one latch period tracks.
// A node alternating between more kinds than this may resend a message.
const debounceKinds = 4

type sentMessage struct {
	epoch   atomic.Uint64
	kind    atomic.Int64
	payload atomic.Uint64
}

// Spec declares the fixed shape of a node kind.
type Spec struct {
	TypeID     string
	Inputs     models.SocketTypeList
	Outputs    models.SocketTypeList
	Properties models.PropertyTypeList
	Sink       bool
}

// Base carries the state every node shares and the default hook bodies.
type Base struct {
	uid    uint64
	typeID string
	isSink bool

	inputTypes    models.SocketTypeList
	outputTypes   models.SocketTypeList
	propertyTypes models.PropertyTypeList

	inputValues    []float32
	oldInputValues []float32
	propertyValues []int

	// refreshUI latches once a UI message went out and stays set until the
	// host acknowledges it. While latched, sent remembers the last payload of
	// up to debounceKinds message kinds of the current epoch.
	refreshUI atomic.Bool
	epoch     atomic.Uint64
	evict     atomic.Uint32
	sent      [debounceKinds]sentMessage

	output    window.Window
	messenger Messenger
}

// NewBase creates the base of a new instance and assigns it the next
// instance identifier.
func NewBase(spec Spec) *Base {
	return &Base{
		uid:            lastUID.Add(1),
		typeID:         spec.TypeID,
		isSink:         spec.Sink,
		inputTypes:     spec.Inputs.Clone(),
		outputTypes:    spec.Outputs.Clone(),
		propertyTypes:  spec.Properties.Clone(),
		inputValues:    make([]float32, len(spec.Inputs)),
		oldInputValues: make([]float32, len(spec.Inputs)),
		propertyValues: make([]int, len(spec.Properties)),
	}
}

// Clone copies the base into a new instance with its own identifier. Values
// and the messenger carry over; the output window and debounce latch start
// fresh.
func (b *Base) Clone() *Base {
	c := &Base{
		uid:            lastUID.Add(1),
		typeID:         b.typeID,
		isSink:         b.isSink,
		inputTypes:     b.inputTypes,
		outputTypes:    b.outputTypes,
		propertyTypes:  b.propertyTypes,
		inputValues:    make([]float32, len(b.inputValues)),
		oldInputValues: make([]float32, len(b.oldInputValues)),
		propertyValues: make([]int, len(b.propertyValues)),
		messenger:      b.messenger,
	}

	copy(c.inputValues, b.inputValues)
	copy(c.oldInputValues, b.oldInputValues)
	copy(c.propertyValues, b.propertyValues)

	return c
}

func (b *Base) Core() *Base {
	return b
}

// UID returns the process-unique instance identifier.
func (b *Base) UID() uint64 {
	return b.uid
}

// TypeID returns the registry identifier of the node's concrete kind.
func (b *Base) TypeID() string {
	return b.typeID
}

// Attach sets the messenger return messages are sent through.
func (b *Base) Attach(m Messenger) {
	b.messenger = m
}

func (b *Base) IsSink() bool {
	return b.isSink
}

func (b *Base) InputCount() int {
	return len(b.inputTypes)
}

func (b *Base) OutputCount() int {
	return len(b.outputTypes)
}

func (b *Base) PropertyCount() int {
	return len(b.propertyTypes)
}

// InputSocketTypes returns the declared input sockets. The list must not be
// modified.
func (b *Base) InputSocketTypes() models.SocketTypeList {
	return b.inputTypes
}

// OutputSocketTypes returns the declared output sockets.
func (b *Base) OutputSocketTypes() models.SocketTypeList {
	return b.outputTypes
}

// PropertyTypes returns the declared properties.
func (b *Base) PropertyTypes() models.PropertyTypeList {
	return b.propertyTypes
}

func (b *Base) SetInputValue(index int, value float32) error {
	if err := checkIndex("SetInputValue", index, len(b.inputValues)); err != nil {
		return err
	}

	b.inputValues[index] = value

	return nil
}

// InputValue returns the current value of an input socket. Unconnected
// sockets stream this value.
func (b *Base) InputValue(index int) (float32, error) {
	if err := checkIndex("InputValue", index, len(b.inputValues)); err != nil {
		return 0, err
	}

	return b.inputValues[index], nil
}

// OldInputValue returns the value the input had at the last snapshot.
func (b *Base) OldInputValue(index int) (float32, error) {
	if err := checkIndex("OldInputValue", index, len(b.oldInputValues)); err != nil {
		return 0, err
	}

	return b.oldInputValues[index], nil
}

// InputChanged reports whether an input value differs from its snapshot.
// Out-of-range indices report false.
func (b *Base) InputChanged(index int) bool {
	if index < 0 || index >= len(b.inputValues) {
		return false
	}

	return b.inputValues[index] != b.oldInputValues[index]
}

func (b *Base) SetPropertyValue(index int, value int) error {
	if err := checkIndex("SetPropertyValue", index, len(b.propertyValues)); err != nil {
		return err
	}

	b.propertyValues[index] = value

	return nil
}

func (b *Base) PropertyValue(index int) (int, error) {
	if err := checkIndex("PropertyValue", index, len(b.propertyValues)); err != nil {
		return 0, err
	}

	return b.propertyValues[index], nil
}

// Property returns a property value, or zero for an undeclared index.
// Concrete nodes use it with their own property constants.
func (b *Base) Property(index int) int {
	if index < 0 || index >= len(b.propertyValues) {
		return 0
	}

	return b.propertyValues[index]
}

// ReceiveBinary ignores the payload.
func (b *Base) ReceiveBinary(int, []byte) error {
	return nil
}

func (b *Base) ConfigurationOptions() []models.ConfigurationDescriptor {
	return nil
}

func (b *Base) SetConfigurationOption(string, string) Status {
	return StatusUnsupported
}

// InferPolyphonyOperation broadcasts lower-voice inputs across the largest
// connected voice count.
func (b *Base) InferPolyphonyOperation(inputs []polyphony.Pointer) polyphony.Descriptor {
	return polyphony.Broadcast(inputs)
}

func (b *Base) ApplyBundleUniverseChanges(*polyphony.Universe) {}

// CopyInputValues snapshots other's current input values as this node's old
// values. Passing the node itself takes a plain snapshot.
func (b *Base) CopyInputValues(other Node) {
	copy(b.oldInputValues, other.Core().inputValues)
}

func (b *Base) ConnectCallback() {}

func (b *Base) DisconnectCallback() {}

// Output returns the node's output window.
func (b *Base) Output() *window.Window {
	return &b.output
}

// PrepareOutputWindow shapes the output window for voices voices of the
// declared output sockets.
func (b *Base) PrepareOutputWindow(voices, block int) {
	b.output.Prepare(voices, b.outputTypes, block)
}

// RefreshUIPending reports whether the debounce latch is set.
func (b *Base) RefreshUIPending() bool {
	return b.refreshUI.Load()
}

// ClearRefreshUI releases the debounce latch once the host acknowledged the
// last UI update.
func (b *Base) ClearRefreshUI() {
	b.epoch.Add(1)
	b.refreshUI.Store(false)
}

func (b *Base) SendReturnMessage(kind int, value int32, execThread bool) {
	b.send(messages.NewInteger(b.uid, kind, value), uint64(uint32(value)), execThread)
}

func (b *Base) SendReturnMessageF(kind int, value float32, execThread bool) {
	b.send(messages.NewNumber(b.uid, kind, value), 1<<32|uint64(math.Float32bits(value)), execThread)
}

// send suppresses msg while latched if the same kind already went out with
// the same payload. A message the messenger does not accept releases the
// latch, since the host will never acknowledge it.
func (b *Base) send(msg messages.ReturnMessage, key uint64, execThread bool) {
	gen := b.epoch.Load() + 1
	kind := int64(msg.Kind)
	slot := b.slot(gen, kind)

	if b.refreshUI.Load() && slot.epoch.Load() == gen && slot.payload.Load() == key {
		return
	}

	slot.kind.Store(kind)
	slot.payload.Store(key)
	slot.epoch.Store(gen)
	b.refreshUI.Store(true)

	if b.messenger != nil && !b.messenger.Send(msg, execThread) {
		b.ClearRefreshUI()
	}
}

// slot returns the record of kind in epoch gen, else a free or evicted one.
func (b *Base) slot(gen uint64, kind int64) *sentMessage {
	var free *sentMessage

	for i := range b.sent {
		s := &b.sent[i]
		if s.epoch.Load() != gen {
			if free == nil {
				free = s
			}

			continue
		}

		if s.kind.Load() == kind {
			return s
		}
	}

	if free != nil {
		return free
	}

	return &b.sent[b.evict.Add(1)%debounceKinds]
}

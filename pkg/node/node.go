// Package node defines the unit of computation of the audio graph.
//
// A concrete node kind embeds *Base, which supplies the socket and property
// bookkeeping and default bodies for every hook, and implements Process.
// Hooks with non-default semantics (polyphony inference, bundle resizing,
// configuration options, binary payloads, lifecycle callbacks) are
// overridden by declaring the method on the concrete type.
package node

import (
	"github.com/audionodes/native/pkg/messages"
	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/window"
)

// Node is the execution contract between a node and its scheduler.
//
// Process, InferPolyphonyOperation and ApplyBundleUniverseChanges run on the
// real-time execution context and must neither block nor allocate in steady
// state. The setters run on the control context and must not overlap a
// Process call on the same node; the scheduler serializes them.
type Node interface {
	// Core exposes the embedded base state.
	Core() *Base

	IsSink() bool
	InputCount() int
	SetInputValue(index int, value float32) error
	SetPropertyValue(index int, value int) error
	PropertyValue(index int) (int, error)

	// ReceiveBinary accepts a node-specific out-of-band payload.
	ReceiveBinary(kind int, data []byte) error

	ConfigurationOptions() []models.ConfigurationDescriptor
	SetConfigurationOption(name, value string) Status

	InferPolyphonyOperation(inputs []polyphony.Pointer) polyphony.Descriptor
	ApplyBundleUniverseChanges(u *polyphony.Universe)

	// Process fills the node's output window from in. The output window has
	// already been prepared for in.Voices() voices.
	Process(in *window.InputWindow)

	CopyInputValues(other Node)

	// ConnectCallback runs right before the node becomes active in a graph.
	ConnectCallback()
	// DisconnectCallback runs after the node has become inactive.
	DisconnectCallback()

	SendReturnMessage(kind int, value int32, execThread bool)
	SendReturnMessageF(kind int, value float32, execThread bool)
}

// Messenger receives the return messages a node emits.
type Messenger interface {
	// Send reports whether msg was accepted for delivery.
	Send(msg messages.ReturnMessage, execThread bool) bool
}

// Creator is the factory pair registered for one node kind.
type Creator struct {
	// Construct returns a fresh instance.
	Construct func() Node
	// Copy returns a new instance duplicating src, or nil when src is not of
	// the creator's concrete kind.
	Copy func(src Node) Node
}

// CopyAs applies clone to src when src has the concrete type T and returns
// nil otherwise.
func CopyAs[T Node](src Node, clone func(T) T) Node {
	typed, ok := src.(T)
	if !ok {
		return nil
	}

	return clone(typed)
}

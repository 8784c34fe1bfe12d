// Package messages carries asynchronous node-to-host notifications.
package messages

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PayloadKind tags which payload field of a ReturnMessage is active.
type PayloadKind uint8

const (
	PayloadInteger PayloadKind = 0
	PayloadNumber  PayloadKind = 1
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadInteger:
		return "integer"
	case PayloadNumber:
		return "number"
	default:
		return "unknown"
	}
}

var ErrInvalidPayload = errors.New("invalid return message payload")

// ReturnMessage is one notification sent toward the host. Exactly one payload
// is active, selected by PayloadKind.
type ReturnMessage struct {
	UID     uint64
	Kind    int
	payload PayloadKind
	integer int32
	number  float32
}

// NewInteger builds a message carrying an integer payload.
func NewInteger(uid uint64, kind int, value int32) ReturnMessage {
	return ReturnMessage{UID: uid, Kind: kind, payload: PayloadInteger, integer: value}
}

// NewNumber builds a message carrying a floating payload.
func NewNumber(uid uint64, kind int, value float32) ReturnMessage {
	return ReturnMessage{UID: uid, Kind: kind, payload: PayloadNumber, number: value}
}

// PayloadKind returns the active payload tag.
func (m ReturnMessage) PayloadKind() PayloadKind {
	return m.payload
}

// Integer returns the integer payload; ok is false for number messages.
func (m ReturnMessage) Integer() (int32, bool) {
	if m.payload != PayloadInteger {
		return 0, false
	}

	return m.integer, true
}

// Number returns the floating payload; ok is false for integer messages.
func (m ReturnMessage) Number() (float32, bool) {
	if m.payload != PayloadNumber {
		return 0, false
	}

	return m.number, true
}

// Equivalent reports whether both messages would show the host the same thing.
func (m ReturnMessage) Equivalent(o ReturnMessage) bool {
	if m.UID != o.UID || m.Kind != o.Kind || m.payload != o.payload {
		return false
	}

	if m.payload == PayloadInteger {
		return m.integer == o.integer
	}

	return m.number == o.number
}

func (m ReturnMessage) String() string {
	if m.payload == PayloadInteger {
		return fmt.Sprintf("node %d kind %d: %d", m.UID, m.Kind, m.integer)
	}

	return fmt.Sprintf("node %d kind %d: %g", m.UID, m.Kind, m.number)
}

type wireMessage struct {
	UID      uint64      `json:"uid"`
	Kind     int         `json:"kind"`
	DataType PayloadKind `json:"data_type"`
	Integer  *int32      `json:"integer,omitempty"`
	Number   *float32    `json:"number,omitempty"`
}

func (m ReturnMessage) MarshalJSON() ([]byte, error) {
	w := wireMessage{UID: m.UID, Kind: m.Kind, DataType: m.payload}

	switch m.payload {
	case PayloadInteger:
		w.Integer = &m.integer
	case PayloadNumber:
		w.Number = &m.number
	default:
		return nil, fmt.Errorf("%w: data type %d", ErrInvalidPayload, m.payload)
	}

	return json.Marshal(w)
}

func (m *ReturnMessage) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch {
	case w.DataType == PayloadInteger && w.Integer != nil:
		*m = NewInteger(w.UID, w.Kind, *w.Integer)
	case w.DataType == PayloadNumber && w.Number != nil:
		*m = NewNumber(w.UID, w.Kind, *w.Number)
	default:
		return fmt.Errorf("%w: data type %d", ErrInvalidPayload, w.DataType)
	}

	return nil
}

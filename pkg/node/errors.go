package node

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange indicates an input or property index outside the
// declared list.
var ErrIndexOutOfRange = errors.New("index out of range")

// IndexError wraps ErrIndexOutOfRange with the offending access.
type IndexError struct {
	Op    string // Operation being performed (e.g., "SetInputValue")
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// IsIndexOutOfRange checks if an error is an out-of-range access.
func IsIndexOutOfRange(err error) bool {
	return errors.Is(err, ErrIndexOutOfRange)
}

func checkIndex(op string, index, n int) error {
	if index < 0 || index >= n {
		return &IndexError{Op: op, Index: index, Len: n}
	}

	return nil
}

// Status is the result code of SetConfigurationOption. StatusOK is zero;
// every other value is a failure.
type Status int

const (
	StatusOK            Status = 0
	StatusUnsupported   Status = 1 // The node exposes no configuration options.
	StatusUnknownOption Status = 2 // No option carries the given name.
	StatusInvalidValue  Status = 3 // The value is not among the advertised values.
)

var statusName = map[Status]string{
	StatusOK:            "ok",
	StatusUnsupported:   "unsupported",
	StatusUnknownOption: "unknown option",
	StatusInvalidValue:  "invalid value",
}

func (s Status) String() string {
	if name, ok := statusName[s]; ok {
		return name
	}

	return fmt.Sprintf("status(%d)", int(s))
}

// OK reports whether s signals success.
func (s Status) OK() bool {
	return s == StatusOK
}

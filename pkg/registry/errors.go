package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrTypeNotRegistered indicates no factory pair exists for the identifier.
	ErrTypeNotRegistered = errors.New("node type not registered")

	// ErrTypeAlreadyRegistered indicates the identifier is taken.
	ErrTypeAlreadyRegistered = errors.New("node type already registered")

	// ErrTypeMismatch indicates a copy across incompatible concrete types.
	ErrTypeMismatch = errors.New("node type mismatch")

	// ErrInvalidCreator indicates a factory pair with a missing function or
	// an empty identifier.
	ErrInvalidCreator = errors.New("invalid node creator")

	// ErrConstructFailed indicates a factory returned no instance.
	ErrConstructFailed = errors.New("node construction failed")
)

// TypeError wraps registry errors with the type identifiers involved.
type TypeError struct {
	Op     string // Operation being performed (e.g., "Construct", "Copy")
	TypeID string // Identifier of the target factory
	Actual string // Type tag of the source or produced instance, if any
	Err    error  // Underlying error
}

func (e *TypeError) Error() string {
	if e.Actual != "" {
		return fmt.Sprintf("%s operation failed for node type %q (got %q): %v", e.Op, e.TypeID, e.Actual, e.Err)
	}

	return fmt.Sprintf("%s operation failed for node type %q: %v", e.Op, e.TypeID, e.Err)
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

func (e *TypeError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsTypeMismatch checks if an error indicates a copy across concrete types.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsTypeNotRegistered checks if an error indicates an unknown identifier.
func IsTypeNotRegistered(err error) bool {
	return errors.Is(err, ErrTypeNotRegistered)
}

package tracks

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument is returned when constructor inputs disagree with
	// the declared track count.
	ErrInvalidArgument = errors.New("tracks: invalid argument")

	// ErrIndexOutOfRange is wrapped by the *IndexError raised from per-track accessors.
	ErrIndexOutOfRange = errors.New("tracks: index out of range")

	// ErrMissingRequiredField is returned when a record lacks a field
	// that has no default.
	ErrMissingRequiredField = errors.New("tracks: missing required field")
)

// IndexError is the panic value of per-track accessors called with an
// index outside [0, Length).
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("tracks: index %d out of range [0:%d]", e.Index, e.Length)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

func checkIndex(i, length int) {
	if i < 0 || i >= length {
		panic(&IndexError{Index: i, Length: length})
	}
}

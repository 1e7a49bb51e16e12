package sail

import (
	"errors"
	"strings"
)

var (
	// ErrMalformedInput marks caller mistakes: bad tile ids, short paths,
	// non-positive speeds. Nothing is simulated when it is returned.
	ErrMalformedInput = errors.New("malformed input")
	// ErrRunawayComputation means the collision scan hit its step ceiling.
	// It signals a broken caller contract, never a normal outcome.
	ErrRunawayComputation = errors.New("collision scan exceeded step limit")

	ErrPathTooShort   = errors.New("path needs at least two tiles")
	ErrUnknownTile    = errors.New("tile not on map")
	ErrOriginMismatch = errors.New("path does not start at the ship's city")
	ErrNotAdjacent    = errors.New("consecutive tiles are not adjacent")
	ErrInvalidSpeed   = errors.New("speed must be positive")
	ErrUnknownCity    = errors.New("unknown city")

	ErrShipSunk      = errors.New("ship is sunk")
	ErrShipInTransit = errors.New("ship is still in transit")
)

// MalformedError reports which input was rejected and why. It matches both
// ErrMalformedInput and the specific cause under errors.Is.
type MalformedError struct {
	Field string
	Err   error
}

func (e *MalformedError) Error() string {
	var b strings.Builder
	b.WriteString(ErrMalformedInput.Error())
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedInput}
	}
	return []error{ErrMalformedInput, e.Err}
}

func malformed(field string, err error) error {
	return &MalformedError{Field: field, Err: err}
}

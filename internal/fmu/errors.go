package fmu

import (
	"errors"
	"fmt"
)

// Error class: the capability is absent or the arguments are invalid.
var (
	ErrUnsupported           = errors.New("fmu: operation not supported")
	ErrUnsupportedType       = errors.New("fmu: only real-valued signals are supported")
	ErrInvalidStepSize       = errors.New("fmu: communication step size must be positive")
	ErrInvalidValueReference = errors.New("fmu: invalid value reference")
	ErrInvalidCallSequence   = errors.New("fmu: invalid call sequence")
	ErrInvalidArgument       = errors.New("fmu: invalid argument")
	ErrAllocation            = errors.New("fmu: memory allocation failed")
	ErrSnapshotMismatch      = errors.New("fmu: snapshot does not match model signal count")
	ErrSnapshotReleased      = errors.New("fmu: snapshot already released")
)

// Discard class: the call cannot complete now but the instance stays valid.
var (
	ErrSimulationTerminated = errors.New("fmu: model requested termination")
	ErrStatusUnavailable    = errors.New("fmu: status not available")
)

// Status is the outcome reported across the versioned call surface.
type Status int

const (
	OK Status = iota
	Warning
	Discard
	Error
	Fatal
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Warning:
		return "Warning"
	case Discard:
		return "Discard"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// StatusOf classifies an error returned by an Instance.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, ErrSimulationTerminated), errors.Is(err, ErrStatusUnavailable):
		return Discard
	default:
		return Error
	}
}

// CallError records which operation failed and in which lifecycle state.
type CallError struct {
	Op    string
	State State
	Err   error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Op, e.State, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

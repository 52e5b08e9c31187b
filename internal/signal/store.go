package signal

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfRange     = errors.New("signal: value reference out of range")
	ErrLengthMismatch = errors.New("signal: value reference and value counts differ")
)

// Store is a fixed-length vector of real signals. Its backing buffer is
// owned by whoever allocated it; the store never grows or reallocates.
type Store struct {
	values []float64
}

func NewStore(buf []float64) Store {
	return Store{values: buf}
}

func (s Store) Len() int { return len(s.values) }

// At reads one signal without bounds translation; callers index with
// constants generated alongside the table.
func (s Store) At(vr ValueReference) float64 { return s.values[vr] }

func (s Store) SetAt(vr ValueReference, v float64) { s.values[vr] = v }

// Values exposes the backing buffer.
func (s Store) Values() []float64 { return s.values }

// Check validates every reference before any access happens.
func (s Store) Check(vrs []ValueReference) error {
	for _, vr := range vrs {
		if int(vr) >= len(s.values) {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, vr, len(s.values))
		}
	}
	return nil
}

// Get copies signals vrs[i] into out[i]. Nothing is written on error.
func (s Store) Get(vrs []ValueReference, out []float64) error {
	if len(vrs) != len(out) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(vrs), len(out))
	}
	if err := s.Check(vrs); err != nil {
		return err
	}
	for i, vr := range vrs {
		out[i] = s.values[vr]
	}
	return nil
}

// Set writes in[i] to signal vrs[i]. Nothing is written on error.
func (s Store) Set(vrs []ValueReference, in []float64) error {
	if len(vrs) != len(in) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(vrs), len(in))
	}
	if err := s.Check(vrs); err != nil {
		return err
	}
	for i, vr := range vrs {
		s.values[vr] = in[i]
	}
	return nil
}

// CopyTo copies every signal into dst, which must have the same length.
func (s Store) CopyTo(dst []float64) error {
	if len(dst) != len(s.values) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(dst), len(s.values))
	}
	copy(dst, s.values)
	return nil
}

// CopyFrom overwrites every signal from src, which must have the same length.
func (s Store) CopyFrom(src []float64) error {
	if len(src) != len(s.values) {
		return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(src), len(s.values))
	}
	copy(s.values, src)
	return nil
}

// Zero clears every signal.
func (s Store) Zero() {
	clear(s.values)
}

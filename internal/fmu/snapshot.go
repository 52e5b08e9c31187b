package fmu

import (
	"errors"

	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/codec"
)

// Snapshot is an independent copy of an instance's signals. It does not
// include time or event information. The holder owns it until Release.
type Snapshot struct {
	values   []float64
	alloc    arena.Allocator
	released bool
}

// Len is the number of signals held.
func (s *Snapshot) Len() int { return len(s.values) }

// Values returns a copy of the held signals.
func (s *Snapshot) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Released reports whether Release has been called.
func (s *Snapshot) Released() bool { return s.released }

// Release returns the buffer to the allocator that produced it. Releasing
// twice, or releasing nil, does nothing.
func (s *Snapshot) Release() {
	if s == nil || s.released {
		return
	}
	s.alloc.Free(s.values)
	s.values = nil
	s.released = true
}

func (c *Instance) newSnapshot(op string) (*Snapshot, error) {
	buf, err := c.alloc.Allocate(c.table.Len())
	if err != nil || len(buf) != c.table.Len() {
		if err == nil {
			err = arena.ErrExhausted
		}
		return nil, c.fail(op, errors.Join(ErrAllocation, err))
	}
	return &Snapshot{values: buf, alloc: c.alloc}, nil
}

func (c *Instance) checkSnapshot(op string, s *Snapshot) error {
	switch {
	case s == nil:
		return c.fail(op, ErrInvalidArgument)
	case s.released:
		return c.fail(op, ErrSnapshotReleased)
	case len(s.values) != c.table.Len():
		return c.fail(op, ErrSnapshotMismatch)
	}
	return nil
}

// Capture copies every signal into a new snapshot allocated through the
// instance's allocator.
func (c *Instance) Capture() (*Snapshot, error) {
	if err := c.require("Capture", live...); err != nil {
		return nil, err
	}
	s, err := c.newSnapshot("Capture")
	if err != nil {
		return nil, err
	}
	copy(s.values, c.env.Signals.Values())
	return s, nil
}

// Restore overwrites every signal from s. Time and event information are
// left as they are.
func (c *Instance) Restore(s *Snapshot) error {
	if err := c.require("Restore", live...); err != nil {
		return err
	}
	if err := c.checkSnapshot("Restore", s); err != nil {
		return err
	}
	return c.env.Signals.CopyFrom(s.values)
}

// Release frees s through the allocator that produced it. It works even
// after the instance has been destroyed.
func (c *Instance) Release(s *Snapshot) error {
	s.Release()
	return nil
}

// SerializedSize is always M × codec.Width bytes.
func (c *Instance) SerializedSize(s *Snapshot) (int, error) {
	if err := c.checkSnapshot("SerializedSize", s); err != nil {
		return 0, err
	}
	return codec.Size(len(s.values)), nil
}

// Serialize encodes s in the layout described in package codec.
func (c *Instance) Serialize(s *Snapshot) ([]byte, error) {
	if err := c.checkSnapshot("Serialize", s); err != nil {
		return nil, err
	}
	return codec.Append(make([]byte, 0, codec.Size(len(s.values))), s.values), nil
}

// SerializeInto encodes s into dst, which must be exactly SerializedSize
// bytes long.
func (c *Instance) SerializeInto(s *Snapshot, dst []byte) error {
	if err := c.checkSnapshot("SerializeInto", s); err != nil {
		return err
	}
	if err := codec.Encode(dst, s.values); err != nil {
		return c.fail("SerializeInto", errors.Join(ErrSnapshotMismatch, err))
	}
	return nil
}

// Deserialize rebuilds a snapshot from bytes produced by Serialize for the
// same model.
func (c *Instance) Deserialize(b []byte) (*Snapshot, error) {
	if err := c.require("Deserialize", live...); err != nil {
		return nil, err
	}
	if len(b) != codec.Size(c.table.Len()) {
		return nil, c.fail("Deserialize", ErrSnapshotMismatch)
	}
	s, err := c.newSnapshot("Deserialize")
	if err != nil {
		return nil, err
	}
	if err := codec.Decode(s.values, b); err != nil {
		s.Release()
		return nil, c.fail("Deserialize", errors.Join(ErrSnapshotMismatch, err))
	}
	return s, nil
}

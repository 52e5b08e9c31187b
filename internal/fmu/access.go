package fmu

import (
	"errors"

	"github.com/san-kum/cbdfmu/internal/signal"
)

// GetReal copies signals vrs[i] into values[i]. Every reference is checked
// before anything is read.
func (c *Instance) GetReal(vrs []signal.ValueReference, values []float64) error {
	if err := c.require("GetReal", live...); err != nil {
		return err
	}
	if err := c.env.Signals.Get(vrs, values); err != nil {
		return c.fail("GetReal", accessError(err))
	}
	return nil
}

// SetReal writes values[i] into signal vrs[i]. Every reference is checked
// before anything is written.
func (c *Instance) SetReal(vrs []signal.ValueReference, values []float64) error {
	if err := c.require("SetReal", writable...); err != nil {
		return err
	}
	if err := c.env.Signals.Set(vrs, values); err != nil {
		return c.fail("SetReal", accessError(err))
	}
	return nil
}

func accessError(err error) error {
	if errors.Is(err, signal.ErrOutOfRange) {
		return errors.Join(ErrInvalidValueReference, err)
	}
	return errors.Join(ErrInvalidArgument, err)
}

// Integers, booleans and strings are not signals of this model; every
// accessor for them fails without touching the caller's buffer.

func (c *Instance) GetInteger(vrs []signal.ValueReference, values []int64) error {
	return c.fail("GetInteger", ErrUnsupportedType)
}

func (c *Instance) SetInteger(vrs []signal.ValueReference, values []int64) error {
	return c.fail("SetInteger", ErrUnsupportedType)
}

func (c *Instance) GetBoolean(vrs []signal.ValueReference, values []bool) error {
	return c.fail("GetBoolean", ErrUnsupportedType)
}

func (c *Instance) SetBoolean(vrs []signal.ValueReference, values []bool) error {
	return c.fail("SetBoolean", ErrUnsupportedType)
}

func (c *Instance) GetString(vrs []signal.ValueReference, values []string) error {
	return c.fail("GetString", ErrUnsupportedType)
}

func (c *Instance) SetString(vrs []signal.ValueReference, values []string) error {
	return c.fail("SetString", ErrUnsupportedType)
}

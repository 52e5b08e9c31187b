package fmu

import "fmt"

// Model-exchange operations. The host owns the integration loop and moves
// continuous states in and out of the model directly.

func (c *Instance) continuous(op string, allowed ...State) (ContinuousStates, error) {
	if err := c.requireKind(op, ModelExchange); err != nil {
		return nil, err
	}
	if err := c.require(op, allowed...); err != nil {
		return nil, err
	}
	cs, ok := c.model.(ContinuousStates)
	if !ok {
		return nil, c.fail(op, ErrUnsupported)
	}
	return cs, nil
}

func (c *Instance) checkLen(op string, got, want int) error {
	if got != want {
		return c.fail(op, fmt.Errorf("%w: buffer has %d entries, model has %d", ErrInvalidArgument, got, want))
	}
	return nil
}

// SetTime moves the clock. Time may not go back past the last equation
// evaluation.
func (c *Instance) SetTime(t float64) error {
	const op = "SetTime"
	if err := c.requireKind(op, ModelExchange); err != nil {
		return err
	}
	if err := c.require(op, running...); err != nil {
		return err
	}
	if t < c.env.TimeLast {
		return c.fail(op, fmt.Errorf("%w: time %g precedes %g", ErrInvalidArgument, t, c.env.TimeLast))
	}
	c.env.Time = t
	return nil
}

func (c *Instance) SetContinuousStates(x []float64) error {
	const op = "SetContinuousStates"
	cs, err := c.continuous(op, ContinuousTimeMode)
	if err != nil {
		return err
	}
	if err := c.checkLen(op, len(x), cs.NumStates()); err != nil {
		return err
	}
	cs.SetContinuousStates(&c.env, x)
	c.env.Events.ValuesOfContinuousStatesChanged = true
	return nil
}

func (c *Instance) GetContinuousStates(x []float64) error {
	const op = "GetContinuousStates"
	cs, err := c.continuous(op, live...)
	if err != nil {
		return err
	}
	if err := c.checkLen(op, len(x), cs.NumStates()); err != nil {
		return err
	}
	cs.ContinuousStates(&c.env, x)
	return nil
}

func (c *Instance) GetDerivatives(dx []float64) error {
	const op = "GetDerivatives"
	cs, err := c.continuous(op, live...)
	if err != nil {
		return err
	}
	if err := c.checkLen(op, len(dx), cs.NumStates()); err != nil {
		return err
	}
	cs.Derivatives(&c.env, dx)
	return nil
}

func (c *Instance) GetEventIndicators(z []float64) error {
	const op = "GetEventIndicators"
	cs, err := c.continuous(op, live...)
	if err != nil {
		return err
	}
	if err := c.checkLen(op, len(z), cs.NumEventIndicators()); err != nil {
		return err
	}
	cs.EventIndicators(&c.env, z)
	return nil
}

// GetNominalsOfContinuousStates reports 1 for every state.
func (c *Instance) GetNominalsOfContinuousStates(nominals []float64) error {
	const op = "GetNominalsOfContinuousStates"
	cs, err := c.continuous(op, live...)
	if err != nil {
		return err
	}
	if err := c.checkLen(op, len(nominals), cs.NumStates()); err != nil {
		return err
	}
	for i := range nominals {
		nominals[i] = 1
	}
	return nil
}

// CompletedIntegratorStep tells the host whether a time event is due or
// the model asked to stop.
func (c *Instance) CompletedIntegratorStep(noSetStatePriorToCurrentPoint bool) (enterEventMode, terminate bool, err error) {
	if _, err := c.continuous("CompletedIntegratorStep", ContinuousTimeMode); err != nil {
		return false, false, err
	}
	ev := c.env.Events
	enterEventMode = ev.NextEventTimeDefined && c.env.Time >= ev.NextEventTime
	return enterEventMode, ev.TerminateSimulation, nil
}

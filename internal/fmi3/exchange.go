package fmi3

import "github.com/san-kum/cbdfmu/internal/fmu"

// UpdateDiscreteStates runs one event iteration. Any out-parameter may be
// nil when the caller does not want it.
func (c *Instance) UpdateDiscreteStates(discreteStatesNeedUpdate, terminateSimulation,
	nominalsOfContinuousStatesChanged, valuesOfContinuousStatesChanged, nextEventTimeDefined *bool,
	nextEventTime *float64) Status {
	if c == nil {
		return Error
	}
	ev, err := c.inst.UpdateDiscreteStates()
	if err != nil {
		return c.status(err)
	}
	set(discreteStatesNeedUpdate, ev.NewDiscreteStatesNeeded)
	set(terminateSimulation, ev.TerminateSimulation)
	set(nominalsOfContinuousStatesChanged, ev.NominalsOfContinuousStatesChanged)
	set(valuesOfContinuousStatesChanged, ev.ValuesOfContinuousStatesChanged)
	set(nextEventTimeDefined, ev.NextEventTimeDefined)
	set(nextEventTime, ev.NextEventTime)
	return OK
}

func set[T any](p *T, v T) {
	if p != nil {
		*p = v
	}
}

func (c *Instance) EnterContinuousTimeMode() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.EnterContinuousTimeMode())
}

func (c *Instance) CompletedIntegratorStep(noSetFMUStatePriorToCurrentPoint bool, enterEventMode, terminateSimulation *bool) Status {
	if c == nil {
		return Error
	}
	enter, term, err := c.inst.CompletedIntegratorStep(noSetFMUStatePriorToCurrentPoint)
	if err != nil {
		return c.status(err)
	}
	set(enterEventMode, enter)
	set(terminateSimulation, term)
	return OK
}

func (c *Instance) SetTime(time float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetTime(time))
}

func (c *Instance) SetContinuousStates(continuousStates []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetContinuousStates(continuousStates))
}

func (c *Instance) GetContinuousStateDerivatives(derivatives []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetDerivatives(derivatives))
}

func (c *Instance) GetEventIndicators(eventIndicators []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetEventIndicators(eventIndicators))
}

func (c *Instance) GetContinuousStates(continuousStates []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetContinuousStates(continuousStates))
}

func (c *Instance) GetNominalsOfContinuousStates(nominals []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetNominalsOfContinuousStates(nominals))
}

// GetNumberOfContinuousStates reports zero for models without continuous
// states.
func (c *Instance) GetNumberOfContinuousStates(n *int) Status {
	if c == nil || n == nil {
		return Error
	}
	*n = 0
	if cs, ok := c.inst.Model().(fmu.ContinuousStates); ok {
		*n = cs.NumStates()
	}
	return OK
}

func (c *Instance) GetNumberOfEventIndicators(n *int) Status {
	if c == nil || n == nil {
		return Error
	}
	*n = 0
	if cs, ok := c.inst.Model().(fmu.ContinuousStates); ok {
		*n = cs.NumEventIndicators()
	}
	return OK
}

package fmi2

// Model exchange entry points.

func (c *Component) EnterEventMode() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.EnterEventMode())
}

// NewDiscreteStates runs one event iteration and fills *eventInfo.
func (c *Component) NewDiscreteStates(eventInfo *EventInfo) Status {
	if c == nil || eventInfo == nil {
		return Error
	}
	ev, err := c.inst.UpdateDiscreteStates()
	if err != nil {
		return c.status(err)
	}
	*eventInfo = ev
	return OK
}

func (c *Component) EnterContinuousTimeMode() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.EnterContinuousTimeMode())
}

func (c *Component) CompletedIntegratorStep(noSetFMUStatePriorToCurrentPoint bool, enterEventMode, terminateSimulation *bool) Status {
	if c == nil || enterEventMode == nil || terminateSimulation == nil {
		return Error
	}
	enter, term, err := c.inst.CompletedIntegratorStep(noSetFMUStatePriorToCurrentPoint)
	if err != nil {
		return c.status(err)
	}
	*enterEventMode, *terminateSimulation = enter, term
	return OK
}

func (c *Component) SetTime(time float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetTime(time))
}

func (c *Component) SetContinuousStates(x []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetContinuousStates(x))
}

func (c *Component) GetDerivatives(derivatives []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetDerivatives(derivatives))
}

func (c *Component) GetEventIndicators(eventIndicators []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetEventIndicators(eventIndicators))
}

func (c *Component) GetContinuousStates(x []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetContinuousStates(x))
}

func (c *Component) GetNominalsOfContinuousStates(xNominal []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetNominalsOfContinuousStates(xNominal))
}

package fmi2

// Co-simulation entry points.

func (c *Component) SetRealInputDerivatives(vr []ValueReference, order []int, value []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetRealInputDerivatives(vr, order, value))
}

func (c *Component) GetRealOutputDerivatives(vr []ValueReference, order []int, value []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetRealOutputDerivatives(vr, order, value))
}

// DoStep advances by one communication step. noSetFMUStatePriorToCurrentPoint
// is accepted and ignored.
func (c *Component) DoStep(currentCommunicationPoint, communicationStepSize float64, noSetFMUStatePriorToCurrentPoint bool) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.Step(currentCommunicationPoint, communicationStepSize))
}

func (c *Component) CancelStep() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.CancelStep())
}

func (c *Component) GetStatus(s StatusKind, value *Status) Status {
	if c == nil || value == nil {
		return Error
	}
	v, err := c.inst.GetStatus(s)
	*value = v
	return c.status(err)
}

func (c *Component) GetRealStatus(s StatusKind, value *float64) Status {
	if c == nil || value == nil {
		return Error
	}
	v, err := c.inst.GetRealStatus(s)
	*value = v
	return c.status(err)
}

func (c *Component) GetIntegerStatus(s StatusKind, value *int32) Status {
	if c == nil || value == nil {
		return Error
	}
	v, err := c.inst.GetIntegerStatus(s)
	*value = int32(v)
	return c.status(err)
}

func (c *Component) GetBooleanStatus(s StatusKind, value *bool) Status {
	if c == nil || value == nil {
		return Error
	}
	v, err := c.inst.GetBooleanStatus(s)
	*value = v
	return c.status(err)
}

func (c *Component) GetStringStatus(s StatusKind, value *string) Status {
	if c == nil || value == nil {
		return Error
	}
	v, err := c.inst.GetStringStatus(s)
	*value = v
	return c.status(err)
}

package fmi3

func (c *Instance) GetFloat64(valueReferences []ValueReference, values []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetReal(valueReferences, values))
}

func (c *Instance) SetFloat64(valueReferences []ValueReference, values []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetReal(valueReferences, values))
}

func (c *Instance) GetInt64(valueReferences []ValueReference, values []int64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetInteger(valueReferences, values))
}

func (c *Instance) SetInt64(valueReferences []ValueReference, values []int64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetInteger(valueReferences, values))
}

func (c *Instance) GetBoolean(valueReferences []ValueReference, values []bool) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetBoolean(valueReferences, values))
}

func (c *Instance) SetBoolean(valueReferences []ValueReference, values []bool) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetBoolean(valueReferences, values))
}

func (c *Instance) GetString(valueReferences []ValueReference, values []string) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetString(valueReferences, values))
}

func (c *Instance) SetString(valueReferences []ValueReference, values []string) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetString(valueReferences, values))
}

func (c *Instance) GetFMUState(state *FMUState) Status {
	if c == nil || state == nil {
		return Error
	}
	s, err := c.inst.Capture()
	if err != nil {
		return c.status(err)
	}
	*state = s
	return OK
}

func (c *Instance) SetFMUState(state FMUState) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.Restore(state))
}

func (c *Instance) FreeFMUState(state *FMUState) Status {
	if c == nil || state == nil {
		return Error
	}
	st := c.status(c.inst.Release(*state))
	*state = nil
	return st
}

func (c *Instance) SerializedFMUStateSize(state FMUState, size *int) Status {
	if c == nil || size == nil {
		return Error
	}
	n, err := c.inst.SerializedSize(state)
	if err != nil {
		return c.status(err)
	}
	*size = n
	return OK
}

func (c *Instance) SerializeFMUState(state FMUState, serializedState []byte) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SerializeInto(state, serializedState))
}

func (c *Instance) DeserializeFMUState(serializedState []byte, state *FMUState) Status {
	if c == nil || state == nil {
		return Error
	}
	s, err := c.inst.Deserialize(serializedState)
	if err != nil {
		return c.status(err)
	}
	*state = s
	return OK
}

func (c *Instance) GetDirectionalDerivative(unknowns, knowns []ValueReference, seed, sensitivity []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetDirectionalDerivative(unknowns, knowns, seed, sensitivity))
}

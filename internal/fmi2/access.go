package fmi2

func (c *Component) GetReal(vr []ValueReference, value []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetReal(vr, value))
}

func (c *Component) SetReal(vr []ValueReference, value []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetReal(vr, value))
}

// GetInteger widens to the core's 64-bit integers and narrows back.
func (c *Component) GetInteger(vr []ValueReference, value []int32) Status {
	if c == nil {
		return Error
	}
	wide := make([]int64, len(value))
	st := c.status(c.inst.GetInteger(vr, wide))
	if st == OK {
		for i, v := range wide {
			value[i] = int32(v)
		}
	}
	return st
}

func (c *Component) SetInteger(vr []ValueReference, value []int32) Status {
	if c == nil {
		return Error
	}
	wide := make([]int64, len(value))
	for i, v := range value {
		wide[i] = int64(v)
	}
	return c.status(c.inst.SetInteger(vr, wide))
}

func (c *Component) GetBoolean(vr []ValueReference, value []bool) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetBoolean(vr, value))
}

func (c *Component) SetBoolean(vr []ValueReference, value []bool) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetBoolean(vr, value))
}

func (c *Component) GetString(vr []ValueReference, value []string) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetString(vr, value))
}

func (c *Component) SetString(vr []ValueReference, value []string) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetString(vr, value))
}

// GetFMUstate captures the signals into *state.
func (c *Component) GetFMUstate(state *FMUstate) Status {
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

func (c *Component) SetFMUstate(state FMUstate) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.Restore(state))
}

// FreeFMUstate releases *state and clears the handle.
func (c *Component) FreeFMUstate(state *FMUstate) Status {
	if c == nil || state == nil {
		return Error
	}
	st := c.status(c.inst.Release(*state))
	*state = nil
	return st
}

func (c *Component) SerializedFMUstateSize(state FMUstate, size *int) Status {
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

func (c *Component) SerializeFMUstate(state FMUstate, serializedState []byte) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SerializeInto(state, serializedState))
}

func (c *Component) DeSerializeFMUstate(serializedState []byte, state *FMUstate) Status {
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

func (c *Component) GetDirectionalDerivative(vUnknownRef, vKnownRef []ValueReference, dvKnown, dvUnknown []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetDirectionalDerivative(vUnknownRef, vKnownRef, dvKnown, dvUnknown))
}

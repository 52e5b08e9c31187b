package fmu

// ConfigureExperiment sets the simulated clock to startTime. Tolerance and
// stop time are recorded for the host but not enforced.
func (c *Instance) ConfigureExperiment(toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) error {
	if err := c.require("ConfigureExperiment", Instantiated); err != nil {
		return err
	}
	c.experiment = Experiment{
		ToleranceDefined: toleranceDefined,
		Tolerance:        tolerance,
		StartTime:        startTime,
		StopTimeDefined:  stopTimeDefined,
		StopTime:         stopTime,
	}
	c.env.Time = startTime
	c.env.TimeLast = startTime
	return nil
}

func (c *Instance) EnterInitializationMode() error {
	if err := c.require("EnterInitializationMode", Instantiated); err != nil {
		return err
	}
	c.transition("EnterInitializationMode", InitializationMode)
	return nil
}

func (c *Instance) ExitInitializationMode() error {
	if err := c.require("ExitInitializationMode", InitializationMode); err != nil {
		return err
	}
	c.isNewEventIteration = false
	c.transition("ExitInitializationMode", EventMode)
	return nil
}

func (c *Instance) EnterEventMode() error {
	if err := c.require("EnterEventMode", running...); err != nil {
		return err
	}
	c.isNewEventIteration = true
	c.transition("EnterEventMode", EventMode)
	return nil
}

// UpdateDiscreteStates runs one event iteration and returns the refreshed
// event information.
func (c *Instance) UpdateDiscreteStates() (EventInfo, error) {
	if err := c.require("UpdateDiscreteStates", EventMode); err != nil {
		return EventInfo{}, err
	}
	ev := &c.env.Events
	ev.NewDiscreteStatesNeeded = false
	ev.TerminateSimulation = false
	ev.NominalsOfContinuousStatesChanged = false
	ev.ValuesOfContinuousStatesChanged = false

	c.detectEvents()
	c.isNewEventIteration = false
	return c.env.Events, nil
}

func (c *Instance) EnterContinuousTimeMode() error {
	if err := c.require("EnterContinuousTimeMode", EventMode); err != nil {
		return err
	}
	c.transition("EnterContinuousTimeMode", ContinuousTimeMode)
	return nil
}

func (c *Instance) Terminate() error {
	if err := c.require("Terminate", InitializationMode, EventMode, ContinuousTimeMode); err != nil {
		return err
	}
	c.transition("Terminate", Terminated)
	return nil
}

// Reset returns the instance to Instantiated and re-runs the initial
// equations. Time is left alone unless the equations change it.
func (c *Instance) Reset() error {
	if err := c.require("Reset", live...); err != nil {
		return err
	}
	c.env.Events = EventInfo{}
	c.isNewEventIteration = false
	c.model.InitialEquations(&c.env)
	c.transition("Reset", Instantiated)
	return nil
}

func (c *Instance) detectEvents() {
	if d, ok := c.model.(EventDetector); ok {
		d.StateEvent(&c.env)
	} else {
		noEvent(&c.env)
	}
	ev := c.env.Events
	c.debug(CategoryEvents, "event detection",
		"time", c.env.Time,
		"terminate", ev.TerminateSimulation,
		"next_event_defined", ev.NextEventTimeDefined,
		"next_event", ev.NextEventTime)
}

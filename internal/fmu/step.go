package fmu

import "github.com/san-kum/cbdfmu/internal/signal"

// Step advances the instance from currentTime across one communication
// step. The step is divided into the model's internal steps; before each
// one a due time event triggers event detection, and a termination request
// aborts the remaining internal steps with ErrSimulationTerminated.
func (c *Instance) Step(currentTime, stepSize float64) error {
	const op = "Step"
	if err := c.requireKind(op, CoSimulation); err != nil {
		return err
	}
	if err := c.require(op, running...); err != nil {
		return err
	}
	if !(stepSize > 0) {
		return c.fail(op, ErrInvalidStepSize)
	}

	h := stepSize / float64(c.stepsFor(stepSize))
	target := currentTime + stepSize
	// 1% of h absorbs round-off in the accumulated time at the end point.
	for c.env.Time+h < target+0.01*h {
		ev := &c.env.Events
		if ev.NextEventTimeDefined && c.env.Time >= ev.NextEventTime {
			c.detectEvents()
		}
		if ev.TerminateSimulation {
			return c.fail(op, ErrSimulationTerminated)
		}

		c.env.Time += h
		c.model.CalculateEquations(&c.env)
		c.env.TimeLast = c.env.Time
	}
	return nil
}

func (c *Instance) stepsFor(stepSize float64) int {
	if s, ok := c.model.(Subdivider); ok {
		return max(s.InternalSteps(stepSize), 1)
	}
	return c.internalSteps
}

// CancelStep always fails: Step runs to completion before returning.
func (c *Instance) CancelStep() error {
	return c.fail("CancelStep", ErrUnsupported)
}

// SetRealInputDerivatives always fails: inputs are not extrapolated.
func (c *Instance) SetRealInputDerivatives(vrs []signal.ValueReference, orders []int, values []float64) error {
	return c.fail("SetRealInputDerivatives", ErrUnsupported)
}

// GetRealOutputDerivatives zeroes values and fails: output derivatives are
// not computed.
func (c *Instance) GetRealOutputDerivatives(vrs []signal.ValueReference, orders []int, values []float64) error {
	clear(values)
	return c.fail("GetRealOutputDerivatives", ErrUnsupported)
}

// GetDirectionalDerivative always fails.
func (c *Instance) GetDirectionalDerivative(unknown, known []signal.ValueReference, seed, sensitivity []float64) error {
	return c.fail("GetDirectionalDerivative", ErrUnsupported)
}

// StatusKind selects what a status query asks about.
type StatusKind int

const (
	StatusDoStep StatusKind = iota
	StatusPending
	StatusLastSuccessfulTime
	StatusTerminated
)

// Status queries are answered with ErrStatusUnavailable: Step is
// synchronous, so there is never an asynchronous result to report.

func (c *Instance) GetStatus(kind StatusKind) (Status, error) {
	return OK, c.fail("GetStatus", ErrStatusUnavailable)
}

func (c *Instance) GetRealStatus(kind StatusKind) (float64, error) {
	return 0, c.fail("GetRealStatus", ErrStatusUnavailable)
}

func (c *Instance) GetIntegerStatus(kind StatusKind) (int64, error) {
	return 0, c.fail("GetIntegerStatus", ErrStatusUnavailable)
}

func (c *Instance) GetBooleanStatus(kind StatusKind) (bool, error) {
	return false, c.fail("GetBooleanStatus", ErrStatusUnavailable)
}

func (c *Instance) GetStringStatus(kind StatusKind) (string, error) {
	return "", c.fail("GetStringStatus", ErrStatusUnavailable)
}

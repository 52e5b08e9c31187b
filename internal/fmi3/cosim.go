package fmi3

import (
	"errors"

	"github.com/san-kum/cbdfmu/internal/fmu"
)

// DoStep advances by one communication step. A termination request by the
// model is reported both as Discard and through terminateSimulation; in
// that case lastSuccessfulTime holds the time reached before stopping.
// Steps always run to completion, so earlyReturn is always false.
func (c *Instance) DoStep(currentCommunicationPoint, communicationStepSize float64, noSetFMUStatePriorToCurrentPoint bool,
	eventHandlingNeeded, terminateSimulation, earlyReturn *bool, lastSuccessfulTime *float64) Status {
	if c == nil {
		return Error
	}
	err := c.inst.Step(currentCommunicationPoint, communicationStepSize)
	set(eventHandlingNeeded, false)
	set(earlyReturn, false)
	set(terminateSimulation, errors.Is(err, fmu.ErrSimulationTerminated))
	set(lastSuccessfulTime, c.inst.Time())
	return c.status(err)
}

func (c *Instance) GetOutputDerivatives(valueReferences []ValueReference, orders []int, values []float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.GetRealOutputDerivatives(valueReferences, orders, values))
}

package fmu

import "github.com/san-kum/cbdfmu/internal/signal"

// EventInfo is the event bookkeeping shared between the core and a model.
type EventInfo struct {
	NewDiscreteStatesNeeded           bool
	TerminateSimulation               bool
	NominalsOfContinuousStatesChanged bool
	ValuesOfContinuousStatesChanged   bool
	NextEventTimeDefined              bool
	NextEventTime                     float64
}

// Env is the part of an instance a model's equations may read and write.
type Env struct {
	Time     float64
	TimeLast float64
	Signals  signal.Store
	Events   EventInfo
}

// Delta is the time elapsed since the equations last ran.
func (e *Env) Delta() float64 {
	return e.Time - e.TimeLast
}

// Model supplies the equations of one compiled model. Variables fixes the
// signal count M and must return the same table on every call.
type Model interface {
	Name() string
	GUID() string
	Variables() *signal.Table
	// InitialEquations must derive every signal from constants only, so
	// that running it twice yields identical values.
	InitialEquations(env *Env)
	CalculateEquations(env *Env)
}

// EventDetector is implemented by models with their own event logic. It
// may update any field of env.Events.
type EventDetector interface {
	StateEvent(env *Env)
}

// Subdivider is implemented by models that split a communication step into
// several equation evaluations.
type Subdivider interface {
	InternalSteps(stepSize float64) int
}

// ContinuousStates is implemented by models usable in model exchange.
type ContinuousStates interface {
	NumStates() int
	NumEventIndicators() int
	ContinuousStates(env *Env, x []float64)
	SetContinuousStates(env *Env, x []float64)
	Derivatives(env *Env, dx []float64)
	EventIndicators(env *Env, z []float64)
}

// noEvent is the event detection used when a model has none: nothing
// changed, nothing scheduled, keep running.
func noEvent(env *Env) {
	env.Events.ValuesOfContinuousStatesChanged = false
	env.Events.NominalsOfContinuousStatesChanged = false
	env.Events.TerminateSimulation = false
	env.Events.NextEventTimeDefined = false
}

// Package ball models a ball dropped onto a rigid floor. Flight is
// integrated with RK4; each floor contact reflects the ball and scales its
// speed by the restitution coefficient. After MaxBounces contacts the model
// schedules a time event and asks the host to stop.
package ball

import (
	"math"

	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/integrators"
	"github.com/san-kum/cbdfmu/internal/signal"
)

const (
	Name = "ball"
	GUID = "{2b7f65b1-6a9a-4c0b-9d55-3c8b0f1e5a10}"
)

const (
	Height signal.ValueReference = iota
	Velocity
	Gravity
	Restitution
	Bounces
	MaxBounces
	LastImpact

	NumSignals = int(LastImpact) + 1
)

const (
	DefaultHeight      = 10.0
	DefaultGravity     = 9.81
	DefaultRestitution = 0.8
	DefaultMaxBounces  = 5

	// maxStep bounds the internal step so contacts are located to within a
	// millisecond of simulated time.
	maxStep = 1e-3
)

type Ball struct {
	table *signal.Table
	integ integrators.Integrator
	x     [2]float64
}

func New() *Ball {
	return NewWith(integrators.NewRK4())
}

// NewWith integrates flight with integ instead of RK4.
func NewWith(integ integrators.Integrator) *Ball {
	t := signal.NewTable()
	t.MustAdd("h", signal.Output, "height above the floor")
	t.MustAdd("v", signal.Output, "vertical velocity")
	t.MustAdd("g", signal.Parameter, "gravitational acceleration")
	t.MustAdd("e", signal.Parameter, "coefficient of restitution")
	t.MustAdd("bounces", signal.Output, "floor contacts so far")
	t.MustAdd("max_bounces", signal.Parameter, "contacts before the model asks to stop")
	t.MustAdd("last_impact", signal.Output, "time of the latest floor contact")
	return &Ball{table: t, integ: integ}
}

func (b *Ball) Name() string             { return Name }
func (b *Ball) GUID() string             { return GUID }
func (b *Ball) Variables() *signal.Table { return b.table }

func (b *Ball) InitialEquations(env *fmu.Env) {
	s := env.Signals
	s.Zero()
	s.SetAt(Height, DefaultHeight)
	s.SetAt(Gravity, DefaultGravity)
	s.SetAt(Restitution, DefaultRestitution)
	s.SetAt(MaxBounces, DefaultMaxBounces)
	env.TimeLast = env.Time
}

// InternalSteps keeps every equation evaluation at or below maxStep.
func (b *Ball) InternalSteps(stepSize float64) int {
	return max(int(math.Ceil(stepSize/maxStep-1e-9)), 1)
}

func (b *Ball) CalculateEquations(env *fmu.Env) {
	s := env.Signals
	g := s.At(Gravity)

	b.x[0], b.x[1] = s.At(Height), s.At(Velocity)
	b.integ.Step(func(t float64, x, dx []float64) {
		dx[0] = x[1]
		dx[1] = -g
	}, b.x[:], env.TimeLast, env.Delta())

	h, v := b.x[0], b.x[1]
	if h < 0 && v < 0 {
		h = -h
		v = -s.At(Restitution) * v
		s.SetAt(Bounces, s.At(Bounces)+1)
		s.SetAt(LastImpact, env.Time)
	}
	s.SetAt(Height, h)
	s.SetAt(Velocity, v)

	if s.At(Bounces) >= s.At(MaxBounces) && !env.Events.NextEventTimeDefined {
		env.Events.NextEventTimeDefined = true
		env.Events.NextEventTime = env.Time
	}
}

// StateEvent stops the simulation once the bounce limit is reached.
func (b *Ball) StateEvent(env *fmu.Env) {
	s := env.Signals
	env.Events.ValuesOfContinuousStatesChanged = false
	env.Events.NominalsOfContinuousStatesChanged = false
	env.Events.NextEventTimeDefined = false
	env.Events.TerminateSimulation = s.At(Bounces) >= s.At(MaxBounces)
}

func (b *Ball) NumStates() int          { return 2 }
func (b *Ball) NumEventIndicators() int { return 1 }

func (b *Ball) ContinuousStates(env *fmu.Env, x []float64) {
	x[0] = env.Signals.At(Height)
	x[1] = env.Signals.At(Velocity)
}

func (b *Ball) SetContinuousStates(env *fmu.Env, x []float64) {
	env.Signals.SetAt(Height, x[0])
	env.Signals.SetAt(Velocity, x[1])
}

func (b *Ball) Derivatives(env *fmu.Env, dx []float64) {
	dx[0] = env.Signals.At(Velocity)
	dx[1] = -env.Signals.At(Gravity)
}

// EventIndicators crosses zero when the ball reaches the floor.
func (b *Ball) EventIndicators(env *fmu.Env, z []float64) {
	z[0] = env.Signals.At(Height)
}

// Package pid is a PID controller generated from a block diagram: a
// proportional gain, an integrator and a derivator feeding a three-way sum.
//
// Every block port is one signal. The controller input is
// Integrator.IN1 (fanned out to the other blocks on each evaluation) and
// the control output is OUT.
package pid

import (
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/signal"
)

const (
	Name = "pid"
	GUID = "{8c4e810f-3df3-4a00-8276-176fa3c9f000}"
)

// Value references, in generation order.
const (
	Constant390 signal.ValueReference = iota
	Const20
	IntegratorZero
	IntegratorDeltaT
	IntegratorDelayIn
	IntegratorMultDelta
	IntegratorDelayState
	IntegratorSumState
	IntegratorInner
	IntegratorOut
	DerivatorDeltaT
	DerivatorMultIC
	DerivatorNeg1
	DerivatorSum1
	DerivatorDelay
	DerivatorNeg2
	DerivatorSum2
	DerivatorMult
	DerivatorInv
	DerivatorInner
	DerivatorOut
	ProductKd
	ProductKi
	ProductKp
	Summation
	Const0
	Out
	IntegratorIN1
	IntegratorIC
	DerivatorIN1
	DerivatorIC
	ProductKdIN1
	ProductKdIN2
	ProductKiIN1
	ProductKiIN2
	ProductKpIN1
	ProductKpIN2
	ProductKpIN3
	SummationIN1
	SummationIN2
	SummationIN3
	In

	NumSignals = int(In) + 1
)

// minDelta keeps the derivator's 1/Δt finite during initialization.
const minDelta = 1e-6

var variables = []struct {
	name      string
	causality signal.Causality
	desc      string
}{
	{"Constant390.OUT1", signal.Parameter, "proportional gain"},
	{"Const20.OUT1", signal.Parameter, "integral and derivative gain"},
	{"Integrator.zero.OUT1", signal.Local, ""},
	{"Integrator.delta_t.OUT1", signal.Local, ""},
	{"Integrator.delayIn.OUT1", signal.Local, "input latched on the previous evaluation"},
	{"Integrator.multDelta.OUT1", signal.Local, ""},
	{"Integrator.delayState.OUT1", signal.Local, "integral latched on the previous evaluation"},
	{"Integrator.sumState.OUT1", signal.Local, ""},
	{"Integrator.OUT1.inner", signal.Local, ""},
	{"Integrator.OUT1", signal.Local, "integral of the input"},
	{"Derivator.delta_t.OUT1", signal.Local, ""},
	{"Derivator.multIc.OUT1", signal.Local, ""},
	{"Derivator.neg1.OUT1", signal.Local, ""},
	{"Derivator.sum1.OUT1", signal.Local, ""},
	{"Derivator.delay.OUT1", signal.Local, "input latched on the previous evaluation"},
	{"Derivator.neg2.OUT1", signal.Local, ""},
	{"Derivator.sum2.OUT1", signal.Local, ""},
	{"Derivator.mult.OUT1", signal.Local, ""},
	{"Derivator.inv.OUT1", signal.Local, ""},
	{"Derivator.OUT1.inner", signal.Local, ""},
	{"Derivator.OUT1", signal.Local, "derivative of the input"},
	{"Product_Kd.OUT1", signal.Local, ""},
	{"Product_Ki.OUT1", signal.Local, ""},
	{"Product_Kp.OUT1", signal.Local, ""},
	{"Summation.OUT1", signal.Local, ""},
	{"Const0.OUT1", signal.Parameter, "initial condition source"},
	{"OUT", signal.Output, "control output"},
	{"Integrator.IN1", signal.Input, "controller input"},
	{"Integrator.IC", signal.Parameter, "integrator initial condition"},
	{"Derivator.IN1", signal.Local, ""},
	{"Derivator.IC", signal.Parameter, "derivator initial condition"},
	{"Product_Kd.IN1", signal.Local, ""},
	{"Product_Kd.IN2", signal.Local, ""},
	{"Product_Ki.IN1", signal.Local, ""},
	{"Product_Ki.IN2", signal.Local, ""},
	{"Product_Kp.IN1", signal.Local, ""},
	{"Product_Kp.IN2", signal.Local, ""},
	{"Product_Kp.IN3", signal.Local, "unconnected, held at 1"},
	{"Summation.IN1", signal.Local, ""},
	{"Summation.IN2", signal.Local, ""},
	{"Summation.IN3", signal.Local, ""},
	{"IN", signal.Local, "copy of the controller input"},
}

type PID struct {
	table *signal.Table
}

func New() *PID {
	t := signal.NewTable()
	for _, v := range variables {
		t.MustAdd(v.name, v.causality, v.desc)
	}
	return &PID{table: t}
}

func (p *PID) Name() string             { return Name }
func (p *PID) GUID() string             { return GUID }
func (p *PID) Variables() *signal.Table { return p.table }

func (p *PID) InitialEquations(env *fmu.Env) {
	s := env.Signals
	s.Zero()

	s.SetAt(Constant390, 390)
	s.SetAt(Const20, 20)
	s.SetAt(Const0, 0)
	s.SetAt(ProductKpIN3, 1)

	s.SetAt(IntegratorIC, s.At(Const0))
	s.SetAt(DerivatorIC, s.At(Const0))

	in := s.At(IntegratorIN1)
	fanOut(s, in)

	// Integrator at iteration 0: the delays emit their initial conditions.
	s.SetAt(IntegratorZero, 0)
	s.SetAt(IntegratorDelayIn, s.At(IntegratorZero))
	s.SetAt(IntegratorDelayState, s.At(IntegratorIC))
	integrate(s, 0)

	dt := minDelta
	s.SetAt(DerivatorDeltaT, dt)
	s.SetAt(DerivatorMultIC, s.At(DerivatorIC)*dt)
	s.SetAt(DerivatorNeg1, -s.At(DerivatorMultIC))
	s.SetAt(DerivatorSum1, in+s.At(DerivatorNeg1))
	s.SetAt(DerivatorDelay, s.At(DerivatorSum1))
	differentiate(s, in, dt)

	combine(s)
	env.TimeLast = env.Time
}

func (p *PID) CalculateEquations(env *fmu.Env) {
	s := env.Signals
	delta := env.Delta()

	// Delays emit what was fed to them on the previous evaluation.
	prev := s.At(DerivatorIN1)
	s.SetAt(IntegratorDelayIn, prev)
	s.SetAt(IntegratorDelayState, s.At(IntegratorSumState))
	s.SetAt(DerivatorDelay, prev)

	in := s.At(IntegratorIN1)
	fanOut(s, in)

	integrate(s, delta)

	dt := max(delta, minDelta)
	s.SetAt(DerivatorDeltaT, dt)
	s.SetAt(DerivatorMultIC, s.At(DerivatorIC)*dt)
	s.SetAt(DerivatorNeg1, -s.At(DerivatorMultIC))
	s.SetAt(DerivatorSum1, in+s.At(DerivatorNeg1))
	differentiate(s, in, dt)

	combine(s)
}

func fanOut(s signal.Store, in float64) {
	s.SetAt(In, in)
	s.SetAt(DerivatorIN1, in)
	s.SetAt(ProductKpIN2, in)
}

func integrate(s signal.Store, delta float64) {
	s.SetAt(IntegratorDeltaT, delta)
	s.SetAt(IntegratorMultDelta, s.At(IntegratorDelayIn)*delta)
	sum := s.At(IntegratorDelayState) + s.At(IntegratorMultDelta)
	s.SetAt(IntegratorSumState, sum)
	s.SetAt(IntegratorInner, sum)
	s.SetAt(IntegratorOut, sum)
}

func differentiate(s signal.Store, in, dt float64) {
	s.SetAt(DerivatorNeg2, -s.At(DerivatorDelay))
	s.SetAt(DerivatorSum2, in+s.At(DerivatorNeg2))
	s.SetAt(DerivatorInv, 1/dt)
	d := s.At(DerivatorSum2) * s.At(DerivatorInv)
	s.SetAt(DerivatorMult, d)
	s.SetAt(DerivatorInner, d)
	s.SetAt(DerivatorOut, d)
}

func combine(s signal.Store) {
	s.SetAt(ProductKdIN1, s.At(Const20))
	s.SetAt(ProductKdIN2, s.At(DerivatorOut))
	s.SetAt(ProductKd, s.At(ProductKdIN1)*s.At(ProductKdIN2))

	s.SetAt(ProductKiIN1, s.At(Const20))
	s.SetAt(ProductKiIN2, s.At(IntegratorOut))
	s.SetAt(ProductKi, s.At(ProductKiIN1)*s.At(ProductKiIN2))

	s.SetAt(ProductKpIN1, s.At(Constant390))
	s.SetAt(ProductKp, s.At(ProductKpIN1)*s.At(ProductKpIN2)*s.At(ProductKpIN3))

	s.SetAt(SummationIN1, s.At(ProductKp))
	s.SetAt(SummationIN2, s.At(ProductKi))
	s.SetAt(SummationIN3, s.At(ProductKd))
	s.SetAt(Summation, s.At(SummationIN1)+s.At(SummationIN2)+s.At(SummationIN3))
	s.SetAt(Out, s.At(Summation))
}

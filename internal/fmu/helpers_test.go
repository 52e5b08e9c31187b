package fmu

import (
	"fmt"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	"github.com/san-kum/cbdfmu/internal/signal"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(GinkgoWriter, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func tableOf(n int) *signal.Table {
	t := signal.NewTable()
	for i := 0; i < n; i++ {
		t.MustAdd(fmt.Sprintf("s%d", i), signal.Local, "")
	}
	return t
}

// detectingModel is a Model that also detects its own events.
type detectingModel struct {
	*MockModel
	*MockEventDetector
}

// decay is x' = -k·x with one event indicator z = x - 0.5.
type decay struct {
	table *signal.Table
}

const (
	decayX signal.ValueReference = iota
	decayK
	decayDX
)

func newDecay() *decay {
	t := signal.NewTable()
	t.MustAdd("x", signal.Output, "")
	t.MustAdd("k", signal.Parameter, "")
	t.MustAdd("der(x)", signal.Local, "")
	return &decay{table: t}
}

func (d *decay) Name() string             { return "decay" }
func (d *decay) GUID() string             { return "{decay}" }
func (d *decay) Variables() *signal.Table { return d.table }

func (d *decay) InitialEquations(env *Env) {
	env.Signals.Zero()
	env.Signals.SetAt(decayX, 1)
	env.Signals.SetAt(decayK, 2)
	d.CalculateEquations(env)
}

func (d *decay) CalculateEquations(env *Env) {
	s := env.Signals
	s.SetAt(decayDX, -s.At(decayK)*s.At(decayX))
}

func (d *decay) NumStates() int          { return 1 }
func (d *decay) NumEventIndicators() int { return 1 }

func (d *decay) ContinuousStates(env *Env, x []float64) { x[0] = env.Signals.At(decayX) }

func (d *decay) SetContinuousStates(env *Env, x []float64) {
	env.Signals.SetAt(decayX, x[0])
	d.CalculateEquations(env)
}

func (d *decay) Derivatives(env *Env, dx []float64) { dx[0] = env.Signals.At(decayDX) }

func (d *decay) EventIndicators(env *Env, z []float64) { z[0] = env.Signals.At(decayX) - 0.5 }

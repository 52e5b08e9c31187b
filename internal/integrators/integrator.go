// Package integrators provides fixed-step ODE integrators used inside model
// equations.
package integrators

// Func writes dx/dt at time t and state x into dx.
type Func func(t float64, x, dx []float64)

// Integrator advances x in place by one step of size dt.
type Integrator interface {
	Step(f Func, x []float64, t, dt float64)
}

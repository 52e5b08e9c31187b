package integrators

type Euler struct {
	dx []float64
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(f Func, x []float64, t, dt float64) {
	if len(e.dx) != len(x) {
		e.dx = make([]float64, len(x))
	}
	f(t, x, e.dx)
	for i := range x {
		x[i] += dt * e.dx[i]
	}
}

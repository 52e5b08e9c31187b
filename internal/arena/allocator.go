package arena

import "errors"

// ErrExhausted is returned when an allocator cannot satisfy a request.
var ErrExhausted = errors.New("arena: allocation failed")

// Allocator is the allocate/free pair an instance is created with.
type Allocator interface {
	Allocate(n int) ([]float64, error)
	Free(buf []float64)
}

// Heap allocates with make and leaves reclamation to the garbage collector.
type Heap struct{}

func (Heap) Allocate(n int) ([]float64, error) {
	if n < 0 {
		return nil, ErrExhausted
	}
	return make([]float64, n), nil
}

func (Heap) Free([]float64) {}

// Funcs adapts a host-supplied function pair. A nil Alloc or an Alloc that
// returns a short buffer is reported as ErrExhausted.
type Funcs struct {
	Alloc   func(n int) []float64
	Release func(buf []float64)
}

func (f Funcs) Allocate(n int) ([]float64, error) {
	if f.Alloc == nil || n < 0 {
		return nil, ErrExhausted
	}
	buf := f.Alloc(n)
	if len(buf) < n {
		return nil, ErrExhausted
	}
	buf = buf[:n]
	clear(buf)
	return buf, nil
}

func (f Funcs) Free(buf []float64) {
	if f.Release != nil && buf != nil {
		f.Release(buf)
	}
}

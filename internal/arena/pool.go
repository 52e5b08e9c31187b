package arena

import "sync"

// Pool recycles buffers keyed by length. Returned buffers are zeroed before
// they are handed out again.
type Pool struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

func NewPool() *Pool {
	return &Pool{pools: make(map[int]*sync.Pool)}
}

func (p *Pool) sized(n int) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, ok := p.pools[n]
	if !ok {
		sp = &sync.Pool{
			New: func() interface{} {
				buf := make([]float64, n)
				return &buf
			},
		}
		p.pools[n] = sp
	}
	return sp
}

func (p *Pool) Allocate(n int) ([]float64, error) {
	if n < 0 {
		return nil, ErrExhausted
	}
	buf := *(p.sized(n).Get().(*[]float64))
	return buf, nil
}

func (p *Pool) Free(buf []float64) {
	if buf == nil {
		return
	}
	for i := range buf {
		buf[i] = 0
	}
	p.sized(len(buf)).Put(&buf)
}

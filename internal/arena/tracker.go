package arena

import "sync"

// Tracker decorates an Allocator and records which buffers are still live.
// Freeing a buffer the tracker never handed out is counted as a foreign
// free and otherwise ignored.
type Tracker struct {
	inner Allocator

	mu       sync.Mutex
	live     map[*float64]int
	allocs   int
	frees    int
	foreign  int
	failNext bool
}

func NewTracker(inner Allocator) *Tracker {
	if inner == nil {
		inner = Heap{}
	}
	return &Tracker{inner: inner, live: make(map[*float64]int)}
}

// FailNext makes the next Allocate call fail with ErrExhausted.
func (t *Tracker) FailNext() {
	t.mu.Lock()
	t.failNext = true
	t.mu.Unlock()
}

func (t *Tracker) Allocate(n int) ([]float64, error) {
	t.mu.Lock()
	if t.failNext {
		t.failNext = false
		t.mu.Unlock()
		return nil, ErrExhausted
	}
	t.mu.Unlock()

	buf, err := t.inner.Allocate(n)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.allocs++
	if key := bufKey(buf); key != nil {
		t.live[key] = n
	}
	t.mu.Unlock()
	return buf, nil
}

func (t *Tracker) Free(buf []float64) {
	t.mu.Lock()
	key := bufKey(buf)
	if _, ok := t.live[key]; ok {
		delete(t.live, key)
		t.frees++
	} else if n := len(buf); n > 0 {
		t.foreign++
	}
	t.mu.Unlock()

	t.inner.Free(buf)
}

// Outstanding reports how many buffers have been allocated but not freed.
// Zero-length buffers are not tracked.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Stats returns allocation, free and foreign-free counters.
func (t *Tracker) Stats() (allocs, frees, foreign int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allocs, t.frees, t.foreign
}

func bufKey(buf []float64) *float64 {
	if len(buf) == 0 {
		return nil
	}
	return &buf[0]
}

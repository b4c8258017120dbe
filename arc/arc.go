package arc

import (
	"go.uber.org/atomic"

	"github.com/juntyr/wobbly"
)

// cell is the shared record behind a strong/weak handle pair. The
// counters are atomic; the value slot and destructor are written only
// at construction and by the single destroying drop.
type cell[T any] struct {
	value  T
	drop   func(T)
	strong atomic.Int64
	weak   atomic.Int64
}

// tryIncStrong increments the strong count unless it already reached
// zero. The CAS loop keeps a dead value dead: once the count hits zero
// no upgrade can revive it.
func (c *cell[T]) tryIncStrong() bool {
	for {
		n := c.strong.Load()
		if n == 0 {
			return false
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// destroy runs the destructor and clears the value slot. The caller is
// the drop that took the strong count to zero, so no other goroutine
// can reach the value anymore.
func (c *cell[T]) destroy() {
	v := c.value
	var zero T
	c.value = zero
	if c.drop != nil {
		c.drop(v)
		return
	}
	if d, ok := any(v).(wobbly.Dropper); ok {
		d.Drop()
	}
}

// Arc is a strong handle to a value shared across goroutines. The value
// stays alive while at least one strong handle does; the drop that
// releases the last one destroys it, on whichever goroutine that drop
// happens to run.
type Arc[T any] struct {
	c *cell[T]
}

// New allocates a shared value with no destructor of its own. If the
// value implements wobbly.Dropper, its Drop method runs on destruction.
func New[T any](value T) *Arc[T] {
	return NewWithDrop(value, nil)
}

// NewWithDrop allocates a shared value. drop, if non-nil, runs exactly
// once when the last strong handle is dropped; a nil drop falls back to
// the value's own wobbly.Dropper implementation when it has one.
func NewWithDrop[T any](value T, drop func(T)) *Arc[T] {
	c := &cell[T]{value: value, drop: drop}
	c.strong.Store(1)
	return &Arc[T]{c: c}
}

// Get returns the shared value. Panics if the handle was dropped.
func (a *Arc[T]) Get() T {
	if a == nil || a.c == nil {
		panic("arc: Get on dropped handle")
	}
	return a.c.value
}

// Clone returns a new strong handle to the same value.
func (a *Arc[T]) Clone() *Arc[T] {
	if a == nil || a.c == nil {
		panic("arc: Clone on dropped handle")
	}
	if n := a.c.strong.Inc(); n < 2 {
		panic("arc: Clone of a destroyed value")
	}
	return &Arc[T]{c: a.c}
}

// Downgrade returns a weak handle to the same value.
func (a *Arc[T]) Downgrade() *Weak[T] {
	if a == nil || a.c == nil {
		panic("arc: Downgrade on dropped handle")
	}
	a.c.weak.Inc()
	return &Weak[T]{c: a.c}
}

// Drop releases this handle. The drop that releases the last strong
// handle destroys the value. Drop is idempotent and safe on a nil
// handle, but must be called by the handle's single final owner.
func (a *Arc[T]) Drop() {
	if a == nil || a.c == nil {
		return
	}
	c := a.c
	a.c = nil
	n := c.strong.Dec()
	if n < 0 {
		panic("arc: strong count underflow")
	}
	if n == 0 {
		c.destroy()
	}
}

// StrongCount reports the number of live strong handles, or 0 if this
// handle was dropped. Under concurrent churn the value is a snapshot.
func (a *Arc[T]) StrongCount() int64 {
	if a == nil || a.c == nil {
		return 0
	}
	return a.c.strong.Load()
}

// WeakCount reports the number of live weak handles, or 0 if this
// handle was dropped. Under concurrent churn the value is a snapshot.
func (a *Arc[T]) WeakCount() int64 {
	if a == nil || a.c == nil {
		return 0
	}
	return a.c.weak.Load()
}

// Weak is a non-owning handle to a shared value. It observes the
// value's liveness without extending it, and can be upgraded back to a
// strong handle for as long as strong handles remain.
type Weak[T any] struct {
	c *cell[T]
}

// Clone returns a new weak handle to the same value.
func (w *Weak[T]) Clone() *Weak[T] {
	if w == nil || w.c == nil {
		panic("arc: Clone on dropped handle")
	}
	w.c.weak.Inc()
	return &Weak[T]{c: w.c}
}

// Upgrade returns a new strong handle and true while the value is still
// alive, or nil and false once the last strong handle was dropped. An
// upgrade never races a dead value back to life.
func (w *Weak[T]) Upgrade() (*Arc[T], bool) {
	if w == nil || w.c == nil {
		panic("arc: Upgrade on dropped handle")
	}
	if !w.c.tryIncStrong() {
		return nil, false
	}
	return &Arc[T]{c: w.c}, true
}

// Drop releases this weak handle. Idempotent and safe on a nil handle,
// but must be called by the handle's single final owner.
func (w *Weak[T]) Drop() {
	if w == nil || w.c == nil {
		return
	}
	c := w.c
	w.c = nil
	c.weak.Dec()
}

// StrongCount reports the number of live strong handles, or 0 if this
// handle was dropped. Under concurrent churn the value is a snapshot.
func (w *Weak[T]) StrongCount() int64 {
	if w == nil || w.c == nil {
		return 0
	}
	return w.c.strong.Load()
}

// WeakCount reports the number of live weak handles, or 0 if this
// handle was dropped. Under concurrent churn the value is a snapshot.
func (w *Weak[T]) WeakCount() int64 {
	if w == nil || w.c == nil {
		return 0
	}
	return w.c.weak.Load()
}

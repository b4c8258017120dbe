package rc

import (
	"github.com/juntyr/wobbly"
)

// cell is the shared record behind a strong/weak handle pair. It owns
// the value slot, the optional destructor, and both reference counts.
type cell[T any] struct {
	value  T
	drop   func(T)
	strong int
	weak   int
}

// destroy runs the destructor and clears the value slot. It is called
// exactly once, when the last strong handle is dropped.
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

// Rc is a strong handle to a shared value. The value stays alive while
// at least one strong handle does; dropping the last one destroys it.
//
// Handles are pointers. Share them by pointer, never by copying the
// pointed-to struct, so that Drop detaches every alias at once.
type Rc[T any] struct {
	c *cell[T]
}

// New allocates a shared value with no destructor of its own. If the
// value implements wobbly.Dropper, its Drop method runs on destruction.
func New[T any](value T) *Rc[T] {
	return NewWithDrop(value, nil)
}

// NewWithDrop allocates a shared value. drop, if non-nil, runs exactly
// once when the last strong handle is dropped; a nil drop falls back to
// the value's own wobbly.Dropper implementation when it has one.
func NewWithDrop[T any](value T, drop func(T)) *Rc[T] {
	return &Rc[T]{c: &cell[T]{value: value, drop: drop, strong: 1}}
}

// Get returns the shared value. Panics if the handle was dropped.
func (r *Rc[T]) Get() T {
	if r == nil || r.c == nil {
		panic("rc: Get on dropped handle")
	}
	return r.c.value
}

// Clone returns a new strong handle to the same value.
func (r *Rc[T]) Clone() *Rc[T] {
	if r == nil || r.c == nil {
		panic("rc: Clone on dropped handle")
	}
	r.c.strong++
	return &Rc[T]{c: r.c}
}

// Downgrade returns a weak handle to the same value.
func (r *Rc[T]) Downgrade() *Weak[T] {
	if r == nil || r.c == nil {
		panic("rc: Downgrade on dropped handle")
	}
	r.c.weak++
	return &Weak[T]{c: r.c}
}

// Drop releases this handle. Dropping the last strong handle destroys
// the value. Drop is idempotent and safe on a nil handle.
func (r *Rc[T]) Drop() {
	if r == nil || r.c == nil {
		return
	}
	c := r.c
	r.c = nil
	c.strong--
	if c.strong < 0 {
		panic("rc: strong count underflow")
	}
	if c.strong == 0 {
		c.destroy()
	}
}

// StrongCount reports the number of live strong handles, or 0 if this
// handle was dropped.
func (r *Rc[T]) StrongCount() int {
	if r == nil || r.c == nil {
		return 0
	}
	return r.c.strong
}

// WeakCount reports the number of live weak handles, or 0 if this
// handle was dropped.
func (r *Rc[T]) WeakCount() int {
	if r == nil || r.c == nil {
		return 0
	}
	return r.c.weak
}

// Weak is a non-owning handle to a shared value. It observes the
// value's liveness without extending it, and can be upgraded back to a
// strong handle while at least one strong handle remains.
type Weak[T any] struct {
	c *cell[T]
}

// Clone returns a new weak handle to the same value.
func (w *Weak[T]) Clone() *Weak[T] {
	if w == nil || w.c == nil {
		panic("rc: Clone on dropped handle")
	}
	w.c.weak++
	return &Weak[T]{c: w.c}
}

// Upgrade returns a new strong handle and true while the value is still
// alive, or nil and false once the last strong handle was dropped.
func (w *Weak[T]) Upgrade() (*Rc[T], bool) {
	if w == nil || w.c == nil {
		panic("rc: Upgrade on dropped handle")
	}
	if w.c.strong == 0 {
		return nil, false
	}
	w.c.strong++
	return &Rc[T]{c: w.c}, true
}

// Drop releases this weak handle. Idempotent and safe on a nil handle.
func (w *Weak[T]) Drop() {
	if w == nil || w.c == nil {
		return
	}
	c := w.c
	w.c = nil
	c.weak--
}

// StrongCount reports the number of live strong handles, or 0 if this
// handle was dropped.
func (w *Weak[T]) StrongCount() int {
	if w == nil || w.c == nil {
		return 0
	}
	return w.c.strong
}

// WeakCount reports the number of live weak handles, or 0 if this
// handle was dropped.
func (w *Weak[T]) WeakCount() int {
	if w == nil || w.c == nil {
		return 0
	}
	return w.c.weak
}

package arc

import (
	"go.uber.org/atomic"

	"github.com/juntyr/wobbly"
)

// group is the shared record of one wobbly group: the single strong
// reference the members jointly own, the one-shot flag guarding its
// release, and the live membership count.
type group[T any] struct {
	id       uint64
	pin      *Arc[T]
	released atomic.Bool
	members  atomic.Int64
}

// releaseOnce drops the group's strong reference. The CAS elects one
// releasing member; every other call returns immediately. Only the
// winner touches the pin, so the release needs no lock around it.
func (g *group[T]) releaseOnce() {
	if !g.released.CompareAndSwap(false, true) {
		return
	}
	pin := g.pin
	g.pin = nil
	pin.Drop()
	emit(wobbly.EventPinReleased, g.id, int(g.members.Load()))
}

// Wobbly is one membership in a group that jointly extends a shared
// value's lifetime by exactly one strong reference. The first member
// dropped, under any interleaving of racing drops, releases that
// reference on behalf of the whole group; each member observes the
// value through its own weak handle, so the group never extends the
// lifetime by more than one.
type Wobbly[T any] struct {
	weak *Weak[T]
	g    *group[T]
}

// NewWobbly founds a new group around the value behind strong. The
// group takes one strong reference of its own; strong stays with the
// caller. The returned handle is the group's first member.
func NewWobbly[T any](strong *Arc[T]) *Wobbly[T] {
	g := &group[T]{
		id:  wobbly.NextGroupID(),
		pin: strong.Clone(),
	}
	g.members.Store(1)
	w := &Wobbly[T]{weak: strong.Downgrade(), g: g}
	emit(wobbly.EventGroupFounded, g.id, 1)
	return w
}

// Clone returns a new member of the same group.
func (w *Wobbly[T]) Clone() *Wobbly[T] {
	if w == nil || w.g == nil {
		panic("arc: Clone on dropped handle")
	}
	n := w.g.members.Inc()
	m := &Wobbly[T]{weak: w.weak.Clone(), g: w.g}
	emit(wobbly.EventHandleJoined, w.g.id, int(n))
	return m
}

// Upgrade returns a new strong handle and true while the value is still
// alive, or nil and false once it has been destroyed. Upgrading never
// depends on whether the group still holds its own strong reference.
func (w *Wobbly[T]) Upgrade() (*Arc[T], bool) {
	if w == nil || w.g == nil {
		panic("arc: Upgrade on dropped handle")
	}
	return w.weak.Upgrade()
}

// Downgrade returns an independent weak handle to the shared value.
func (w *Wobbly[T]) Downgrade() *Weak[T] {
	if w == nil || w.g == nil {
		panic("arc: Downgrade on dropped handle")
	}
	return w.weak.Clone()
}

// Drop releases this membership. Exactly one of the racing member drops
// releases the group's strong reference, and it finishes that release
// before its own membership decrement, so the count cannot reach zero
// with the release still in flight. Drop is idempotent and safe on a
// nil handle, but must be called by the handle's single final owner.
func (w *Wobbly[T]) Drop() {
	if w == nil || w.g == nil {
		return
	}
	g := w.g
	w.g = nil
	g.releaseOnce()
	w.weak.Drop()
	w.weak = nil
	n := g.members.Dec()
	emit(wobbly.EventHandleDropped, g.id, int(n))
	if n == 0 {
		emit(wobbly.EventGroupReclaimed, g.id, 0)
	}
}

// Members reports the number of live members in this group, or 0 if
// this handle was dropped. Under concurrent churn the value is a
// snapshot.
func (w *Wobbly[T]) Members() int64 {
	if w == nil || w.g == nil {
		return 0
	}
	return w.g.members.Load()
}

// StrongCount reports the number of live strong handles to the value,
// or 0 if this handle was dropped.
func (w *Wobbly[T]) StrongCount() int64 {
	if w == nil || w.g == nil {
		return 0
	}
	return w.weak.StrongCount()
}

// WeakCount reports the number of live weak handles to the value, or 0
// if this handle was dropped.
func (w *Wobbly[T]) WeakCount() int64 {
	if w == nil || w.g == nil {
		return 0
	}
	return w.weak.WeakCount()
}

func emit(t wobbly.EventType, group uint64, members int) {
	wobbly.Emit(wobbly.Event{
		Variant: wobbly.VariantARC,
		Type:    t,
		Group:   group,
		Members: members,
	})
}

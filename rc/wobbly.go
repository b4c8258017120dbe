package rc

import (
	"github.com/juntyr/wobbly"
)

// group is the shared record of one wobbly group: the single strong
// reference the members jointly own, the one-shot flag guarding its
// release, and the live membership count.
type group[T any] struct {
	id       uint64
	pin      *Rc[T]
	released bool
	members  int
}

// releaseOnce drops the group's strong reference. Only the first call
// releases; every later call is a no-op.
func (g *group[T]) releaseOnce() {
	if g.released {
		return
	}
	g.released = true
	pin := g.pin
	g.pin = nil
	pin.Drop()
	emit(wobbly.EventPinReleased, g.id, g.members)
}

// Wobbly is one membership in a group that jointly extends a shared
// value's lifetime by exactly one strong reference. The first member
// dropped releases that reference on behalf of the whole group; each
// member observes the value through its own weak handle, so the group
// never extends the lifetime by more than one.
type Wobbly[T any] struct {
	weak *Weak[T]
	g    *group[T]
}

// NewWobbly founds a new group around the value behind strong. The
// group takes one strong reference of its own; strong stays with the
// caller. The returned handle is the group's first member.
func NewWobbly[T any](strong *Rc[T]) *Wobbly[T] {
	g := &group[T]{
		id:      wobbly.NextGroupID(),
		pin:     strong.Clone(),
		members: 1,
	}
	w := &Wobbly[T]{weak: strong.Downgrade(), g: g}
	emit(wobbly.EventGroupFounded, g.id, g.members)
	return w
}

// Clone returns a new member of the same group.
func (w *Wobbly[T]) Clone() *Wobbly[T] {
	if w == nil || w.g == nil {
		panic("rc: Clone on dropped handle")
	}
	w.g.members++
	m := &Wobbly[T]{weak: w.weak.Clone(), g: w.g}
	emit(wobbly.EventHandleJoined, w.g.id, w.g.members)
	return m
}

// Upgrade returns a new strong handle and true while the value is still
// alive, or nil and false once it has been destroyed. Upgrading never
// depends on whether the group still holds its own strong reference.
func (w *Wobbly[T]) Upgrade() (*Rc[T], bool) {
	if w == nil || w.g == nil {
		panic("rc: Upgrade on dropped handle")
	}
	return w.weak.Upgrade()
}

// Downgrade returns an independent weak handle to the shared value.
func (w *Wobbly[T]) Downgrade() *Weak[T] {
	if w == nil || w.g == nil {
		panic("rc: Downgrade on dropped handle")
	}
	return w.weak.Clone()
}

// Drop releases this membership. The first member dropped also releases
// the group's strong reference, and does so before the membership count
// falls, so the value is never pinned by a group no member can reach.
// Drop is idempotent and safe on a nil handle.
func (w *Wobbly[T]) Drop() {
	if w == nil || w.g == nil {
		return
	}
	g := w.g
	w.g = nil
	g.releaseOnce()
	w.weak.Drop()
	w.weak = nil
	g.members--
	emit(wobbly.EventHandleDropped, g.id, g.members)
	if g.members == 0 {
		emit(wobbly.EventGroupReclaimed, g.id, 0)
	}
}

// Members reports the number of live members in this group, or 0 if
// this handle was dropped.
func (w *Wobbly[T]) Members() int {
	if w == nil || w.g == nil {
		return 0
	}
	return w.g.members
}

// StrongCount reports the number of live strong handles to the value,
// or 0 if this handle was dropped.
func (w *Wobbly[T]) StrongCount() int {
	if w == nil || w.g == nil {
		return 0
	}
	return w.weak.StrongCount()
}

// WeakCount reports the number of live weak handles to the value, or 0
// if this handle was dropped.
func (w *Wobbly[T]) WeakCount() int {
	if w == nil || w.g == nil {
		return 0
	}
	return w.weak.WeakCount()
}

func emit(t wobbly.EventType, group uint64, members int) {
	wobbly.Emit(wobbly.Event{
		Variant: wobbly.VariantRC,
		Type:    t,
		Group:   group,
		Members: members,
	})
}

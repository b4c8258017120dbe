// Package wobbly provides group-scoped lifetime extension for
// reference-counted values.
//
// A wobbly handle sits between a strong and a weak reference: every member of
// a handle group shares one extra strong reference (the pin) to a payload, and
// the first member to be destroyed releases it for the whole group. Until that
// first destruction a member can always reach the payload; afterwards the
// group behaves like a set of plain weak references. This breaks strong
// reference cycles without giving up liveness guarantees for fresh members.
//
// # Architecture Overview
//
// The module is organized into flat packages with one concern each:
//
//	wobbly/      Root package: lifecycle events, observers, Dropper
//	├── rc/      Single-thread variant: Rc[T], Weak[T], Wobbly[T]
//	├── arc/     Concurrent variant: Arc[T], Weak[T], Wobbly[T]
//	├── leakcheck/  Live-group tracking for tests and debugging
//	├── metrics/    VictoriaMetrics counters for group lifecycles
//	├── zaplog/     zap-backed lifecycle logging
//	└── cmd/wobbly/ Demo, stress run, and interactive TUI
//
// # Quick Start
//
// Build a reference-counted value, found a group on it, and hand members out:
//
//	s := arc.NewWithDrop(conn, func(c *Conn) { c.Close() })
//	h1 := arc.NewWobbly(s)
//	h2 := h1.Clone() // joins the same group
//	s.Drop()         // the group pin keeps conn alive
//
//	if c, ok := h2.Upgrade(); ok {
//	    defer c.Drop()
//	    use(c.Get())
//	}
//
//	h1.Drop() // first teardown releases the group's pin
//	h2.Drop() // last member out tears the group record down
//
// # Choosing a Variant
//
// Package rc assumes all operations on a group happen on one goroutine and
// carries no synchronization at all. Package arc tolerates arbitrary
// interleavings of joins, drops, and upgrades across goroutines and guarantees
// the pin is released exactly once no matter how destructions race.
//
// # Lifecycle Observation
//
// Subscribe observers to watch groups being founded, joined, released, and
// reclaimed. The zaplog, metrics, and leakcheck packages are ready-made
// observers; the dispatcher costs one atomic load per operation when nobody
// is subscribed.
//
// # Destructors
//
// Go has no destructors, so destruction is explicit: handles have an
// idempotent Drop method, and payload cleanup is either a drop function given
// at construction or the payload's own Drop method via the Dropper interface.
// A destructor must never touch handles of the group that is dropping it.
package wobbly

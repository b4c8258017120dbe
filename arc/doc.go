// Package arc implements the cross-goroutine flavor of the shared-value
// handles: the strong/weak pair and the wobbly group from package rc,
// rebuilt over atomic counters so that handles of the same value can be
// cloned, upgraded, and dropped from any number of goroutines at once.
//
// Clone, Get, Upgrade, and the count accessors are safe to call on a
// handle shared between goroutines. Drop is not: it detaches the handle
// in place, so each handle must be dropped by a single final owner.
// Clone a handle for every goroutine that needs its own.
package arc

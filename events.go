package wobbly

import (
	"sync"

	"go.uber.org/atomic"
)

var (
	observerMu sync.RWMutex
	observers  []Observer

	// Mirrors len(observers) so Emit can bail without taking the lock.
	observerCount atomic.Int32

	groupIDs atomic.Uint64
)

// Subscribe registers an observer for all group lifecycle events, from both
// variants and every group in the process.
func Subscribe(o Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	observers = append(observers, o)
	observerCount.Store(int32(len(observers)))
}

// Unsubscribe removes a previously subscribed observer. Removing an observer
// that was never subscribed is a no-op.
func Unsubscribe(o Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	for i, obs := range observers {
		if obs == o {
			observers = append(observers[:i], observers[i+1:]...)
			break
		}
	}
	observerCount.Store(int32(len(observers)))
}

// Emit dispatches an event to all subscribed observers. It is the variant
// packages' half of the observer contract; applications normally have no
// reason to call it.
func Emit(e Event) {
	if observerCount.Load() == 0 {
		return
	}
	observerMu.RLock()
	defer observerMu.RUnlock()
	for _, o := range observers {
		o.OnGroupEvent(e)
	}
}

// NextGroupID allocates a process-unique group identifier. Identifiers are
// never reused; they order groups by creation.
func NextGroupID() uint64 {
	return groupIDs.Inc()
}

// Package leakcheck tracks group lifecycles to catch handles that were
// never dropped. Install a tracker around a test or a program phase,
// then verify that every founded group was reclaimed; any that were not
// are reported with the call stack that founded them.
package leakcheck

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/emirpasic/gods/v2/maps/treemap"

	"github.com/juntyr/wobbly"
)

// Tracker records every live group and the call stack that founded it.
// Group ids are allocated monotonically, so the tree map keeps the
// report in founding order.
type Tracker struct {
	mu   sync.Mutex
	live *treemap.Map[uint64, founding]
}

type founding struct {
	variant string
	stack   []uintptr
}

// Install subscribes a fresh tracker to the group event stream.
func Install() *Tracker {
	t := &Tracker{live: treemap.New[uint64, founding]()}
	wobbly.Subscribe(t)
	return t
}

// Uninstall detaches the tracker from the event stream. The recorded
// state stays readable afterwards.
func (t *Tracker) Uninstall() {
	wobbly.Unsubscribe(t)
}

// OnGroupEvent implements wobbly.Observer.
func (t *Tracker) OnGroupEvent(e wobbly.Event) {
	switch e.Type {
	case wobbly.EventGroupFounded:
		var pcs [32]uintptr
		n := runtime.Callers(2, pcs[:])
		t.mu.Lock()
		t.live.Put(e.Group, founding{variant: e.Variant, stack: pcs[:n]})
		t.mu.Unlock()
	case wobbly.EventGroupReclaimed:
		t.mu.Lock()
		t.live.Remove(e.Group)
		t.mu.Unlock()
	}
}

// Live reports the ids of groups founded but not yet reclaimed, in
// founding order.
func (t *Tracker) Live() []uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live.Keys()
}

// Check returns nil when every founded group was reclaimed, and
// otherwise an error describing each group still live and where it was
// founded.
func (t *Tracker) Check() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.live.Size() == 0 {
		return nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "leakcheck: %d group(s) not reclaimed", t.live.Size())
	for _, id := range t.live.Keys() {
		f, _ := t.live.Get(id)
		fmt.Fprintf(&sb, "\n\ngroup %d (%s) founded at:\n%s", id, f.variant, formatStack(f.stack))
	}
	return errors.New(sb.String())
}

// VerifyNone fails tb when any group is still live. Call it at the end
// of a test, after dropping every handle the test created.
func (t *Tracker) VerifyNone(tb testing.TB) {
	tb.Helper()
	if err := t.Check(); err != nil {
		tb.Fatal(err)
	}
}

func formatStack(pcs []uintptr) string {
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "\t%s\n\t\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return sb.String()
}

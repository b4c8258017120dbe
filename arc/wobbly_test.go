package arc

import (
	"sync"
	"testing"

	"go.uber.org/atomic"

	"github.com/juntyr/wobbly"
)

func TestWobbly_GroupPinsValue(t *testing.T) {
	destroyed := 0
	r := NewWithDrop("v", func(string) { destroyed++ })

	m := NewWobbly(r)
	r.Drop()

	if destroyed != 0 {
		t.Fatal("expected the group to keep the value alive")
	}
	s, ok := m.Upgrade()
	if !ok {
		t.Fatal("expected upgrade through the group pin to succeed")
	}
	if got := s.Get(); got != "v" {
		t.Fatalf("expected %q, got %q", "v", got)
	}
	s.Drop()

	m.Drop()
	if destroyed != 1 {
		t.Fatalf("expected destructor to run once after the first member drop, ran %d times", destroyed)
	}
}

func TestWobbly_ReleaseLeavesOtherStrongsAlone(t *testing.T) {
	destroyed := 0
	r := NewWithDrop(1, func(int) { destroyed++ })

	a := NewWobbly(r)
	b := a.Clone()

	a.Drop()
	if destroyed != 0 {
		t.Fatal("expected the caller's strong handle to keep the value alive")
	}
	s, ok := b.Upgrade()
	if !ok {
		t.Fatal("expected upgrade to succeed while a strong handle remains")
	}
	s.Drop()

	r.Drop()
	if destroyed != 1 {
		t.Fatalf("expected dropping the last external strong handle to destroy the value, destructor ran %d times", destroyed)
	}
	if _, ok := b.Upgrade(); ok {
		t.Fatal("expected upgrade to fail once the external strong handle was dropped")
	}

	b.Drop()
	if destroyed != 1 {
		t.Fatalf("expected destructor to run once, ran %d times", destroyed)
	}
}

func TestWobbly_DropIdempotent(t *testing.T) {
	destroyed := 0
	r := NewWithDrop(1, func(int) { destroyed++ })
	a := NewWobbly(r)
	b := a.Clone()
	r.Drop()

	a.Drop()
	a.Drop()
	if n := b.Members(); n != 1 {
		t.Fatalf("expected repeated drops to detach once, members %d", n)
	}
	b.Drop()
	if destroyed != 1 {
		t.Fatalf("expected destructor to run once, ran %d times", destroyed)
	}

	var nilMember *Wobbly[int]
	nilMember.Drop()
}

func TestWobbly_UseAfterDropPanics(t *testing.T) {
	r := New(1)
	defer r.Drop()
	a := NewWobbly(r)
	a.Drop()

	expectPanic(t, "Clone", func() { a.Clone() })
	expectPanic(t, "Upgrade", func() { a.Upgrade() })
	expectPanic(t, "Downgrade", func() { a.Downgrade() })
}

func TestWobbly_ReleaseCompletesBeforeMemberCountFalls(t *testing.T) {
	var seen int64
	var upgraded bool
	var peer *Wobbly[int]

	r := NewWithDrop(1, func(int) {
		seen = peer.Members()
		_, upgraded = peer.Upgrade()
	})
	a := NewWobbly(r)
	peer = a.Clone()
	r.Drop()

	a.Drop()
	if seen != 2 {
		t.Fatalf("expected the destructor to observe both members still present, saw %d", seen)
	}
	if upgraded {
		t.Fatal("expected upgrade from inside the destructor to see a dead value")
	}
	if n := peer.Members(); n != 1 {
		t.Fatalf("expected 1 member after the drop, got %d", n)
	}
	peer.Drop()
}

func TestWobbly_ConcurrentDropsReleaseOnce(t *testing.T) {
	const memberCount = 8
	for trial := 0; trial < 200; trial++ {
		var destroyed atomic.Int32
		r := NewWithDrop(trial, func(int) { destroyed.Inc() })

		members := make([]*Wobbly[int], memberCount)
		members[0] = NewWobbly(r)
		for i := 1; i < memberCount; i++ {
			members[i] = members[0].Clone()
		}
		r.Drop()
		if n := destroyed.Load(); n != 0 {
			t.Fatalf("trial %d: destructor ran before any member dropped", trial)
		}

		start := make(chan struct{})
		var wg sync.WaitGroup
		for _, m := range members {
			wg.Add(1)
			go func(m *Wobbly[int]) {
				defer wg.Done()
				<-start
				m.Drop()
			}(m)
		}
		close(start)
		wg.Wait()

		if n := destroyed.Load(); n != 1 {
			t.Fatalf("trial %d: destructor ran %d times", trial, n)
		}
	}
}

func TestWobbly_UpgradeDuringRelease(t *testing.T) {
	for trial := 0; trial < 100; trial++ {
		var destroyed atomic.Int32
		r := NewWithDrop(trial, func(int) { destroyed.Inc() })

		dropper := NewWobbly(r)
		readers := make([]*Wobbly[int], 4)
		for i := range readers {
			readers[i] = dropper.Clone()
		}
		r.Drop()

		start := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			dropper.Drop()
		}()
		for _, m := range readers {
			wg.Add(1)
			go func(m *Wobbly[int]) {
				defer wg.Done()
				<-start
				for i := 0; i < 100; i++ {
					s, ok := m.Upgrade()
					if !ok {
						break
					}
					if got := s.Get(); got != trial {
						t.Errorf("trial %d: upgraded handle read %d", trial, got)
					}
					s.Drop()
				}
				m.Drop()
			}(m)
		}
		close(start)
		wg.Wait()

		if n := destroyed.Load(); n != 1 {
			t.Fatalf("trial %d: destructor ran %d times", trial, n)
		}
	}
}

func TestWobbly_MemberChurn(t *testing.T) {
	var destroyed atomic.Int32
	r := NewWithDrop(0, func(int) { destroyed.Inc() })
	root := NewWobbly(r)
	r.Drop()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		own := root.Clone()
		wg.Add(1)
		go func(own *Wobbly[int]) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				own.Clone().Drop()
			}
			own.Drop()
		}(own)
	}
	wg.Wait()

	if n := destroyed.Load(); n != 1 {
		t.Fatalf("destructor ran %d times under churn", n)
	}
	if _, ok := root.Upgrade(); ok {
		t.Fatal("expected upgrade to fail after the churn released the pin")
	}
	root.Drop()
}

type eventLog struct {
	mu     sync.Mutex
	events []wobbly.Event
}

func (l *eventLog) OnGroupEvent(e wobbly.Event) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []wobbly.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]wobbly.Event, len(l.events))
	copy(out, l.events)
	return out
}

func TestWobbly_ReleaseOrderedBeforeReclaim(t *testing.T) {
	log := &eventLog{}
	wobbly.Subscribe(log)
	defer wobbly.Unsubscribe(log)

	for trial := 0; trial < 50; trial++ {
		r := New(trial)
		members := make([]*Wobbly[int], 6)
		members[0] = NewWobbly(r)
		for i := 1; i < len(members); i++ {
			members[i] = members[0].Clone()
		}
		r.Drop()

		start := make(chan struct{})
		var wg sync.WaitGroup
		for _, m := range members {
			wg.Add(1)
			go func(m *Wobbly[int]) {
				defer wg.Done()
				<-start
				m.Drop()
			}(m)
		}
		close(start)
		wg.Wait()
	}

	released := make(map[uint64]bool)
	for _, e := range log.snapshot() {
		if e.Variant != wobbly.VariantARC {
			continue
		}
		switch e.Type {
		case wobbly.EventPinReleased:
			released[e.Group] = true
		case wobbly.EventGroupReclaimed:
			if !released[e.Group] {
				t.Fatalf("group %d reclaimed before its pin release", e.Group)
			}
		}
	}
}

func BenchmarkWobbly_ParallelCloneDrop(b *testing.B) {
	r := New(0)
	defer r.Drop()
	root := NewWobbly(r)
	defer root.Drop()
	b.RunParallel(func(pb *testing.PB) {
		own := root.Clone()
		defer own.Drop()
		for pb.Next() {
			own.Clone().Drop()
		}
	})
}

package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/juntyr/wobbly"
	"github.com/juntyr/wobbly/arc"
	"github.com/juntyr/wobbly/leakcheck"
	"github.com/juntyr/wobbly/metrics"
)

// runStress hammers the concurrent variant: for every group all members
// drop at once from their own goroutines, racing upgrades against the
// release. The value behind each group must be destroyed exactly once
// and every group must end up reclaimed.
func runStress(log *zap.Logger, groups, members int, showMetrics bool) error {
	if groups < 1 || members < 1 {
		return fmt.Errorf("stress: need at least 1 group and 1 member, got %d and %d", groups, members)
	}

	collector := metrics.New()
	wobbly.Subscribe(collector)
	defer wobbly.Unsubscribe(collector)

	tracker := leakcheck.Install()
	defer tracker.Uninstall()

	var destroyed atomic.Int64
	start := time.Now()
	for g := 0; g < groups; g++ {
		stressGroup(&destroyed, members)
	}
	elapsed := time.Since(start)

	if n := destroyed.Load(); n != int64(groups) {
		return fmt.Errorf("stress: %d groups destroyed their value %d times", groups, n)
	}
	if err := tracker.Check(); err != nil {
		return err
	}

	liveGroups, liveMembers := collector.Live(wobbly.VariantARC)
	fmt.Printf("stress: %d groups x %d members in %s\n", groups, members, elapsed.Round(time.Millisecond))
	fmt.Printf("stress: every value destroyed exactly once; %d live groups, %d live members remain\n",
		liveGroups, liveMembers)

	if showMetrics {
		fmt.Println()
		collector.WritePrometheus(os.Stdout)
	}
	log.Debug("stress complete",
		zap.Int("groups", groups),
		zap.Int("members", members),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func stressGroup(destroyed *atomic.Int64, members int) {
	r := arc.NewWithDrop(struct{}{}, func(struct{}) { destroyed.Inc() })

	group := make([]*arc.Wobbly[struct{}], members)
	group[0] = arc.NewWobbly(r)
	for i := 1; i < members; i++ {
		group[i] = group[0].Clone()
	}
	r.Drop()

	begin := make(chan struct{})
	var wg sync.WaitGroup
	for _, m := range group {
		wg.Add(1)
		go func(m *arc.Wobbly[struct{}]) {
			defer wg.Done()
			<-begin
			if s, ok := m.Upgrade(); ok {
				s.Drop()
			}
			m.Drop()
		}(m)
	}
	close(begin)
	wg.Wait()
}

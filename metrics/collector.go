// Package metrics tallies group lifecycle events into Prometheus-style
// series, one per variant.
package metrics

import (
	"io"

	"github.com/VictoriaMetrics/metrics"

	"github.com/juntyr/wobbly"
)

// Collector counts group lifecycle events. Cumulative series track
// founds, joins, releases, drops, and reclaims; the two live gauges
// track groups and members currently alive.
type Collector struct {
	set *metrics.Set
}

// New returns an empty collector. Subscribe it to the event stream to
// start counting.
func New() *Collector {
	return &Collector{set: metrics.NewSet()}
}

// OnGroupEvent implements wobbly.Observer.
func (c *Collector) OnGroupEvent(e wobbly.Event) {
	switch e.Type {
	case wobbly.EventGroupFounded:
		c.counter("wobbly_groups_founded_total", e.Variant).Inc()
		c.counter("wobbly_groups_live", e.Variant).Inc()
		// founding creates the first member without a join event
		c.counter("wobbly_members_live", e.Variant).Inc()
	case wobbly.EventHandleJoined:
		c.counter("wobbly_members_joined_total", e.Variant).Inc()
		c.counter("wobbly_members_live", e.Variant).Inc()
	case wobbly.EventPinReleased:
		c.counter("wobbly_pins_released_total", e.Variant).Inc()
	case wobbly.EventHandleDropped:
		c.counter("wobbly_members_dropped_total", e.Variant).Inc()
		c.counter("wobbly_members_live", e.Variant).Dec()
	case wobbly.EventGroupReclaimed:
		c.counter("wobbly_groups_reclaimed_total", e.Variant).Inc()
		c.counter("wobbly_groups_live", e.Variant).Dec()
	}
}

// Live reports the current live group and member tallies for variant.
func (c *Collector) Live(variant string) (groups, members uint64) {
	return c.counter("wobbly_groups_live", variant).Get(),
		c.counter("wobbly_members_live", variant).Get()
}

// WritePrometheus writes every collected series to w in Prometheus text
// exposition format.
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

func (c *Collector) counter(name, variant string) *metrics.Counter {
	return c.set.GetOrCreateCounter(name + `{variant="` + variant + `"}`)
}

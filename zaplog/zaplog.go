// Package zaplog bridges group lifecycle events into a zap logger.
package zaplog

import (
	"go.uber.org/zap"

	"github.com/juntyr/wobbly"
)

// Observer logs every group lifecycle event it receives.
type Observer struct {
	log *zap.Logger
}

// New returns an observer that writes events to log at debug level. A
// nil log falls back to the no-op logger, so the observer is safe to
// install before logging is configured.
func New(log *zap.Logger) *Observer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Observer{log: log}
}

// OnGroupEvent implements wobbly.Observer.
func (o *Observer) OnGroupEvent(e wobbly.Event) {
	o.log.Debug("group event",
		zap.String("variant", e.Variant),
		zap.Stringer("type", e.Type),
		zap.Uint64("group", e.Group),
		zap.Int("members", e.Members),
	)
}

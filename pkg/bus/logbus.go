package bus

import (
	"context"

	"github.com/voicerec/voicerec/pkg/logging"
)

// LogBus writes fired events to the log and nothing else.
type LogBus struct {
	logger *logging.Logger
}

// NewLogBus returns a logging-only bus.
func NewLogBus(logger *logging.Logger) *LogBus {
	return &LogBus{logger: logger}
}

func (b *LogBus) Fire(_ context.Context, event string, payload map[string]any) {
	b.logger.Info("event fired", "event", event, "payload", payload)
}

package hooks

import "time"

// SweepEvent describes one completed sweep for logging.
type SweepEvent struct {
	SweepID   string
	Pass      uint64
	Reclaimed int
	Retained  int
	Duration  time.Duration
}

// SweepLogger records sweep events.
type SweepLogger interface {
	LogSweep(SweepEvent)
}

// SweepLoggerFunc adapts a function to SweepLogger.
type SweepLoggerFunc func(SweepEvent)

// LogSweep implements SweepLogger.
func (f SweepLoggerFunc) LogSweep(event SweepEvent) {
	if f != nil {
		f(event)
	}
}

type noopSweepLogger struct{}

func (noopSweepLogger) LogSweep(SweepEvent) {}

// WithSweepLogger attaches a sweep logger to the store.
func WithSweepLogger(logger SweepLogger) StoreOption {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopSweepLogger{}
			return
		}
		cfg.logger = logger
	}
}

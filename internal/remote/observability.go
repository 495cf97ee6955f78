package remote

import "github.com/rs/zerolog"

// CallEvent records one call to the time-tracking service.
type CallEvent struct {
	Op        string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about remote calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events to a zerolog logger.
type LogObserver struct {
	logger zerolog.Logger
}

func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	ev := o.logger.Info()
	if !event.Success {
		ev = o.logger.Warn().Str("error_code", event.ErrorCode)
	}
	ev.Str("op", event.Op).
		Int64("latency_ms", event.LatencyMs).
		Bool("success", event.Success).
		Msg("remote_call")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}

// Package telemetry defines the fire-and-forget event sink the git driver
// emits operation snapshots to. Implementations may forward to Prometheus,
// a local journal, or logs. The core never observes a return value from a
// sink; aggregation is an external concern.
package telemetry

import "log/slog"

// Common event names and property keys emitted by the driver.
const (
	EventFetch    = "git_fetch"
	EventLFSFetch = "git_lfs_fetch"

	PropElapsedMS = "elapsed_ms"
	PropRefSpec   = "refspec"
	PropRemote    = "remote"
	PropDepth     = "depth"
	PropExitCode  = "exit_code"
	PropOptions   = "options"
	PropAttempt   = "attempt"
)

// Sink accepts a named event plus a flat string-keyed property map.
// Implementations must be safe for concurrent use and must never block the
// caller on downstream failures.
type Sink interface {
	Track(event string, props map[string]string)
}

// NoopSink is a Sink that does nothing (default when telemetry is not configured).
type NoopSink struct{}

func (NoopSink) Track(string, map[string]string) {}

// LogSink forwards events to slog at debug level.
type LogSink struct{}

func (LogSink) Track(event string, props map[string]string) {
	attrs := make([]any, 0, len(props)+1)
	attrs = append(attrs, slog.String("event", event))
	for k, v := range props {
		attrs = append(attrs, slog.String(k, v))
	}
	slog.Debug("telemetry event", attrs...)
}

// MultiSink fans one event out to several sinks.
type MultiSink []Sink

func (m MultiSink) Track(event string, props map[string]string) {
	for _, s := range m {
		if s != nil {
			s.Track(event, props)
		}
	}
}

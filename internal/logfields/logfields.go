package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyOperation  = "operation"
	KeyRepo       = "repository"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyRemote     = "remote"
	KeyAttempt    = "attempt"
	KeyExitCode   = "exit_code"
	KeyDurationMS = "duration_ms"
	KeyDepth      = "depth"
	KeyVersion    = "version"
	KeyComponent  = "component"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Operation(op string) slog.Attr   { return slog.String(KeyOperation, op) }
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Remote(r string) slog.Attr       { return slog.String(KeyRemote, r) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func ExitCode(c int) slog.Attr        { return slog.Int(KeyExitCode, c) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Depth(d int) slog.Attr           { return slog.Int(KeyDepth, d) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Component(c string) slog.Attr    { return slog.String(KeyComponent, c) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

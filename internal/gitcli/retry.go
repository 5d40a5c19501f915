package gitcli

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/gitdriver/internal/logfields"
)

// attemptFunc runs one attempt and returns its exit code. An error means the
// attempt did not complete (spawn failure or cancellation) and must propagate
// immediately.
type attemptFunc func(ctx context.Context) (int, error)

// emitFunc publishes one telemetry snapshot for a completed attempt.
type emitFunc func(attempt, exitCode int, elapsed time.Duration)

// runWithRetry is the bounded retry loop for idempotent network-bound
// operations. State is explicit: the attempt counter and last exit code are
// ordinary loop variables. One telemetry snapshot is emitted per completed
// attempt, before the retry decision. The returned exit code is always that
// of the last attempt made; exhausting retries is not coerced into a
// synthetic sentinel. Cancellation during backoff aborts the loop and
// propagates the context error, never an attempt-exhaustion result.
func (s *Session) runWithRetry(ctx context.Context, op string, attempt attemptFunc, emit emitFunc) (int, error) {
	lastExit := 0
	for n := 1; n <= s.policy.MaxAttempts; n++ {
		start := time.Now()
		exit, err := attempt(ctx)
		if err != nil {
			return exit, err
		}
		if emit != nil {
			emit(n, exit, time.Since(start))
		}
		lastExit = exit
		if exit == 0 {
			return 0, nil
		}
		if n == s.policy.MaxAttempts {
			break
		}
		slog.Warn("retrying git operation",
			logfields.Operation(op),
			logfields.Attempt(n),
			logfields.ExitCode(exit),
		)
		if serr := s.policy.Sleep(ctx); serr != nil {
			return lastExit, serr
		}
	}
	return lastExit, nil
}

package gitcli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/gitdriver/internal/gitver"
	"git.home.luguber.info/inful/gitdriver/internal/retry"
)

func testSession(r *scriptedRunner, sink *countingSink) *Session {
	return &Session{
		gitPath:      "/usr/bin/git",
		gitVersion:   gitver.New(2, 30, 1),
		gitVersionOK: true,
		runner:       r,
		sink:         sink,
		policy:       retry.Policy{MinDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, MaxAttempts: 3},
	}
}

// Exit sequence [1,1,0]: three attempts, three telemetry snapshots, final code 0.
func TestFetchRetriesUntilSuccess(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 1}, {exit: 1}, {exit: 0}}}
	sink := &countingSink{}
	s := testSession(runner, sink)

	code, err := s.Fetch(context.Background(), t.TempDir(), FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 3, runner.callCount())
	assert.Equal(t, 3, sink.count())
}

// Exit sequence [1,1,1]: three attempts, final code is the last attempt's 1,
// not a synthetic exhausted sentinel.
func TestFetchExhaustsRetries(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 1}, {exit: 1}, {exit: 1}}}
	sink := &countingSink{}
	s := testSession(runner, sink)

	code, err := s.Fetch(context.Background(), t.TempDir(), FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, 3, runner.callCount())
	assert.Equal(t, 3, sink.count())
}

func TestFetchFirstAttemptSucceeds(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 0}}}
	sink := &countingSink{}
	s := testSession(runner, sink)

	code, err := s.Fetch(context.Background(), t.TempDir(), FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, runner.callCount())
	assert.Equal(t, 1, sink.count())
}

// Cancellation during the backoff after the second failure must abort before
// a third attempt and surface the context error, not attempt exhaustion.
func TestFetchCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 1}, {exit: 1}, {exit: 0}}}
	sink := &countingSink{}
	sink.onTrack = func(n int) {
		if n == 2 {
			cancel()
		}
	}
	s := testSession(runner, sink)
	s.policy = retry.Policy{MinDelay: time.Minute, MaxDelay: time.Minute, MaxAttempts: 3}

	_, err := s.Fetch(ctx, t.TempDir(), FetchOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, runner.callCount(), "no third attempt after cancellation")
	assert.Equal(t, 2, sink.count())
}

// A spawn failure is not a retryable exit code; it propagates immediately.
func TestFetchRunnerErrorPropagates(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: -1, err: context.DeadlineExceeded}}}
	sink := &countingSink{}
	s := testSession(runner, sink)

	_, err := s.Fetch(context.Background(), t.TempDir(), FetchOptions{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, runner.callCount())
	assert.Equal(t, 0, sink.count(), "incomplete attempts emit no telemetry")
}

func TestFetchTelemetryProperties(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 0}}}
	sink := &countingSink{}
	s := testSession(runner, sink)

	_, err := s.Fetch(context.Background(), t.TempDir(), FetchOptions{
		Remote:   "upstream",
		RefSpecs: []string{"+refs/heads/*:refs/remotes/upstream/*"},
		Depth:    7,
	})
	require.NoError(t, err)
	require.Equal(t, 1, sink.count())

	props := sink.props[0]
	assert.Equal(t, "upstream", props["remote"])
	assert.Equal(t, "7", props["depth"])
	assert.Equal(t, "0", props["exit_code"])
	assert.Equal(t, "1", props["attempt"])
	assert.Contains(t, props["options"], "--depth=7")
	assert.Contains(t, props["refspec"], "refs/heads")
}

// LFS fetch uses the same state machine without the telemetry body.
func TestLFSFetchRetriesWithoutTelemetry(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 1}, {exit: 0}}}
	sink := &countingSink{}
	s := testSession(runner, sink)

	code, err := s.LFSFetch(context.Background(), t.TempDir(), "", "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 2, runner.callCount())
	assert.Equal(t, 0, sink.count())
}

func TestFetchArgumentShape(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 0}}}
	s := testSession(runner, &countingSink{})

	_, err := s.Fetch(context.Background(), t.TempDir(), FetchOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, runner.callCount())

	args := runner.callArgs(0)
	assert.Equal(t, "fetch", args[0])
	assert.Contains(t, args, "--tags")
	assert.Contains(t, args, "--prune")
	assert.Contains(t, args, "--force")
	assert.Contains(t, args, "--prune-tags")
	assert.Contains(t, args, "--progress")
	assert.Equal(t, "origin", args[len(args)-1])
}

package gitcli

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigGet(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{
		{exit: 0, stdout: []string{"value-1"}},
	}}
	s := testSession(runner, &countingSink{})

	v, ok := s.ConfigGet(context.Background(), t.TempDir(), "user.name")
	require.True(t, ok)
	assert.Equal(t, "value-1", v)
	assert.Equal(t, []string{"config", "--get", "user.name"}, runner.callArgs(0))
}

func TestConfigGetUndetermined(t *testing.T) {
	cases := []struct {
		name string
		resp scriptedResponse
	}{
		{"non-zero exit", scriptedResponse{exit: 1}},
		{"empty output", scriptedResponse{exit: 0}},
		{"multiple lines", scriptedResponse{exit: 0, stdout: []string{"a", "b"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &scriptedRunner{responses: []scriptedResponse{tc.resp}}
			s := testSession(runner, &countingSink{})
			_, ok := s.ConfigGet(context.Background(), t.TempDir(), "some.key")
			assert.False(t, ok)
		})
	}
}

func TestRemoteURL(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{
		{exit: 0, stdout: []string{"https://example.com/org/repo.git"}},
	}}
	s := testSession(runner, &countingSink{})

	u, ok := s.RemoteURL(context.Background(), t.TempDir(), "")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/org/repo.git", u)
	assert.Equal(t, []string{"config", "--get", "remote.origin.url"}, runner.callArgs(0))
}

func TestRemoteURLMalformed(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{
		{exit: 0, stdout: []string{"not a url at all"}},
	}}
	s := testSession(runner, &countingSink{})
	_, ok := s.RemoteURL(context.Background(), t.TempDir(), "origin")
	assert.False(t, ok)
}

func TestCheckoutArgs(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 0}}}
	s := testSession(runner, &countingSink{})

	code, err := s.Checkout(context.Background(), t.TempDir(), "refs/heads/main")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"checkout", "--progress", "--force", "refs/heads/main"}, runner.callArgs(0))
}

func TestCleanAndResetArgs(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 0}, {exit: 0}}}
	s := testSession(runner, &countingSink{})
	dir := t.TempDir()

	_, err := s.Clean(context.Background(), dir)
	require.NoError(t, err)
	_, err = s.Reset(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"clean", "-ffdx"}, runner.callArgs(0))
	assert.Equal(t, []string{"reset", "--hard", "HEAD"}, runner.callArgs(1))
}

func TestSubmoduleOperations(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 0}, {exit: 0}}}
	s := testSession(runner, &countingSink{})
	dir := t.TempDir()

	_, err := s.SubmoduleSync(context.Background(), dir, true)
	require.NoError(t, err)
	_, err = s.SubmoduleUpdate(context.Background(), dir, 3, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"submodule", "sync", "--recursive"}, runner.callArgs(0))
	assert.Equal(t, []string{"submodule", "update", "--init", "--force", "--depth=3"}, runner.callArgs(1))
}

// A non-zero exit is surfaced as the code itself, never as an error.
func TestNonZeroExitIsNotAnError(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 128}}}
	s := testSession(runner, &countingSink{})

	code, err := s.Checkout(context.Background(), t.TempDir(), "refs/heads/gone")
	require.NoError(t, err)
	assert.Equal(t, 128, code)
}

func TestEnvironmentOverrides(t *testing.T) {
	runner := &scriptedRunner{responses: []scriptedResponse{{exit: 0}}}
	s := testSession(runner, &countingSink{})
	s.env = map[string]string{"GIT_SSH_COMMAND": "ssh -i /keys/worker"}

	_, err := s.Init(context.Background(), t.TempDir())
	require.NoError(t, err)

	env := runner.calls[0].Env
	joined := strings.Join(env, "\n")
	assert.Contains(t, joined, "GIT_TERMINAL_PROMPT=0")
	assert.Contains(t, joined, "GIT_SSH_COMMAND=ssh -i /keys/worker")
	assert.Contains(t, joined, "GIT_HTTP_USER_AGENT=git/2.30.1")
}

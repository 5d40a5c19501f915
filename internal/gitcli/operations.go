package gitcli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/gitdriver/internal/gitver"
	"git.home.luguber.info/inful/gitdriver/internal/telemetry"
)

// FetchOptions are the per-call parameters for Fetch.
type FetchOptions struct {
	// Remote is the remote name; defaults to "origin".
	Remote string
	// RefSpecs are passed through after the remote name.
	RefSpecs []string
	// Depth > 0 requests a shallow fetch of that many commits. Zero means
	// unbounded; an existing shallow clone is then converted to full history.
	Depth int
}

func (o *FetchOptions) normalize() {
	if o.Remote == "" {
		o.Remote = "origin"
	}
}

// Fetch runs a version-gated git fetch with bounded retry and per-attempt
// telemetry. The returned code is the last attempt's exit code.
func (s *Session) Fetch(ctx context.Context, dir string, opts FetchOptions) (int, error) {
	opts.normalize()

	in := s.policyInput(opts.Depth, hasShallowMarker(dir))
	args := []string{"--tags", "--prune"}
	args = append(args, argsFor("fetch", in)...)
	args = append(args, opts.Remote)
	args = append(args, opts.RefSpecs...)
	optionString := strings.Join(args, " ")

	return s.runWithRetry(ctx, "fetch",
		func(ctx context.Context) (int, error) {
			exit, _, err := s.runGit(ctx, dir, nil, "fetch", args, stream)
			return exit, err
		},
		func(attempt, exitCode int, elapsed time.Duration) {
			s.sink.Track(telemetry.EventFetch, map[string]string{
				telemetry.PropElapsedMS: strconv.FormatInt(elapsed.Milliseconds(), 10),
				telemetry.PropRefSpec:   strings.Join(opts.RefSpecs, " "),
				telemetry.PropRemote:    opts.Remote,
				telemetry.PropDepth:     strconv.Itoa(opts.Depth),
				telemetry.PropExitCode:  strconv.Itoa(exitCode),
				telemetry.PropOptions:   optionString,
				telemetry.PropAttempt:   strconv.Itoa(attempt),
			})
		},
	)
}

// LFSFetch downloads LFS objects for the given ref. Same retry state machine
// as Fetch, without the telemetry body.
func (s *Session) LFSFetch(ctx context.Context, dir, remote, ref string) (int, error) {
	if remote == "" {
		remote = "origin"
	}
	return s.runWithRetry(ctx, "lfs fetch",
		func(ctx context.Context) (int, error) {
			exit, _, err := s.runGit(ctx, dir, nil, "lfs", []string{"fetch", remote, ref}, stream)
			return exit, err
		},
		nil,
	)
}

// Checkout checks out the given committish, discarding local modifications.
func (s *Session) Checkout(ctx context.Context, dir, ref string) (int, error) {
	in := s.policyInput(0, false)
	args := argsFor("checkout", in)
	args = append(args, "--force", ref)
	exit, _, err := s.runGit(ctx, dir, nil, "checkout", args, stream)
	return exit, err
}

// Clean removes untracked files and directories, including ignored ones.
func (s *Session) Clean(ctx context.Context, dir string) (int, error) {
	in := s.policyInput(0, false)
	exit, _, err := s.runGit(ctx, dir, nil, "clean", argsFor("clean", in), stream)
	return exit, err
}

// Reset hard-resets the working tree to HEAD.
func (s *Session) Reset(ctx context.Context, dir string) (int, error) {
	exit, _, err := s.runGit(ctx, dir, nil, "reset", []string{"--hard", "HEAD"}, stream)
	return exit, err
}

// Init initializes a repository in dir.
func (s *Session) Init(ctx context.Context, dir string) (int, error) {
	exit, _, err := s.runGit(ctx, dir, nil, "init", nil, stream)
	return exit, err
}

// SubmoduleSync synchronizes submodule remote URLs into .git/config.
func (s *Session) SubmoduleSync(ctx context.Context, dir string, recursive bool) (int, error) {
	var args []string
	if recursive {
		args = append(args, "--recursive")
	}
	exit, _, err := s.runGit(ctx, dir, nil, "submodule", append([]string{"sync"}, args...), stream)
	return exit, err
}

// SubmoduleUpdate checks out submodules at their recorded revisions.
func (s *Session) SubmoduleUpdate(ctx context.Context, dir string, depth int, recursive bool) (int, error) {
	args := []string{"update", "--init", "--force"}
	if depth > 0 {
		args = append(args, fmt.Sprintf("--depth=%d", depth))
	}
	if recursive {
		args = append(args, "--recursive")
	}
	exit, _, err := s.runGit(ctx, dir, nil, "submodule", args, stream)
	return exit, err
}

// GC runs repository garbage collection maintenance.
func (s *Session) GC(ctx context.Context, dir string) (int, error) {
	exit, _, err := s.runGit(ctx, dir, nil, "gc", []string{"--quiet"}, stream)
	return exit, err
}

// ConfigGet reads a single configuration value. Ambiguous output (none or
// multiple lines) and non-zero exits both resolve to ok=false, never an error.
func (s *Session) ConfigGet(ctx context.Context, dir, key string) (string, bool) {
	exit, lines, err := s.runGit(ctx, dir, nil, "config", []string{"--get", key}, collect)
	if err != nil || exit != 0 {
		return "", false
	}
	return singleNonEmptyLine(lines)
}

// ConfigSet writes a configuration value.
func (s *Session) ConfigSet(ctx context.Context, dir, key, value string) (int, error) {
	exit, _, err := s.runGit(ctx, dir, nil, "config", []string{key, value}, stream)
	return exit, err
}

// ConfigUnset removes a configuration key.
func (s *Session) ConfigUnset(ctx context.Context, dir, key string) (int, error) {
	exit, _, err := s.runGit(ctx, dir, nil, "config", []string{"--unset", key}, stream)
	return exit, err
}

// RemoteSetURL points the named remote at a new URL.
func (s *Session) RemoteSetURL(ctx context.Context, dir, remote, url string) (int, error) {
	exit, _, err := s.runGit(ctx, dir, nil, "remote", []string{"set-url", remote, url}, stream)
	return exit, err
}

// RemoteURL reads the fetch URL of the named remote. The value must be a
// well-formed absolute URL; anything else is undetermined. The raw value is
// never logged because it may embed credentials.
func (s *Session) RemoteURL(ctx context.Context, dir, remote string) (string, bool) {
	if remote == "" {
		remote = "origin"
	}
	exit, lines, err := s.runGit(ctx, dir, nil, "config", []string{"--get", fmt.Sprintf("remote.%s.url", remote)}, collect)
	if err != nil || exit != 0 {
		return "", false
	}
	return extractURL(lines)
}

// LFSInstall sets up LFS filters for the repository.
func (s *Session) LFSInstall(ctx context.Context, dir string) (int, error) {
	exit, _, err := s.runGit(ctx, dir, nil, "lfs", []string{"install", "--local"}, stream)
	return exit, err
}

// LFSPrune deletes unreferenced local LFS objects.
func (s *Session) LFSPrune(ctx context.Context, dir string) (int, error) {
	exit, _, err := s.runGit(ctx, dir, nil, "lfs", []string{"prune"}, stream)
	return exit, err
}

// ProbeVersion re-runs the version probe for the primary tool. Exposed for
// callers that report tool health; the session itself is probed at load.
func (s *Session) ProbeVersion(ctx context.Context) (gitver.Version, bool) {
	return s.probeVersion(ctx, s.gitPath)
}

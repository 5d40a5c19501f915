package gitcli

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"git.home.luguber.info/inful/gitdriver/internal/errors"
	"git.home.luguber.info/inful/gitdriver/internal/gitver"
	"git.home.luguber.info/inful/gitdriver/internal/logfields"
	"git.home.luguber.info/inful/gitdriver/internal/proc"
	"git.home.luguber.info/inful/gitdriver/internal/retry"
	"git.home.luguber.info/inful/gitdriver/internal/telemetry"
)

// Version floors enforced at session load. The minimum is fatal under strict
// enforcement; the recommended floor only produces an advisory.
var (
	minimumGitVersion     = gitver.New(2, 0, 0)
	recommendedGitVersion = gitver.New(2, 9, 0)

	// brokenLFSVersion has a known upstream checkout defect. Matched by exact
	// equality, never as a range: 2.7.0 and 2.7.2 are fine.
	brokenLFSVersion = gitver.New(2, 7, 1)
)

// PathResolver locates the installed tools on disk. The default looks them up
// on PATH; tests inject fixed paths.
type PathResolver interface {
	// GitPath returns the absolute path of the git executable.
	GitPath() (string, error)
	// LFSPath returns the git-lfs executable path, or false when the
	// extension is not installed.
	LFSPath() (string, bool)
}

type lookPathResolver struct{}

func (lookPathResolver) GitPath() (string, error) { return exec.LookPath("git") }

func (lookPathResolver) LFSPath() (string, bool) {
	p, err := exec.LookPath("git-lfs")
	return p, err == nil
}

// DefaultResolver resolves tools on PATH.
func DefaultResolver() PathResolver { return lookPathResolver{} }

// LoadOptions configures a session load.
type LoadOptions struct {
	// Runner is the subprocess capability. Defaults to proc.NewExecRunner().
	Runner proc.Runner
	// Resolver locates git and git-lfs. Defaults to PATH lookup.
	Resolver PathResolver
	// Telemetry receives per-attempt fetch snapshots. Defaults to NoopSink.
	Telemetry telemetry.Sink
	// RetryPolicy governs fetch-class retries. Defaults to retry.DefaultPolicy().
	RetryPolicy retry.Policy
	// Env holds session-level environment overrides. These win over the fixed
	// override set and the ambient process environment on key collision.
	Env map[string]string
	// Quiet suppresses progress reporting flags.
	Quiet bool
	// DisablePruneTags keeps --prune-tags out of fetch even on capable versions.
	DisablePruneTags bool
	// RequireLFS marks the caller as depending on LFS support. A missing
	// extension becomes fatal and the known-bad point release is flagged.
	RequireLFS bool
	// EnforceMinimum makes an undetermined or below-floor git version fatal.
	EnforceMinimum bool
}

// Session holds the detected tool installations plus the policies attached to
// this repository-operation lifetime. It is immutable after Load and safe for
// concurrent reads.
type Session struct {
	gitPath      string
	gitVersion   gitver.Version
	gitVersionOK bool

	lfsPath      string
	lfsVersion   gitver.Version
	lfsVersionOK bool

	runner proc.Runner
	sink   telemetry.Sink
	policy retry.Policy

	env              map[string]string
	quiet            bool
	disablePruneTags bool

	advisories []string
}

// Load resolves and probes the installed tools once, enforces version floors,
// and returns the read-only session all subsequent operations consult.
func Load(ctx context.Context, opts LoadOptions) (*Session, error) {
	if opts.Runner == nil {
		opts.Runner = proc.NewExecRunner()
	}
	if opts.Resolver == nil {
		opts.Resolver = DefaultResolver()
	}
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.NoopSink{}
	}
	if opts.RetryPolicy.Validate() != nil {
		opts.RetryPolicy = retry.DefaultPolicy()
	}

	s := &Session{
		runner:           opts.Runner,
		sink:             opts.Telemetry,
		policy:           opts.RetryPolicy,
		env:              opts.Env,
		quiet:            opts.Quiet,
		disablePruneTags: opts.DisablePruneTags,
	}

	gitPath, err := opts.Resolver.GitPath()
	if err != nil {
		return nil, errors.GitNotFound(err)
	}
	s.gitPath = gitPath

	s.gitVersion, s.gitVersionOK = s.probeVersion(ctx, gitPath)
	switch {
	case !s.gitVersionOK && opts.EnforceMinimum:
		return nil, errors.GitVersionUndetermined()
	case !s.gitVersionOK:
		s.advise("unable to determine git version; version-gated flags are disabled")
	case !s.gitVersion.AtLeast(minimumGitVersion) && opts.EnforceMinimum:
		return nil, errors.GitVersionTooOld(s.gitVersion.String(), minimumGitVersion.String())
	case !s.gitVersion.AtLeast(recommendedGitVersion):
		s.advise(fmt.Sprintf("git %s is below the recommended minimum %s; consider upgrading", s.gitVersion, recommendedGitVersion))
	}

	lfsPath, present := opts.Resolver.LFSPath()
	switch {
	case !present && opts.RequireLFS:
		return nil, errors.New(errors.CategoryLFS, errors.SeverityFatal, "git-lfs was requested but is not installed")
	case !present:
		slog.Debug("git-lfs not installed; LFS operations unavailable", logfields.Component("gitcli"))
	default:
		s.lfsPath = lfsPath
		s.lfsVersion, s.lfsVersionOK = s.probeVersion(ctx, lfsPath)
		if !s.lfsVersionOK {
			s.advise("unable to determine git-lfs version")
		} else if opts.RequireLFS && s.lfsVersion.Equal(brokenLFSVersion) {
			s.advise(fmt.Sprintf("git-lfs %s has a known checkout defect; upgrade to 2.7.2 or newer", s.lfsVersion))
		}
	}

	slog.Info("git session loaded",
		logfields.Path(s.gitPath),
		logfields.Version(s.gitVersionString()),
		slog.String("lfs_version", s.lfsVersionString()),
	)
	return s, nil
}

// probeVersion runs the tool with a version argument and extracts the
// reported version. Every failure mode resolves to "undetermined"; probing
// never returns an error.
func (s *Session) probeVersion(ctx context.Context, toolPath string) (gitver.Version, bool) {
	exit, lines, err := s.runTool(ctx, "", toolPath, []string{"version"}, collect)
	if err != nil || exit != 0 {
		return gitver.Version{}, false
	}
	return extractVersion(lines)
}

func (s *Session) advise(msg string) {
	s.advisories = append(s.advisories, msg)
	slog.Warn(msg, logfields.Component("gitcli"))
}

// GitPath returns the resolved git executable path.
func (s *Session) GitPath() string { return s.gitPath }

// GitVersion returns the probed git version; ok is false when undetermined.
func (s *Session) GitVersion() (gitver.Version, bool) { return s.gitVersion, s.gitVersionOK }

// LFSVersion returns the probed git-lfs version; ok is false when the
// extension is absent or its version is undetermined.
func (s *Session) LFSVersion() (gitver.Version, bool) { return s.lfsVersion, s.lfsVersionOK }

// LFSAvailable reports whether the LFS extension was found at load time.
func (s *Session) LFSAvailable() bool { return s.lfsPath != "" }

// Advisories returns the non-fatal warnings collected during load.
func (s *Session) Advisories() []string { return s.advisories }

func (s *Session) gitVersionString() string {
	if !s.gitVersionOK {
		return "unknown"
	}
	return s.gitVersion.String()
}

func (s *Session) lfsVersionString() string {
	if !s.lfsVersionOK {
		return "unknown"
	}
	return s.lfsVersion.String()
}

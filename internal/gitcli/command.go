package gitcli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/gitdriver/internal/logfields"
	"git.home.luguber.info/inful/gitdriver/internal/proc"
	"git.home.luguber.info/inful/gitdriver/internal/version"
)

// captureMode selects what happens to subprocess stdout lines.
type captureMode int

const (
	// stream forwards every stdout line to the logger immediately; nothing is retained.
	stream captureMode = iota
	// collect buffers stdout lines for the caller. Collected output may carry
	// credential-bearing values (config URLs), so it is never logged verbatim.
	// Stderr is streamed to the logger in both modes so diagnostics survive.
	collect
)

// environment merges the ambient process environment with the fixed override
// set and the session-level overrides. Session overrides win on collision.
func (s *Session) environment() []string {
	overrides := map[string]string{
		// Never let git prompt for credentials under an unattended worker.
		"GIT_TERMINAL_PROMPT": "0",
	}
	if s.gitVersionOK {
		overrides["GIT_HTTP_USER_AGENT"] = fmt.Sprintf("git/%s (gitdriver %s)", s.gitVersion, version.Version)
	}
	for k, v := range s.env {
		overrides[k] = v
	}
	return mergeEnv(os.Environ(), overrides)
}

func mergeEnv(base []string, overrides map[string]string) []string {
	seen := make(map[string]bool, len(overrides))
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if ok {
			if v, hit := overrides[key]; hit {
				out = append(out, key+"="+v)
				seen[key] = true
				continue
			}
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		if !seen[k] {
			out = append(out, k+"="+v)
		}
	}
	return out
}

// runGit executes one git invocation: leading args, then the command token,
// then its options. Exactly one subprocess per call; retry lives a layer above.
func (s *Session) runGit(ctx context.Context, dir string, leading []string, command string, options []string, mode captureMode) (int, []string, error) {
	args := make([]string, 0, len(leading)+1+len(options))
	args = append(args, leading...)
	args = append(args, command)
	args = append(args, options...)
	return s.runTool(ctx, dir, s.gitPath, args, mode)
}

// runTool is the execution gateway. The exit code is returned uninterpreted;
// the error is reserved for spawn failures and cancellation.
func (s *Session) runTool(ctx context.Context, dir, toolPath string, args []string, mode captureMode) (int, []string, error) {
	slog.Debug("running tool",
		logfields.Path(toolPath),
		slog.String("args", strings.Join(args, " ")),
		slog.String("dir", dir),
	)

	var collected []string
	req := proc.Request{
		Dir:  dir,
		Path: toolPath,
		Args: args,
		Env:  s.environment(),
		OnStderr: func(line string) {
			slog.Info(line, logfields.Component("git-stderr"))
		},
	}
	if mode == collect {
		req.OnStdout = func(line string) { collected = append(collected, line) }
	} else {
		req.OnStdout = func(line string) {
			slog.Info(line, logfields.Component("git"))
		}
	}

	exit, err := s.runner.Run(ctx, req)
	return exit, collected, err
}

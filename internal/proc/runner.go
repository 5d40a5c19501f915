// Package proc is the subprocess boundary for the git driver. It defines the
// Runner capability the command layer depends on, plus the os/exec-backed
// implementation used in production. Tests substitute a scripted runner so no
// real process is ever spawned.
package proc

import "context"

// Request describes one subprocess invocation.
type Request struct {
	// Dir is the working directory; empty means the caller's current directory.
	Dir string
	// Path is the absolute path of the executable to run.
	Path string
	// Args are the command-line arguments, not including the executable itself.
	Args []string
	// Env is the complete environment for the child. Nil inherits the parent
	// environment unchanged.
	Env []string
	// OnStdout receives each standard-output line as it is emitted. May be nil.
	OnStdout func(line string)
	// OnStderr receives each standard-error line as it is emitted. May be nil.
	OnStderr func(line string)
}

// Runner starts a subprocess, forwards its output line by line, and reports
// the exit code. A non-zero exit code is not an error at this layer; the
// returned error is reserved for start failures and cancellation. When the
// context is cancelled mid-run, already-buffered output lines are still
// delivered to the callbacks before the context error is surfaced.
type Runner interface {
	Run(ctx context.Context, req Request) (int, error)
}

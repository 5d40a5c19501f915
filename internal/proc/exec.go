package proc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// scanBufferSize bounds a single output line; git progress lines stay far
// below this, but pathological output must not abort the scan.
const scanBufferSize = 1 << 20

// ExecRunner runs subprocesses with os/exec.
type ExecRunner struct{}

// NewExecRunner returns the production Runner implementation.
func NewExecRunner() *ExecRunner { return &ExecRunner{} }

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, req Request) (int, error) {
	cmd := exec.CommandContext(ctx, req.Path, req.Args...)
	cmd.Dir = req.Dir
	cmd.Env = req.Env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start %s: %w", req.Path, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		forwardLines(stdout, req.OnStdout)
	}()
	go func() {
		defer wg.Done()
		forwardLines(stderr, req.OnStderr)
	}()

	// Drain both streams before Wait so buffered lines reach the callbacks
	// even when the context killed the child.
	wg.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return exitCode(waitErr), ctx.Err()
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait %s: %w", req.Path, waitErr)
	}
	return 0, nil
}

func forwardLines(r io.Reader, fn func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), scanBufferSize)
	for scanner.Scan() {
		if fn != nil {
			fn(scanner.Text())
		}
	}
}

func exitCode(waitErr error) int {
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

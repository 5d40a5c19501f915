package gitcli

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/gitdriver/internal/proc"
)

// scriptedRunner is a deterministic stand-in for the process collaborator:
// it replays canned exit codes and output lines without spawning anything,
// and records every request for assertions.
type scriptedRunner struct {
	mu        sync.Mutex
	calls     []proc.Request
	responses []scriptedResponse
	// onReturn runs after a response is replayed; used to fire cancellation
	// at precise points in a retry loop.
	onReturn func(call int)
}

type scriptedResponse struct {
	exit   int
	stdout []string
	stderr []string
	err    error
}

func (r *scriptedRunner) Run(_ context.Context, req proc.Request) (int, error) {
	r.mu.Lock()
	r.calls = append(r.calls, req)
	call := len(r.calls)
	var resp scriptedResponse
	if len(r.responses) > 0 {
		resp = r.responses[0]
		r.responses = r.responses[1:]
	}
	r.mu.Unlock()

	for _, line := range resp.stdout {
		if req.OnStdout != nil {
			req.OnStdout(line)
		}
	}
	for _, line := range resp.stderr {
		if req.OnStderr != nil {
			req.OnStderr(line)
		}
	}
	if r.onReturn != nil {
		r.onReturn(call)
	}
	return resp.exit, resp.err
}

func (r *scriptedRunner) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *scriptedRunner) callArgs(i int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[i].Args
}

// fixedResolver returns canned tool paths.
type fixedResolver struct {
	gitPath string
	gitErr  error
	lfsPath string
	hasLFS  bool
}

func (f fixedResolver) GitPath() (string, error) { return f.gitPath, f.gitErr }
func (f fixedResolver) LFSPath() (string, bool)  { return f.lfsPath, f.hasLFS }

// countingSink records telemetry events for cardinality assertions.
type countingSink struct {
	mu     sync.Mutex
	events []string
	props  []map[string]string
	// onTrack runs after recording; used to cancel mid-loop.
	onTrack func(n int)
}

func (c *countingSink) Track(event string, props map[string]string) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.props = append(c.props, props)
	n := len(c.events)
	c.mu.Unlock()
	if c.onTrack != nil {
		c.onTrack(n)
	}
}

func (c *countingSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Package retry holds the backoff policy used for idempotent network-bound
// git operations. Delays are jittered: each retry draws a fresh uniform
// random duration from a closed interval, rather than growing with the
// attempt number, so concurrent workers hitting the same remote desynchronize.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	MinDelay    time.Duration // lower bound of the jitter interval
	MaxDelay    time.Duration // upper bound of the jitter interval
	MaxAttempts int           // total attempts including the first
}

// DefaultPolicy returns the policy used for fetch-class operations:
// three attempts total with a backoff drawn uniformly from [1s, 10s].
func DefaultPolicy() Policy {
	return Policy{MinDelay: time.Second, MaxDelay: 10 * time.Second, MaxAttempts: 3}
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(minDelay, maxDelay time.Duration, maxAttempts int) Policy {
	p := DefaultPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	if minDelay > 0 {
		p.MinDelay = minDelay
	}
	if maxDelay > 0 {
		p.MaxDelay = maxDelay
	}
	if p.MinDelay > p.MaxDelay {
		p.MinDelay = p.MaxDelay
	}
	return p
}

// Delay draws a fresh backoff duration from the closed interval
// [MinDelay, MaxDelay]. Each call is an independent draw.
func (p Policy) Delay() time.Duration {
	if p.MaxDelay <= p.MinDelay {
		return p.MinDelay
	}
	return p.MinDelay + time.Duration(rand.Int63n(int64(p.MaxDelay-p.MinDelay)+1))
}

// Sleep suspends for one jittered delay, honoring cancellation. When the
// context fires during the delay the context error is returned and the
// caller must not issue another attempt.
func (p Policy) Sleep(ctx context.Context) error {
	timer := time.NewTimer(p.Delay())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.MinDelay <= 0 {
		return fmt.Errorf("min delay must be >0")
	}
	if p.MaxDelay < p.MinDelay {
		return fmt.Errorf("max delay cannot be below min delay")
	}
	if p.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be >0")
	}
	return nil
}

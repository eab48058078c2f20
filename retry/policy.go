// Package retry provides policy-driven execution of fallible operations:
// exponential backoff between attempts, pluggable failure classification,
// and a choice between propagating a terminal failure or suppressing it
// behind a default value.
package retry

import (
	"fmt"
	"math"
	"time"
)

// Policy describes how an operation is retried. The zero value stands
// for Default. A Policy is a plain value and is never mutated by the
// executor, so a single instance may back any number of concurrent
// executions.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt,
	// so an operation is invoked at most MaxRetries+1 times.
	MaxRetries int
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration
	// BackoffFactor is the multiplicative growth of the delay per retry.
	// Must be >= 1.
	BackoffFactor float64
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// RetryIf classifies a failure as retryable. When nil,
	// DefaultRetryable is used.
	RetryIf func(error) bool
}

// Default mirrors the historical tuning for unclassified call sites:
// up to 3 retries, starting at 1s and doubling, capped at a minute.
var Default = Policy{
	MaxRetries:    3,
	InitialDelay:  time.Second,
	BackoffFactor: 2.0,
	MaxDelay:      60 * time.Second,
}

// IsZero reports whether the policy is entirely unset. The executor
// substitutes Default for a zero policy, so call sites without an
// opinion can pass Policy{}.
func (p Policy) IsZero() bool {
	return p.MaxRetries == 0 &&
		p.InitialDelay == 0 &&
		p.BackoffFactor == 0 &&
		p.MaxDelay == 0 &&
		p.RetryIf == nil
}

// Validate reports whether the policy invariants hold.
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("retry: MaxRetries must be >= 0, got %d", p.MaxRetries)
	}
	if p.InitialDelay < 0 {
		return fmt.Errorf("retry: InitialDelay must be >= 0, got %v", p.InitialDelay)
	}
	if p.BackoffFactor < 1 {
		return fmt.Errorf("retry: BackoffFactor must be >= 1, got %g", p.BackoffFactor)
	}
	if p.MaxDelay < p.InitialDelay {
		return fmt.Errorf("retry: MaxDelay %v is below InitialDelay %v", p.MaxDelay, p.InitialDelay)
	}
	return nil
}

// DelayForAttempt returns the delay before retry n (0-based retry index):
// min(InitialDelay * BackoffFactor^n, MaxDelay). Deterministic, no jitter.
// The first attempt incurs no delay and must not be passed here.
func (p Policy) DelayForAttempt(n int) time.Duration {
	d := float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(n))
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// IsRetryable classifies a failure using the policy's predicate,
// falling back to DefaultRetryable.
func (p Policy) IsRetryable(err error) bool {
	if p.RetryIf != nil {
		return p.RetryIf(err)
	}
	return DefaultRetryable(err)
}

// WithRetryIf returns a copy of the policy with a narrowed predicate.
func (p Policy) WithRetryIf(fn func(error) bool) Policy {
	p.RetryIf = fn
	return p
}

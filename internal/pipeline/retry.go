package pipeline

import (
	"context"
	"time"

	"syngen/internal/collab"
)

// RetryState is the phase of one synthesis attempt chain. Modeling retry as
// an explicit machine keeps attempt counts and transient/permanent
// classification observable independently of the pipeline around it.
type RetryState int

const (
	StateIdle RetryState = iota
	StateAttempting
	StateRetrying
	StateSucceeded
	StateFailed
)

func (s RetryState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAttempting:
		return "attempting"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Retrier drives one strictly sequential synthesis chain: transient failures
// repeat the call with identical inputs up to maxAttempts total attempts,
// permanent failures stop immediately. A Retrier belongs to exactly one
// context chain and must not be shared.
type Retrier struct {
	maxAttempts int
	pause       time.Duration
	state       RetryState
	attempts    int
}

// NewRetrier creates a chain budgeted at maxAttempts total attempts with the
// given pause between retries.
func NewRetrier(maxAttempts int, pause time.Duration) *Retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{maxAttempts: maxAttempts, pause: pause, state: StateIdle}
}

// State returns the chain's current phase.
func (r *Retrier) State() RetryState { return r.state }

// Attempts returns how many attempts the chain has consumed.
func (r *Retrier) Attempts() int { return r.attempts }

// Do runs fn until it succeeds, fails permanently, or exhausts the attempt
// budget. ctx gates only the pauses between attempts: cancellation stops
// issuing new attempts but never cuts one short (fn owns its own timeout).
func (r *Retrier) Do(ctx context.Context, fn func() (*collab.Artifact, error)) (*collab.Artifact, error) {
	r.state = StateAttempting
	for {
		r.attempts++
		artifact, err := fn()
		if err == nil {
			r.state = StateSucceeded
			return artifact, nil
		}
		if !collab.IsTransient(err) || r.attempts >= r.maxAttempts {
			r.state = StateFailed
			return nil, err
		}
		r.state = StateRetrying
		select {
		case <-ctx.Done():
			r.state = StateFailed
			return nil, ctx.Err()
		case <-time.After(r.pause):
		}
		r.state = StateAttempting
	}
}

package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"syngen/internal/collab"
)

func transientErr() error {
	return &collab.SynthesisError{Transient: true, Err: errors.New("server overloaded")}
}

func permanentErr() error {
	return &collab.SynthesisError{Transient: false, Err: errors.New("invalid input")}
}

func TestRetrier_AlwaysTransientExhaustsBudget(t *testing.T) {
	r := NewRetrier(3, 0)
	calls := 0
	_, err := r.Do(context.Background(), func() (*collab.Artifact, error) {
		calls++
		return nil, transientErr()
	})
	if err == nil {
		t.Fatal("Do should fail after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want exactly 3", calls)
	}
	if r.Attempts() != 3 {
		t.Errorf("Attempts = %d, want 3", r.Attempts())
	}
	if r.State() != StateFailed {
		t.Errorf("State = %v, want failed", r.State())
	}
}

func TestRetrier_PermanentFailsImmediately(t *testing.T) {
	r := NewRetrier(3, 0)
	calls := 0
	_, err := r.Do(context.Background(), func() (*collab.Artifact, error) {
		calls++
		return nil, permanentErr()
	})
	if err == nil {
		t.Fatal("Do should fail")
	}
	if calls != 1 {
		t.Errorf("calls = %d, permanent failures must not retry", calls)
	}
	if r.State() != StateFailed {
		t.Errorf("State = %v, want failed", r.State())
	}
}

func TestRetrier_TransientThenSuccess(t *testing.T) {
	r := NewRetrier(3, 0)
	calls := 0
	artifact, err := r.Do(context.Background(), func() (*collab.Artifact, error) {
		calls++
		if calls == 1 {
			return nil, transientErr()
		}
		return &collab.Artifact{MIME: "image/png", Data: []byte("img")}, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if artifact == nil {
		t.Fatal("artifact missing after eventual success")
	}
	if r.Attempts() != 2 {
		t.Errorf("Attempts = %d, want 2", r.Attempts())
	}
	if r.State() != StateSucceeded {
		t.Errorf("State = %v, want succeeded", r.State())
	}
}

func TestRetrier_CancelStopsNewAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetrier(3, time.Hour)
	calls := 0
	_, err := r.Do(ctx, func() (*collab.Artifact, error) {
		calls++
		cancel()
		return nil, transientErr()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, cancellation must stop new attempts", calls)
	}
	if r.State() != StateFailed {
		t.Errorf("State = %v, want failed", r.State())
	}
}

func TestRetrier_StateStrings(t *testing.T) {
	want := map[RetryState]string{
		StateIdle:       "idle",
		StateAttempting: "attempting",
		StateRetrying:   "retrying",
		StateSucceeded:  "succeeded",
		StateFailed:     "failed",
	}
	for state, s := range want {
		if state.String() != s {
			t.Errorf("%d.String() = %q, want %q", state, state.String(), s)
		}
	}
}

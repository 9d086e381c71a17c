package collab

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// ContextGenerationError marks a failed or unparsable description call.
// It is non-fatal to the run: the image proceeds with zero contexts.
type ContextGenerationError struct {
	Image string
	Err   error
}

func (e *ContextGenerationError) Error() string {
	return fmt.Sprintf("collab: context generation for %q: %v", e.Image, e.Err)
}

func (e *ContextGenerationError) Unwrap() error { return e.Err }

// SynthesisError marks a failed synthesis call. Transient failures are
// eligible for retry with identical inputs; permanent ones are not.
type SynthesisError struct {
	Transient bool
	Err       error
}

func (e *SynthesisError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("collab: %s synthesis failure: %v", kind, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// JudgeCallError marks a judge call that produced no usable verdict.
// The caller must treat it as an authoritative discard, never a retry.
type JudgeCallError struct {
	Err error
}

func (e *JudgeCallError) Error() string {
	return fmt.Sprintf("collab: judge call: %v", e.Err)
}

func (e *JudgeCallError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a synthesis failure worth retrying.
func IsTransient(err error) bool {
	var se *SynthesisError
	return errors.As(err, &se) && se.Transient
}

// classifySynthesis wraps a raw synthesis call error with its retry class.
// Server-side errors, rate limits and timeouts are transient; anything the
// caller sent (bad input, content rejection) is permanent.
func classifySynthesis(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &SynthesisError{Transient: true, Err: err}
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return &SynthesisError{Transient: true, Err: err}
		}
		return &SynthesisError{Transient: false, Err: err}
	}
	// Unclassifiable transport errors get one more chance.
	return &SynthesisError{Transient: true, Err: err}
}

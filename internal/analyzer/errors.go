package analyzer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPolicyText rejects empty or whitespace-only input. The
	// completion service is never invoked for it.
	ErrEmptyPolicyText = errors.New("policy text is empty")

	// ErrMalformedReply means no valid JSON object could be recovered from
	// the model's reply.
	ErrMalformedReply = errors.New("model reply contains no valid JSON object")
)

// UpstreamError wraps a completion-service failure. It is surfaced as-is;
// the pipeline never retries.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion service: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Outcome labels one analysis for status mapping, audit events and metrics.
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeEmptyInput      Outcome = "empty_input"
	OutcomeUpstreamFailure Outcome = "upstream_failure"
	OutcomeMalformedReply  Outcome = "malformed_reply"
	OutcomeUnexpected      Outcome = "unexpected_failure"
)

// ClassifyError maps an Analyze error to its outcome category. Anything the
// taxonomy does not recognize is an unexpected failure.
func ClassifyError(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}
	var upstream *UpstreamError
	switch {
	case errors.Is(err, ErrEmptyPolicyText):
		return OutcomeEmptyInput
	case errors.Is(err, ErrMalformedReply):
		return OutcomeMalformedReply
	case errors.As(err, &upstream):
		return OutcomeUpstreamFailure
	default:
		return OutcomeUnexpected
	}
}

package agent

import "errors"

var (
	// ErrLoopBoundExceeded marks a turn that hit the configured maximum number
	// of reasoner/executor round-trips. The conversation keeps whatever partial
	// assistant and tool messages occurred, for diagnosability.
	ErrLoopBoundExceeded = errors.New("exceeded maximum interaction turns")

	// ErrMalformedDecision marks a model response that is neither a clean final
	// answer nor a well-formed tool request (e.g. no choices at all). It aborts
	// the turn like any other reasoner failure.
	ErrMalformedDecision = errors.New("malformed model decision")
)

// ReasonerError wraps a failure of the external model call itself. It aborts
// the current turn: nothing is appended for the failed call.
type ReasonerError struct {
	Err error
}

func (e *ReasonerError) Error() string { return "reasoner call failed: " + e.Err.Error() }

func (e *ReasonerError) Unwrap() error { return e.Err }

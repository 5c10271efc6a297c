package loan

import (
	"errors"
	"fmt"

	"github.com/starfinance/backend/internal/models"
)

var (
	// ErrNotFound is returned when no application carries the request id
	ErrNotFound = errors.New("loan application not found")
	// ErrInvalidStatus is returned when the target status is outside the enum
	ErrInvalidStatus = errors.New("invalid application status")
	// ErrUnknownFlag is returned when a flag is outside the risk catalog
	ErrUnknownFlag = errors.New("unknown risk flag")
	// ErrConflict is returned when a concurrent writer updated the
	// application first; the caller should re-read and retry.
	ErrConflict = errors.New("application was modified concurrently")
	// ErrIdentityNotVerified is returned when the referenced identity
	// record is absent, belongs to another subject, or is not VERIFIED.
	ErrIdentityNotVerified = errors.New("identity record is not verified")
	// ErrEvaluationNotAllowed is returned when an evaluation is recorded
	// before the application reached the evaluation stage, or after it
	// reached a terminal state.
	ErrEvaluationNotAllowed = errors.New("application is not in an evaluable stage")
)

// ValidationError reports malformed or missing input on create
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a target status not reachable from the
// current one along the lifecycle graph
type InvalidTransitionError struct {
	From models.ApplicationStatus
	To   models.ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// ApprovalBlockedError reports the risk-flag veto on approval. It carries
// the blocking flags so the officer knows what to clear.
type ApprovalBlockedError struct {
	Flags models.FlagList
}

func (e *ApprovalBlockedError) Error() string {
	return fmt.Sprintf("approval blocked by %d risk flag(s)", len(e.Flags))
}

package workflow

import "errors"

var (
	// ErrUnknownProtocolType is returned when no workflow is registered for a protocol type
	ErrUnknownProtocolType = errors.New("unknown protocol type")

	// ErrInvalidStep is returned when a protocol's stored step is not part of
	// its type's workflow (data corruption guard)
	ErrInvalidStep = errors.New("invalid workflow step")

	// ErrInvalidTransition is returned when the target step is not reachable
	// from the current step
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnauthorized is returned when the actor lacks the role required by
	// the target step
	ErrUnauthorized = errors.New("actor not authorized for step")

	// ErrMissingCeremonyDate is returned when approving a ceremony-bearing
	// protocol without a ceremony date
	ErrMissingCeremonyDate = errors.New("ceremony date is required")

	// ErrMissingDecision is returned when an approval step is entered without
	// an approved flag in the payload
	ErrMissingDecision = errors.New("approval decision is required")

	// ErrActionFailed wraps any failure raised by a step action handler
	ErrActionFailed = errors.New("step action failed")

	// ErrConcurrentTransition is returned when another request advanced the
	// protocol between load and persist (step-name compare-and-swap failed)
	ErrConcurrentTransition = errors.New("protocol advanced concurrently")
)

// ActionError carries a handler or domain-service failure through the
// orchestrator. errors.Is matches both ErrActionFailed and the underlying
// cause chain.
type ActionError struct {
	Cause error
}

func (e *ActionError) Error() string {
	return "step action failed: " + e.Cause.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

func (e *ActionError) Is(target error) bool {
	return target == ErrActionFailed
}

// Domain errors raised by the services and propagated as ErrActionFailed
// through the orchestrator.
var (
	ErrIneligibleMember    = errors.New("member not eligible")
	ErrDuplicateAssignment = errors.New("duplicate position assignment")
	ErrHonorAlreadyGranted = errors.New("honor already granted")
	ErrMemberNotInAssembly = errors.New("member does not belong to assembly")
)

package workflow

// Status is the protocol status derived from its current step
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPending         Status = "PENDING"
	StatusUnderReview     Status = "UNDER_REVIEW"
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusCompleted       Status = "COMPLETED"
	StatusRejected        Status = "REJECTED"
)

// stepStatuses is the fixed step-to-status table. Steps absent from the
// table map to PENDING.
var stepStatuses = map[Step]Status{
	StepCreation:         StatusDraft,
	StepAwaitingApproval: StatusUnderReview,
	StepApproval:         StatusUnderReview,
	StepHonorsApproval:   StatusUnderReview,
	StepFinalApproval:    StatusUnderReview,
	StepFeeDefinition:    StatusPending,
	StepAwaitingPayment:  StatusAwaitingPayment,
	StepCompleted:        StatusCompleted,
	StepRejected:         StatusRejected,
}

// StatusFor returns the status a protocol carries while in the given step
func StatusFor(step Step) Status {
	if st, ok := stepStatuses[step]; ok {
		return st
	}
	return StatusPending
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

package workflow

// Step is a named stage in a protocol workflow
type Step string

const (
	StepCreation         Step = "CREATION"
	StepAwaitingApproval Step = "AWAITING_APPROVAL"
	StepApproval         Step = "APPROVAL"
	StepHonorsApproval   Step = "HONORS_APPROVAL"
	StepFeeDefinition    Step = "FEE_DEFINITION"
	StepAwaitingPayment  Step = "AWAITING_PAYMENT"
	StepFinalApproval    Step = "FINAL_APPROVAL"
	StepCompleted        Step = "COMPLETED"
	StepRejected         Step = "REJECTED"
)

var validSteps = map[Step]bool{
	StepCreation:         true,
	StepAwaitingApproval: true,
	StepApproval:         true,
	StepHonorsApproval:   true,
	StepFeeDefinition:    true,
	StepAwaitingPayment:  true,
	StepFinalApproval:    true,
	StepCompleted:        true,
	StepRejected:         true,
}

// IsValid returns true if the step belongs to the closed step set
func (s Step) IsValid() bool {
	return validSteps[s]
}

// String returns the string representation of the step
func (s Step) String() string {
	return string(s)
}

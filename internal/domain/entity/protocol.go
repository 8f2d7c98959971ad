package entity

import "time"

// ProtocolType identifies which workflow a protocol moves through
type ProtocolType string

const (
	TypeInitiation       ProtocolType = "INITIATION"
	TypeMajority         ProtocolType = "MAJORITY"
	TypeRemoval          ProtocolType = "REMOVAL"
	TypePositionAssembly ProtocolType = "POSITION_ASSEMBLY"
	TypePositionCouncil  ProtocolType = "POSITION_COUNCIL"
	TypeHonorOfTheYear   ProtocolType = "HONOR_OF_THE_YEAR"
	TypeHeartOfColors    ProtocolType = "HEART_OF_COLORS"
	TypeGrandCross       ProtocolType = "GRAND_CROSS"
)

var validProtocolTypes = map[ProtocolType]bool{
	TypeInitiation:       true,
	TypeMajority:         true,
	TypeRemoval:          true,
	TypePositionAssembly: true,
	TypePositionCouncil:  true,
	TypeHonorOfTheYear:   true,
	TypeHeartOfColors:    true,
	TypeGrandCross:       true,
}

// IsValid returns true if the protocol type is part of the closed enum
func (t ProtocolType) IsValid() bool {
	return validProtocolTypes[t]
}

// IsHonor returns true for the three honor-granting protocol types
func (t ProtocolType) IsHonor() bool {
	return t == TypeHonorOfTheYear || t == TypeHeartOfColors || t == TypeGrandCross
}

// String returns the string representation of the protocol type
func (t ProtocolType) String() string {
	return string(t)
}

// Protocol represents an approval request moving through a workflow.
// MemberData holds the type-specific payload as JSON: a list of new-member
// records for initiation, selected member IDs for majority/honors, or a
// position-to-member map for position assignment.
type Protocol struct {
	ID               int64        `json:"id"`
	Code             string       `json:"code"`
	Type             ProtocolType `json:"type"`
	CurrentStep      string       `json:"current_step"`
	Status           string       `json:"status"`
	AssemblyID       int64        `json:"assembly_id"`
	RequesterID      int64        `json:"requester_id"`
	ApproverID       *int64       `json:"approver_id,omitempty"`
	MemberData       string       `json:"member_data"`
	CeremonyDate     *time.Time   `json:"ceremony_date,omitempty"`
	FeeCents         *int64       `json:"fee_cents,omitempty"`
	FeeNotes         string       `json:"fee_notes,omitempty"`
	ReceiptPath      string       `json:"receipt_path,omitempty"`
	PaymentConfirmed bool         `json:"payment_confirmed"`
	Feedback         string       `json:"feedback,omitempty"`
	ApprovedAt       *time.Time   `json:"approved_at,omitempty"`
	ArchivedAt       *time.Time   `json:"archived_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NewMemberEntry is one candidate record inside an initiation protocol's payload
type NewMemberEntry struct {
	Name      string `json:"name"`
	CPF       string `json:"cpf"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date,omitempty"`
}

package entity

import "time"

// Member status constants
const (
	MemberStatusCandidate  = "CANDIDATE"
	MemberStatusActive     = "ACTIVE"
	MemberStatusOnLeave    = "ON_LEAVE"
	MemberStatusMajority   = "MAJORITY"
	MemberStatusDischarged = "DISCHARGED"
)

// Member type constants. The type classification governs which rules apply:
// position eligibility, honor eligibility and ceremony participation.
const (
	MemberTypeActiveGirl = "ACTIVE_GIRL"
	MemberTypeMajority   = "MAJORITY"
	MemberTypeMasonUncle = "MASON_UNCLE"
	MemberTypeStarAunt   = "STAR_AUNT"
	MemberTypeUncle      = "UNCLE"
	MemberTypeAunt       = "AUNT"
)

// Masonic grade constants for MASON_UNCLE members
const (
	GradeApprentice = "APPRENTICE"
	GradeFellow     = "FELLOW"
	GradeMaster     = "MASTER"
)

// Member is a person record owned by an assembly
type Member struct {
	ID             int64      `json:"id"`
	AssemblyID     int64      `json:"assembly_id"`
	AccountID      *int64     `json:"account_id,omitempty"`
	Name           string     `json:"name"`
	CPF            string     `json:"cpf"`
	Email          string     `json:"email"`
	MemberNumber   string     `json:"member_number"`
	Status         string     `json:"status"`
	Type           string     `json:"type"`
	Grade          string     `json:"grade,omitempty"`
	InitiationDate *time.Time `json:"initiation_date,omitempty"`
	MajorityDate   *time.Time `json:"majority_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// EligibleForMajority reports whether the member can go through the
// majority ceremony: an active ACTIVE_GIRL with no prior majority date.
func (m *Member) EligibleForMajority() bool {
	return m.Type == MemberTypeActiveGirl &&
		m.Status == MemberStatusActive &&
		m.MajorityDate == nil
}

// Adult reports whether the member belongs to one of the adult type
// classifications that may hold council positions.
func (m *Member) Adult() bool {
	switch m.Type {
	case MemberTypeMasonUncle, MemberTypeStarAunt, MemberTypeUncle, MemberTypeAunt:
		return true
	}
	return false
}

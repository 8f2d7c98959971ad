package entity

import "time"

// Position category constants
const (
	PositionCategoryAssembly = "ASSEMBLY"
	PositionCategoryCouncil  = "COUNCIL"
)

// Assembly position type constants
const (
	PositionWorthyAdvisor = "WORTHY_ADVISOR"
	PositionCharity       = "CHARITY"
	PositionHope          = "HOPE"
	PositionFaith         = "FAITH"
	PositionRecorder      = "RECORDER"
	PositionTreasurer     = "TREASURER"
)

// Council position type constants
const (
	PositionPresident     = "PRESIDENT"
	PositionVicePresident = "VICE_PRESIDENT"
	PositionSecretary     = "SECRETARY"
	PositionCouncilMember = "COUNCIL_MEMBER"
)

// adminPositions maps council positions to the admin role they grant on the
// holder's linked account.
var adminPositions = map[string]bool{
	PositionPresident:     true,
	PositionVicePresident: true,
}

// GrantsAdmin returns true if holding the council position grants
// assembly-admin access.
func GrantsAdmin(positionType string) bool {
	return adminPositions[positionType]
}

// PositionAssignment is a time-ranged assignment of one member to one
// position type within one assembly. At most one assignment per
// (assembly, position type) pair may be open at a time.
type PositionAssignment struct {
	ID         int64      `json:"id"`
	AssemblyID int64      `json:"assembly_id"`
	Category   string     `json:"category"`
	Position   string     `json:"position"`
	MemberID   int64      `json:"member_id"`
	ProtocolID *int64     `json:"protocol_id,omitempty"`
	AssignedBy int64      `json:"assigned_by"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Open returns true while the assignment has not been closed
func (p *PositionAssignment) Open() bool {
	return p.EndDate == nil
}

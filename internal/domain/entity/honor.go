package entity

import "time"

// Honor type constants
const (
	HonorOfTheYear     = "HONOR_OF_THE_YEAR"
	HonorHeartOfColors = "HEART_OF_COLORS"
	HonorGrandCross    = "GRAND_CROSS"
)

// LifetimeHonor returns true for honors that may be granted to a member at
// most once across all years.
func LifetimeHonor(honorType string) bool {
	return honorType == HonorHeartOfColors || honorType == HonorGrandCross
}

// HonorForProtocolType maps an honor-granting protocol type to the honor it awards
func HonorForProtocolType(t ProtocolType) (string, bool) {
	switch t {
	case TypeHonorOfTheYear:
		return HonorOfTheYear, true
	case TypeHeartOfColors:
		return HonorHeartOfColors, true
	case TypeGrandCross:
		return HonorGrandCross, true
	}
	return "", false
}

// HonorGrant records one honor awarded to one member in one year
type HonorGrant struct {
	ID         int64     `json:"id"`
	MemberID   int64     `json:"member_id"`
	HonorType  string    `json:"honor_type"`
	Year       int       `json:"year"`
	ProtocolID *int64    `json:"protocol_id,omitempty"`
	GrantedAt  time.Time `json:"granted_at"`
}

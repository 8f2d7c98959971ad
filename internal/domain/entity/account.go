package entity

import "time"

// Role constants for accounts
const (
	RoleAssemblyAdmin      = "ASSEMBLY_ADMIN"
	RoleJurisdictionMember = "JURISDICTION_MEMBER"
	RoleHonorsPresident    = "HONORS_PRESIDENT"
)

// Account is a login-capable user linked to zero or one member record
type Account struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Type         string    `json:"type"`
	Roles        []string  `json:"roles"`
	AssemblyID   *int64    `json:"assembly_id,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasRole returns true if the account holds the given role
func (a *Account) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

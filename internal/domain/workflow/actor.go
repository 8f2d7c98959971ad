package workflow

import "github.com/ordem-digital/protocol-engine/internal/domain/entity"

// Actor is the authenticated account attempting a workflow action, reduced
// to what authorization needs: identity, role set and assembly scope.
type Actor struct {
	AccountID  int64
	Name       string
	Roles      []string
	AssemblyID *int64
}

// HasRole returns true if the actor holds the given role
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole returns true if the actor holds at least one of the given
// roles, or if the role list is empty.
func (a Actor) HasAnyRole(roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if a.HasRole(r) {
			return true
		}
	}
	return false
}

// ScopedTo returns true if the actor may act on protocols of the given
// assembly. Jurisdiction members act across all assemblies; everyone else is
// bound to their own.
func (a Actor) ScopedTo(assemblyID int64) bool {
	if a.HasRole(entity.RoleJurisdictionMember) {
		return true
	}
	return a.AssemblyID != nil && *a.AssemblyID == assemblyID
}

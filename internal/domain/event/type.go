package event

// Type identifies a domain event kind
type Type string

const (
	// TypeProtocolCreated fires when a protocol is created in its initial step
	TypeProtocolCreated Type = "protocol.created"

	// TypeStatusChanged fires after a successful workflow transition commits
	TypeStatusChanged Type = "protocol.status_changed"

	// TypeCredentialIssued fires when initiation creates a member account;
	// the subscriber sends first-access credentials, fire-and-forget
	TypeCredentialIssued Type = "credential.issued"

	// TypeMemberPromoted fires for each member promoted by a majority ceremony
	TypeMemberPromoted Type = "member.promoted"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

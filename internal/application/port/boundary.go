package port

import "context"

// Credential carries first-access credentials for a newly created account
type Credential struct {
	Name         string
	Email        string
	MemberNumber string
	TempPassword string
}

// CredentialNotifier delivers first-access credentials to a new member.
// Delivery is fire-and-forget relative to the transition transaction: a
// failure is logged by the caller and never rolls anything back.
type CredentialNotifier interface {
	SendFirstAccess(ctx context.Context, credential Credential) error
}

// ReceiptInfo describes an inspected payment receipt document
type ReceiptInfo struct {
	Pages    int
	FileSize int64
}

// ReceiptInspector verifies that an uploaded payment receipt is a readable
// document before the awaiting-payment step accepts it.
type ReceiptInspector interface {
	Inspect(path string) (*ReceiptInfo, error)
}

package entity

import "time"

// History action type constants
const (
	HistoryActionCreated    = "CREATED"
	HistoryActionTransition = "TRANSITION"
	HistoryActionCompletion = "COMPLETION"
)

// ProtocolHistory is one entry in the append-only transition journal.
// PreviousState and NewState hold JSON snapshots of the protocol attributes
// before and after the transition. Entries are never mutated or deleted.
type ProtocolHistory struct {
	ID            int64     `json:"id"`
	ProtocolID    int64     `json:"protocol_id"`
	ActorID       int64     `json:"actor_id"`
	ActionType    string    `json:"action_type"`
	Description   string    `json:"description"`
	PreviousState string    `json:"previous_state"`
	NewState      string    `json:"new_state"`
	Note          string    `json:"note,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

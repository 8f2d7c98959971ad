package service

import (
	"encoding/json"
	"fmt"

	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
)

// memberSelection is the MemberData shape for protocols that select
// existing members (majority, removal, honors).
type memberSelection struct {
	MemberIDs []int64 `json:"member_ids"`
}

// newMemberList is the MemberData shape for initiation protocols
type newMemberList struct {
	Members []entity.NewMemberEntry `json:"members"`
}

// positionMap is the MemberData shape for position-assignment protocols
type positionMap struct {
	Assignments map[string]int64 `json:"assignments"`
}

// MemberIDs decodes the selected member IDs from a protocol's payload
func MemberIDs(p *entity.Protocol) ([]int64, error) {
	var sel memberSelection
	if err := json.Unmarshal([]byte(p.MemberData), &sel); err != nil {
		return nil, fmt.Errorf("failed to decode member selection for protocol %d: %w", p.ID, err)
	}
	return sel.MemberIDs, nil
}

// EncodeMemberIDs encodes a member selection back into payload form
func EncodeMemberIDs(ids []int64) (string, error) {
	raw, err := json.Marshal(memberSelection{MemberIDs: ids})
	if err != nil {
		return "", fmt.Errorf("failed to encode member selection: %w", err)
	}
	return string(raw), nil
}

// NewMemberEntries decodes the new-member records from an initiation
// protocol's payload
func NewMemberEntries(p *entity.Protocol) ([]entity.NewMemberEntry, error) {
	var list newMemberList
	if err := json.Unmarshal([]byte(p.MemberData), &list); err != nil {
		return nil, fmt.Errorf("failed to decode new-member list for protocol %d: %w", p.ID, err)
	}
	return list.Members, nil
}

// PositionAssignments decodes the position-to-member map from a
// position-assignment protocol's payload
func PositionAssignments(p *entity.Protocol) (map[string]int64, error) {
	var pm positionMap
	if err := json.Unmarshal([]byte(p.MemberData), &pm); err != nil {
		return nil, fmt.Errorf("failed to decode position assignments for protocol %d: %w", p.ID, err)
	}
	return pm.Assignments, nil
}

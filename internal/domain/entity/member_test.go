package entity

import (
	"testing"
	"time"
)

func TestEligibleForMajority(t *testing.T) {
	past := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		member Member
		want   bool
	}{
		{"active girl", Member{Type: MemberTypeActiveGirl, Status: MemberStatusActive}, true},
		{"on leave", Member{Type: MemberTypeActiveGirl, Status: MemberStatusOnLeave}, false},
		{"already majority", Member{Type: MemberTypeActiveGirl, Status: MemberStatusActive, MajorityDate: &past}, false},
		{"adult member", Member{Type: MemberTypeAunt, Status: MemberStatusActive}, false},
		{"discharged", Member{Type: MemberTypeActiveGirl, Status: MemberStatusDischarged}, false},
	}

	for _, tt := range tests {
		if got := tt.member.EligibleForMajority(); got != tt.want {
			t.Errorf("%s: EligibleForMajority() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestAdult(t *testing.T) {
	tests := []struct {
		memberType string
		want       bool
	}{
		{MemberTypeMasonUncle, true},
		{MemberTypeStarAunt, true},
		{MemberTypeUncle, true},
		{MemberTypeAunt, true},
		{MemberTypeActiveGirl, false},
		{MemberTypeMajority, false},
	}

	for _, tt := range tests {
		m := Member{Type: tt.memberType}
		if got := m.Adult(); got != tt.want {
			t.Errorf("Adult() for %s = %v, want %v", tt.memberType, got, tt.want)
		}
	}
}

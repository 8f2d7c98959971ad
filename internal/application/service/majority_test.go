package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
)

func TestProcessCeremony(t *testing.T) {
	members := newMockMemberRepo()
	accounts := newMockAccountRepo()
	logger, _ := zap.NewDevelopment()
	svc := NewMajorityService(members, accounts, logger)

	account := accounts.add(&entity.Account{Name: "Ana", Email: "ana@example.com", Type: entity.MemberTypeActiveGirl, Active: true})
	eligible := members.add(&entity.Member{
		AssemblyID: 1,
		AccountID:  &account.ID,
		Name:       "Ana",
		Status:     entity.MemberStatusActive,
		Type:       entity.MemberTypeActiveGirl,
	})

	past := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	alreadyMajority := members.add(&entity.Member{
		AssemblyID:   1,
		Name:         "Beatriz",
		Status:       entity.MemberStatusMajority,
		Type:         entity.MemberTypeMajority,
		MajorityDate: &past,
	})
	wrongType := members.add(&entity.Member{
		AssemblyID: 1,
		Name:       "Tia Clara",
		Status:     entity.MemberStatusActive,
		Type:       entity.MemberTypeAunt,
	})

	data, err := EncodeMemberIDs([]int64{eligible.ID, alreadyMajority.ID, wrongType.ID, 999})
	require.NoError(t, err)

	protocol := &entity.Protocol{ID: 7, Type: entity.TypeMajority, AssemblyID: 1, MemberData: data}
	ceremony := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	outcome, events, err := svc.ProcessCeremony(context.Background(), protocol, ceremony)
	require.NoError(t, err)

	// only the eligible member is promoted, everyone else is skipped with a reason
	assert.Equal(t, []int64{eligible.ID}, outcome.Promoted)
	require.Len(t, outcome.Skipped, 3)

	promoted, err := members.GetByID(context.Background(), eligible.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MemberStatusMajority, promoted.Status)
	assert.Equal(t, entity.MemberTypeMajority, promoted.Type)
	require.NotNil(t, promoted.MajorityDate)
	assert.True(t, promoted.MajorityDate.Equal(ceremony))

	// the linked account type follows the promotion
	updated, err := accounts.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MemberTypeMajority, updated.Type)

	// one promotion event per promoted member, left for the caller to
	// publish after commit
	promotions := eventsOfType(events, event.TypeMemberPromoted)
	require.Len(t, promotions, 1)
	assert.Equal(t, eligible.ID, promotions[0].PayloadInt64("member_id"))
}

func TestProcessCeremonySkipReasons(t *testing.T) {
	members := newMockMemberRepo()
	accounts := newMockAccountRepo()
	logger, _ := zap.NewDevelopment()
	svc := NewMajorityService(members, accounts, logger)

	onLeave := members.add(&entity.Member{
		AssemblyID: 1,
		Name:       "Daniela",
		Status:     entity.MemberStatusOnLeave,
		Type:       entity.MemberTypeActiveGirl,
	})

	data, err := EncodeMemberIDs([]int64{onLeave.ID})
	require.NoError(t, err)

	protocol := &entity.Protocol{ID: 8, Type: entity.TypeMajority, AssemblyID: 1, MemberData: data}

	outcome, events, err := svc.ProcessCeremony(context.Background(), protocol, time.Now())
	require.NoError(t, err)

	assert.Empty(t, outcome.Promoted)
	assert.Empty(t, events)
	require.Len(t, outcome.Skipped, 1)
	assert.Equal(t, onLeave.ID, outcome.Skipped[0].MemberID)
	assert.Contains(t, outcome.Skipped[0].Reason, "not active")

	// the skipped member is untouched
	stored, err := members.GetByID(context.Background(), onLeave.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MemberStatusOnLeave, stored.Status)
	assert.Nil(t, stored.MajorityDate)
}

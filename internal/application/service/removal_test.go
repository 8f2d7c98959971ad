package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

func TestProcessRemoval(t *testing.T) {
	members := newMockMemberRepo()
	positions := newMockPositionRepo()
	logger, _ := zap.NewDevelopment()
	svc := NewRemovalService(members, positions, logger)

	member := members.add(&entity.Member{
		AssemblyID: 1,
		Name:       "Ana",
		Status:     entity.MemberStatusActive,
		Type:       entity.MemberTypeActiveGirl,
	})
	positions.add(&entity.PositionAssignment{
		AssemblyID: 1,
		Category:   entity.PositionCategoryAssembly,
		Position:   entity.PositionHope,
		MemberID:   member.ID,
		AssignedBy: 10,
		StartDate:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	})

	data, err := EncodeMemberIDs([]int64{member.ID})
	require.NoError(t, err)

	protocol := &entity.Protocol{ID: 9, Type: entity.TypeRemoval, AssemblyID: 1, MemberData: data}

	removed, err := svc.ProcessRemoval(context.Background(), protocol)
	require.NoError(t, err)
	assert.Equal(t, []int64{member.ID}, removed)

	discharged, err := members.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MemberStatusDischarged, discharged.Status)

	// every open position the member held is closed
	open, err := positions.GetOpenByMember(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestProcessRemovalRejectsForeignMember(t *testing.T) {
	members := newMockMemberRepo()
	positions := newMockPositionRepo()
	logger, _ := zap.NewDevelopment()
	svc := NewRemovalService(members, positions, logger)

	foreign := members.add(&entity.Member{
		AssemblyID: 2,
		Name:       "Beatriz",
		Status:     entity.MemberStatusActive,
		Type:       entity.MemberTypeActiveGirl,
	})

	data, err := EncodeMemberIDs([]int64{foreign.ID})
	require.NoError(t, err)

	protocol := &entity.Protocol{ID: 10, Type: entity.TypeRemoval, AssemblyID: 1, MemberData: data}

	_, err = svc.ProcessRemoval(context.Background(), protocol)
	assert.ErrorIs(t, err, workflow.ErrMemberNotInAssembly)

	stored, err := members.GetByID(context.Background(), foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MemberStatusActive, stored.Status)
}

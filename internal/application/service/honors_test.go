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

type honorFixture struct {
	service HonorService
	honors  *mockHonorRepo
	members *mockMemberRepo
}

func newHonorFixture(t *testing.T) *honorFixture {
	t.Helper()

	honors := newMockHonorRepo()
	members := newMockMemberRepo()
	logger, _ := zap.NewDevelopment()

	return &honorFixture{
		service: NewHonorService(honors, members, logger),
		honors:  honors,
		members: members,
	}
}

func (f *honorFixture) member(name string) *entity.Member {
	return f.members.add(&entity.Member{
		AssemblyID: 1,
		Name:       name,
		Status:     entity.MemberStatusActive,
		Type:       entity.MemberTypeActiveGirl,
	})
}

func (f *honorFixture) grant(memberID int64, honorType string, year int) {
	f.honors.grants = append(f.honors.grants, &entity.HonorGrant{
		ID:        f.honors.nextID,
		MemberID:  memberID,
		HonorType: honorType,
		Year:      year,
		GrantedAt: time.Now(),
	})
	f.honors.nextID++
}

func TestReviewBatchPrunesLifetimeHolders(t *testing.T) {
	f := newHonorFixture(t)

	first := f.member("Ana")
	second := f.member("Beatriz")
	f.grant(second.ID, entity.HonorHeartOfColors, 2024)

	review, err := f.service.ReviewBatch(context.Background(), entity.HonorHeartOfColors, []int64{first.ID, second.ID}, 2026)
	require.NoError(t, err)

	assert.Equal(t, []int64{first.ID}, review.Kept)
	assert.Equal(t, []int64{second.ID}, review.Removed)
}

func TestReviewBatchFailsWhenNobodyRemains(t *testing.T) {
	f := newHonorFixture(t)

	only := f.member("Ana")
	f.grant(only.ID, entity.HonorGrandCross, 2023)

	_, err := f.service.ReviewBatch(context.Background(), entity.HonorGrandCross, []int64{only.ID}, 2026)
	assert.ErrorIs(t, err, workflow.ErrIneligibleMember)
}

func TestReviewBatchAnnualDuplicateHardFails(t *testing.T) {
	f := newHonorFixture(t)

	first := f.member("Ana")
	second := f.member("Beatriz")
	f.grant(second.ID, entity.HonorOfTheYear, 2026)

	// a same-year duplicate of the annual honor fails the whole batch
	_, err := f.service.ReviewBatch(context.Background(), entity.HonorOfTheYear, []int64{first.ID, second.ID}, 2026)
	assert.ErrorIs(t, err, workflow.ErrHonorAlreadyGranted)

	// a prior-year grant of the annual honor does not block a new year
	review, err := f.service.ReviewBatch(context.Background(), entity.HonorOfTheYear, []int64{first.ID, second.ID}, 2027)
	require.NoError(t, err)
	assert.Len(t, review.Kept, 2)
	assert.Empty(t, review.Removed)
}

func TestReviewBatchUnknownMember(t *testing.T) {
	f := newHonorFixture(t)

	_, err := f.service.ReviewBatch(context.Background(), entity.HonorOfTheYear, []int64{999}, 2026)
	assert.ErrorIs(t, err, workflow.ErrIneligibleMember)
}

func TestGrantHonors(t *testing.T) {
	f := newHonorFixture(t)

	first := f.member("Ana")
	second := f.member("Beatriz")

	data, err := EncodeMemberIDs([]int64{first.ID, second.ID})
	require.NoError(t, err)

	protocol := &entity.Protocol{ID: 5, Type: entity.TypeHonorOfTheYear, AssemblyID: 1, MemberData: data}

	granted, err := f.service.GrantHonors(context.Background(), protocol, 2026)
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID, second.ID}, granted)

	grants, err := f.honors.ListByMember(context.Background(), first.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, entity.HonorOfTheYear, grants[0].HonorType)
	assert.Equal(t, 2026, grants[0].Year)
	require.NotNil(t, grants[0].ProtocolID)
	assert.Equal(t, protocol.ID, *grants[0].ProtocolID)
}

func TestGrantHonorsWritesNothingOnViolation(t *testing.T) {
	f := newHonorFixture(t)

	first := f.member("Ana")
	second := f.member("Beatriz")
	f.grant(second.ID, entity.HonorGrandCross, 2020)

	data, err := EncodeMemberIDs([]int64{first.ID, second.ID})
	require.NoError(t, err)

	protocol := &entity.Protocol{ID: 6, Type: entity.TypeGrandCross, AssemblyID: 1, MemberData: data}

	_, err = f.service.GrantHonors(context.Background(), protocol, 2026)
	assert.ErrorIs(t, err, workflow.ErrHonorAlreadyGranted)

	// the first member got nothing either: the batch is all-or-nothing
	grants, err := f.honors.ListByMember(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestGrantHonorsRejectsNonHonorProtocol(t *testing.T) {
	f := newHonorFixture(t)

	data, err := EncodeMemberIDs([]int64{1})
	require.NoError(t, err)

	protocol := &entity.Protocol{ID: 7, Type: entity.TypeMajority, MemberData: data}

	_, err = f.service.GrantHonors(context.Background(), protocol, 2026)
	assert.Error(t, err)
}

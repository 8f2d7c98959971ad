package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
)

// listOnlyProtocolRepo serves the fixed protocol list the reports need
type listOnlyProtocolRepo struct {
	protocols []*entity.Protocol
}

func (m *listOnlyProtocolRepo) Create(ctx context.Context, protocol *entity.Protocol) error {
	return nil
}

func (m *listOnlyProtocolRepo) GetByID(ctx context.Context, id int64) (*entity.Protocol, error) {
	return nil, nil
}

func (m *listOnlyProtocolRepo) GetByCode(ctx context.Context, code string) (*entity.Protocol, error) {
	return nil, nil
}

func (m *listOnlyProtocolRepo) Update(ctx context.Context, protocol *entity.Protocol, fromStep string) error {
	return nil
}

func (m *listOnlyProtocolRepo) List(ctx context.Context, filter port.ProtocolFilter) ([]*entity.Protocol, error) {
	return m.protocols, nil
}

func TestMemberRoster(t *testing.T) {
	members := newMockMemberRepo()
	assemblies := newMockAssemblyRepo(&entity.Assembly{ID: 1, Name: "Aurora", Code: "07", Active: true})
	logger, _ := zap.NewDevelopment()
	svc := NewReportService(members, &listOnlyProtocolRepo{}, assemblies, logger)

	members.add(&entity.Member{
		AssemblyID:   1,
		Name:         "Ana Souza",
		CPF:          "12345678909",
		Email:        "ana@example.com",
		MemberNumber: "2026070001",
		Status:       entity.MemberStatusActive,
		Type:         entity.MemberTypeActiveGirl,
	})

	raw, err := svc.MemberRoster(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	title, err := wb.GetCellValue(sheet, "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "Aurora")

	number, err := wb.GetCellValue(sheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "2026070001", number)
}

func TestMemberRosterUnknownAssembly(t *testing.T) {
	members := newMockMemberRepo()
	assemblies := newMockAssemblyRepo()
	logger, _ := zap.NewDevelopment()
	svc := NewReportService(members, &listOnlyProtocolRepo{}, assemblies, logger)

	_, err := svc.MemberRoster(context.Background(), 99)
	assert.Error(t, err)
}

func TestProtocolSummary(t *testing.T) {
	fee := int64(15000)
	repo := &listOnlyProtocolRepo{protocols: []*entity.Protocol{
		{
			Code:        "PROTO-1",
			Type:        entity.TypeGrandCross,
			CurrentStep: "AWAITING_PAYMENT",
			Status:      "AWAITING_PAYMENT",
			AssemblyID:  1,
			FeeCents:    &fee,
			CreatedAt:   time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}}

	members := newMockMemberRepo()
	assemblies := newMockAssemblyRepo()
	logger, _ := zap.NewDevelopment()
	svc := NewReportService(members, repo, assemblies, logger)

	raw, err := svc.ProtocolSummary(context.Background(), port.ProtocolFilter{})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	code, err := wb.GetCellValue(sheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "PROTO-1", code)

	feeCell, err := wb.GetCellValue(sheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "150.00", feeCell)
}

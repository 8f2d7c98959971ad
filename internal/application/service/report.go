package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
)

// ReportService exports administrative spreadsheets
type ReportService interface {
	// MemberRoster produces an xlsx workbook with one row per member of the assembly
	MemberRoster(ctx context.Context, assemblyID int64) ([]byte, error)

	// ProtocolSummary produces an xlsx workbook listing protocols matching the filter
	ProtocolSummary(ctx context.Context, filter port.ProtocolFilter) ([]byte, error)
}

type reportServiceImpl struct {
	memberRepo   port.MemberRepository
	protocolRepo port.ProtocolRepository
	assemblyRepo port.AssemblyRepository
	logger       *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	memberRepo port.MemberRepository,
	protocolRepo port.ProtocolRepository,
	assemblyRepo port.AssemblyRepository,
	logger *zap.Logger,
) ReportService {
	return &reportServiceImpl{
		memberRepo:   memberRepo,
		protocolRepo: protocolRepo,
		assemblyRepo: assemblyRepo,
		logger:       logger,
	}
}

func (s *reportServiceImpl) MemberRoster(ctx context.Context, assemblyID int64) ([]byte, error) {
	assembly, err := s.assemblyRepo.GetByID(ctx, assemblyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assembly: %w", err)
	}
	if assembly == nil {
		return nil, fmt.Errorf("assembly %d not found", assemblyID)
	}

	members, err := s.memberRepo.ListByAssembly(ctx, assemblyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("Member Roster - %s", assembly.Name)); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	headers := []string{"Member Number", "Name", "CPF", "Email", "Status", "Type", "Initiation Date", "Majority Date"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	for row, m := range members {
		values := []interface{}{
			m.MemberNumber, m.Name, m.CPF, m.Email, m.Status, m.Type,
			formatDate(m.InitiationDate), formatDate(m.MajorityDate),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write member row: %w", err)
			}
		}
	}

	s.logger.Info("Member roster exported",
		zap.Int64("assembly_id", assemblyID),
		zap.Int("members", len(members)))

	return workbookBytes(f)
}

func (s *reportServiceImpl) ProtocolSummary(ctx context.Context, filter port.ProtocolFilter) ([]byte, error) {
	protocols, err := s.protocolRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Code", "Type", "Step", "Status", "Assembly", "Created", "Ceremony Date", "Fee"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	for row, p := range protocols {
		fee := ""
		if p.FeeCents != nil {
			fee = fmt.Sprintf("%.2f", float64(*p.FeeCents)/100)
		}
		values := []interface{}{
			p.Code, p.Type.String(), p.CurrentStep, p.Status, p.AssemblyID,
			p.CreatedAt.Format("2006-01-02"), formatDate(p.CeremonyDate), fee,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write protocol row: %w", err)
			}
		}
	}

	return workbookBytes(f)
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

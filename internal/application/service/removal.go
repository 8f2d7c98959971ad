package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

// RemovalService discharges members when a removal protocol is approved:
// status flips to DISCHARGED and every open position they hold is closed.
type RemovalService interface {
	ProcessRemoval(ctx context.Context, protocol *entity.Protocol) ([]int64, error)
}

type removalServiceImpl struct {
	memberRepo   port.MemberRepository
	positionRepo port.PositionRepository
	logger       *zap.Logger
}

// NewRemovalService creates a new RemovalService
func NewRemovalService(memberRepo port.MemberRepository, positionRepo port.PositionRepository, logger *zap.Logger) RemovalService {
	return &removalServiceImpl{
		memberRepo:   memberRepo,
		positionRepo: positionRepo,
		logger:       logger,
	}
}

func (s *removalServiceImpl) ProcessRemoval(ctx context.Context, protocol *entity.Protocol) ([]int64, error) {
	ids, err := MemberIDs(protocol)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	removed := make([]int64, 0, len(ids))

	for _, id := range ids {
		member, err := s.memberRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load member %d: %w", id, err)
		}
		if member == nil {
			return nil, fmt.Errorf("%w: member %d not found", workflow.ErrIneligibleMember, id)
		}
		if member.AssemblyID != protocol.AssemblyID {
			return nil, fmt.Errorf("%w: member %d belongs to assembly %d",
				workflow.ErrMemberNotInAssembly, id, member.AssemblyID)
		}

		member.Status = entity.MemberStatusDischarged
		member.UpdatedAt = now
		if err := s.memberRepo.Update(ctx, member); err != nil {
			return nil, fmt.Errorf("failed to discharge member %d: %w", id, err)
		}

		open, err := s.positionRepo.GetOpenByMember(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load open positions for member %d: %w", id, err)
		}
		for _, assignment := range open {
			if err := s.positionRepo.Close(ctx, assignment.ID, now); err != nil {
				return nil, fmt.Errorf("failed to close position %d: %w", assignment.ID, err)
			}
		}

		removed = append(removed, id)

		s.logger.Info("Member discharged",
			zap.Int64("protocol_id", protocol.ID),
			zap.Int64("member_id", id),
			zap.Int("positions_closed", len(open)))
	}

	return removed, nil
}

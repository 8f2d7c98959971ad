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

// HonorBatchReview is the outcome of validating an honor candidate list:
// Kept members proceed, Removed members already hold a lifetime honor and
// are pruned from the batch.
type HonorBatchReview struct {
	Kept    []int64 `json:"kept"`
	Removed []int64 `json:"removed"`
}

// HonorService validates and creates honor grants subject to the uniqueness
// rules: HEART_OF_COLORS and GRAND_CROSS once per member across all time,
// HONOR_OF_THE_YEAR once per (member, year).
type HonorService interface {
	// ReviewBatch validates a candidate list at the honors-approval step,
	// pruning members already holding a lifetime honor and failing on
	// same-year duplicates of the annual honor
	ReviewBatch(ctx context.Context, honorType string, memberIDs []int64, year int) (*HonorBatchReview, error)

	// GrantHonors creates the grant records at final approval. Every
	// uniqueness violation fails the whole batch before any record is written.
	GrantHonors(ctx context.Context, protocol *entity.Protocol, year int) ([]int64, error)
}

type honorServiceImpl struct {
	honorRepo  port.HonorRepository
	memberRepo port.MemberRepository
	logger     *zap.Logger
}

// NewHonorService creates a new HonorService
func NewHonorService(honorRepo port.HonorRepository, memberRepo port.MemberRepository, logger *zap.Logger) HonorService {
	return &honorServiceImpl{
		honorRepo:  honorRepo,
		memberRepo: memberRepo,
		logger:     logger,
	}
}

func (s *honorServiceImpl) ReviewBatch(ctx context.Context, honorType string, memberIDs []int64, year int) (*HonorBatchReview, error) {
	review := &HonorBatchReview{}

	for _, id := range memberIDs {
		member, err := s.memberRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load member %d: %w", id, err)
		}
		if member == nil {
			return nil, fmt.Errorf("%w: member %d not found", workflow.ErrIneligibleMember, id)
		}

		if entity.LifetimeHonor(honorType) {
			granted, err := s.honorRepo.ExistsForMember(ctx, id, honorType)
			if err != nil {
				return nil, fmt.Errorf("failed to check honor uniqueness: %w", err)
			}
			if granted {
				s.logger.Info("Removing already-honored member from batch",
					zap.Int64("member_id", id),
					zap.String("honor_type", honorType))
				review.Removed = append(review.Removed, id)
				continue
			}
		} else {
			granted, err := s.honorRepo.ExistsForMemberYear(ctx, id, honorType, year)
			if err != nil {
				return nil, fmt.Errorf("failed to check honor uniqueness: %w", err)
			}
			if granted {
				return nil, fmt.Errorf("%w: member %d already holds %s for %d",
					workflow.ErrHonorAlreadyGranted, id, honorType, year)
			}
		}

		review.Kept = append(review.Kept, id)
	}

	if len(review.Kept) == 0 {
		return nil, fmt.Errorf("%w: no eligible members remain in the batch", workflow.ErrIneligibleMember)
	}

	return review, nil
}

func (s *honorServiceImpl) GrantHonors(ctx context.Context, protocol *entity.Protocol, year int) ([]int64, error) {
	honorType, ok := entity.HonorForProtocolType(protocol.Type)
	if !ok {
		return nil, fmt.Errorf("protocol type %s does not grant an honor", protocol.Type)
	}

	ids, err := MemberIDs(protocol)
	if err != nil {
		return nil, err
	}

	// Validate the whole batch first so a violation writes nothing
	for _, id := range ids {
		if entity.LifetimeHonor(honorType) {
			granted, err := s.honorRepo.ExistsForMember(ctx, id, honorType)
			if err != nil {
				return nil, fmt.Errorf("failed to check honor uniqueness: %w", err)
			}
			if granted {
				return nil, fmt.Errorf("%w: %s is unique per member, member %d already holds it",
					workflow.ErrHonorAlreadyGranted, honorType, id)
			}
		} else {
			granted, err := s.honorRepo.ExistsForMemberYear(ctx, id, honorType, year)
			if err != nil {
				return nil, fmt.Errorf("failed to check honor uniqueness: %w", err)
			}
			if granted {
				return nil, fmt.Errorf("%w: member %d already holds %s for %d",
					workflow.ErrHonorAlreadyGranted, id, honorType, year)
			}
		}
	}

	granted := make([]int64, 0, len(ids))
	now := time.Now()
	for _, id := range ids {
		grant := &entity.HonorGrant{
			MemberID:   id,
			HonorType:  honorType,
			Year:       year,
			ProtocolID: &protocol.ID,
			GrantedAt:  now,
		}
		if err := s.honorRepo.Create(ctx, grant); err != nil {
			return nil, fmt.Errorf("failed to create honor grant for member %d: %w", id, err)
		}
		granted = append(granted, id)
	}

	s.logger.Info("Honors granted",
		zap.Int64("protocol_id", protocol.ID),
		zap.String("honor_type", honorType),
		zap.Int("count", len(granted)),
		zap.Int("year", year))

	return granted, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
)

// SkippedMember records one member excluded from a majority ceremony and why
type SkippedMember struct {
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
}

// CeremonyOutcome summarizes a processed majority ceremony
type CeremonyOutcome struct {
	Promoted []int64         `json:"promoted"`
	Skipped  []SkippedMember `json:"skipped"`
}

// MajorityService runs the majority ceremony: a bulk status transition with
// per-member eligibility re-checks. Promotion events are returned for the
// orchestrator to dispatch after the enclosing transaction commits.
type MajorityService interface {
	ProcessCeremony(ctx context.Context, protocol *entity.Protocol, ceremonyDate time.Time) (*CeremonyOutcome, []*event.Event, error)
}

type majorityServiceImpl struct {
	memberRepo  port.MemberRepository
	accountRepo port.AccountRepository
	logger      *zap.Logger
}

// NewMajorityService creates a new MajorityService
func NewMajorityService(
	memberRepo port.MemberRepository,
	accountRepo port.AccountRepository,
	logger *zap.Logger,
) MajorityService {
	return &majorityServiceImpl{
		memberRepo:  memberRepo,
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// ProcessCeremony promotes every eligible member attached to the protocol.
// Eligibility is re-checked here regardless of what the payload claims:
// ineligible members are skipped and logged, never silently promoted.
func (s *majorityServiceImpl) ProcessCeremony(ctx context.Context, protocol *entity.Protocol, ceremonyDate time.Time) (*CeremonyOutcome, []*event.Event, error) {
	ids, err := MemberIDs(protocol)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.memberRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ceremony members: %w", err)
	}

	loaded := make(map[int64]*entity.Member, len(members))
	for _, m := range members {
		loaded[m.ID] = m
	}

	outcome := &CeremonyOutcome{}
	var events []*event.Event
	for _, id := range ids {
		member, ok := loaded[id]
		if !ok {
			outcome.Skipped = append(outcome.Skipped, SkippedMember{MemberID: id, Reason: "member not found"})
			continue
		}

		if !member.EligibleForMajority() {
			reason := s.ineligibilityReason(member)
			s.logger.Warn("Member skipped in majority ceremony",
				zap.Int64("protocol_id", protocol.ID),
				zap.Int64("member_id", member.ID),
				zap.String("reason", reason))
			outcome.Skipped = append(outcome.Skipped, SkippedMember{MemberID: member.ID, Name: member.Name, Reason: reason})
			continue
		}

		date := ceremonyDate
		member.Status = entity.MemberStatusMajority
		member.Type = entity.MemberTypeMajority
		member.MajorityDate = &date
		member.UpdatedAt = time.Now()

		if err := s.memberRepo.Update(ctx, member); err != nil {
			return nil, nil, fmt.Errorf("failed to promote member %d: %w", member.ID, err)
		}

		// Linked account type follows the member classification in lockstep
		if member.AccountID != nil {
			if err := s.accountRepo.UpdateType(ctx, *member.AccountID, entity.MemberTypeMajority); err != nil {
				return nil, nil, fmt.Errorf("failed to update account type for member %d: %w", member.ID, err)
			}
		}

		outcome.Promoted = append(outcome.Promoted, member.ID)

		events = append(events, event.New(event.TypeMemberPromoted, protocol.ID, map[string]interface{}{
			"member_id":     member.ID,
			"ceremony_date": ceremonyDate.Format("2006-01-02"),
		}))
	}

	s.logger.Info("Majority ceremony processed",
		zap.Int64("protocol_id", protocol.ID),
		zap.Int("promoted", len(outcome.Promoted)),
		zap.Int("skipped", len(outcome.Skipped)))

	return outcome, events, nil
}

func (s *majorityServiceImpl) ineligibilityReason(member *entity.Member) string {
	switch {
	case member.Type != entity.MemberTypeActiveGirl:
		return fmt.Sprintf("member type %s is not eligible", member.Type)
	case member.Status != entity.MemberStatusActive:
		return fmt.Sprintf("member status %s is not active", member.Status)
	case member.MajorityDate != nil:
		return "member already went through the majority ceremony"
	}
	return "not eligible"
}

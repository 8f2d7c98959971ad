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

// PositionService assigns a batch of members to positions within one
// assembly. The assignment is exclusive per (assembly, position type): all
// currently open positions of the category are closed before the new set is
// created, inside the caller's transaction scope.
type PositionService interface {
	AssignPositions(ctx context.Context, assemblyID int64, assignments map[string]int64, protocolID, actorID int64) error
}

type positionServiceImpl struct {
	category     string
	memberRepo   port.MemberRepository
	positionRepo port.PositionRepository
	accountRepo  port.AccountRepository
	logger       *zap.Logger
}

// NewAssemblyPositionService creates the service handling assembly positions
// (held by active girls)
func NewAssemblyPositionService(
	memberRepo port.MemberRepository,
	positionRepo port.PositionRepository,
	logger *zap.Logger,
) PositionService {
	return &positionServiceImpl{
		category:     entity.PositionCategoryAssembly,
		memberRepo:   memberRepo,
		positionRepo: positionRepo,
		logger:       logger,
	}
}

// NewCouncilPositionService creates the service handling council positions
// (held by adult members, with admin role propagation)
func NewCouncilPositionService(
	memberRepo port.MemberRepository,
	positionRepo port.PositionRepository,
	accountRepo port.AccountRepository,
	logger *zap.Logger,
) PositionService {
	return &positionServiceImpl{
		category:     entity.PositionCategoryCouncil,
		memberRepo:   memberRepo,
		positionRepo: positionRepo,
		accountRepo:  accountRepo,
		logger:       logger,
	}
}

// AssignPositions validates the whole batch before touching any row: every
// target member must belong to the assembly, satisfy the category's
// eligibility rules, and appear at most once in the batch. On success all
// open positions of the category are closed and the new set created.
func (s *positionServiceImpl) AssignPositions(ctx context.Context, assemblyID int64, assignments map[string]int64, protocolID, actorID int64) error {
	if len(assignments) == 0 {
		return fmt.Errorf("no position assignments supplied")
	}

	seen := make(map[int64]string, len(assignments))
	members := make(map[string]*entity.Member, len(assignments))

	for position, memberID := range assignments {
		if prev, dup := seen[memberID]; dup {
			return fmt.Errorf("%w: member %d assigned to both %s and %s",
				workflow.ErrDuplicateAssignment, memberID, prev, position)
		}
		seen[memberID] = position

		member, err := s.memberRepo.GetByID(ctx, memberID)
		if err != nil {
			return fmt.Errorf("failed to load member %d: %w", memberID, err)
		}
		if member == nil {
			return fmt.Errorf("%w: member %d not found", workflow.ErrMemberNotInAssembly, memberID)
		}
		if member.AssemblyID != assemblyID {
			return fmt.Errorf("%w: member %d belongs to assembly %d",
				workflow.ErrMemberNotInAssembly, memberID, member.AssemblyID)
		}
		if err := s.checkEligibility(member, position); err != nil {
			return err
		}

		members[position] = member
	}

	previous, err := s.positionRepo.GetOpenByAssembly(ctx, assemblyID, s.category)
	if err != nil {
		return fmt.Errorf("failed to load open positions: %w", err)
	}

	now := time.Now()
	for _, open := range previous {
		if err := s.positionRepo.Close(ctx, open.ID, now); err != nil {
			return fmt.Errorf("failed to close position %d: %w", open.ID, err)
		}
	}

	for position, member := range members {
		assignment := &entity.PositionAssignment{
			AssemblyID: assemblyID,
			Category:   s.category,
			Position:   position,
			MemberID:   member.ID,
			ProtocolID: &protocolID,
			AssignedBy: actorID,
			StartDate:  now,
			CreatedAt:  now,
		}
		if err := s.positionRepo.Create(ctx, assignment); err != nil {
			return fmt.Errorf("failed to create %s assignment: %w", position, err)
		}
	}

	if s.category == entity.PositionCategoryCouncil {
		if err := s.syncAdminRoles(ctx, previous, members); err != nil {
			return err
		}
	}

	s.logger.Info("Positions assigned",
		zap.Int64("assembly_id", assemblyID),
		zap.String("category", s.category),
		zap.Int("closed", len(previous)),
		zap.Int("created", len(assignments)),
		zap.Int64("protocol_id", protocolID))

	return nil
}

func (s *positionServiceImpl) checkEligibility(member *entity.Member, position string) error {
	switch s.category {
	case entity.PositionCategoryAssembly:
		if member.Type != entity.MemberTypeActiveGirl || member.Status != entity.MemberStatusActive {
			return fmt.Errorf("%w: %s requires an active girl, member %d is %s/%s",
				workflow.ErrIneligibleMember, position, member.ID, member.Type, member.Status)
		}
	case entity.PositionCategoryCouncil:
		if !member.Adult() {
			return fmt.Errorf("%w: council position %s requires an adult member, member %d is %s",
				workflow.ErrIneligibleMember, position, member.ID, member.Type)
		}
		if position == entity.PositionPresident {
			if member.Type != entity.MemberTypeMasonUncle || member.Grade != entity.GradeMaster {
				return fmt.Errorf("%w: council president requires a mason uncle with master grade, member %d is %s/%s",
					workflow.ErrIneligibleMember, member.ID, member.Type, member.Grade)
			}
		}
	}
	return nil
}

// syncAdminRoles reconciles the assembly-admin role on linked accounts with
// the new council composition: holders of admin-granting positions gain the
// role, displaced holders lose it.
func (s *positionServiceImpl) syncAdminRoles(ctx context.Context, closed []*entity.PositionAssignment, assigned map[string]*entity.Member) error {
	shouldHold := make(map[int64]bool)
	for position, member := range assigned {
		if member.AccountID != nil {
			if entity.GrantsAdmin(position) {
				shouldHold[*member.AccountID] = true
			} else if _, ok := shouldHold[*member.AccountID]; !ok {
				shouldHold[*member.AccountID] = false
			}
		}
	}

	for _, open := range closed {
		member, err := s.memberRepo.GetByID(ctx, open.MemberID)
		if err != nil {
			return fmt.Errorf("failed to load displaced member %d: %w", open.MemberID, err)
		}
		if member == nil || member.AccountID == nil {
			continue
		}
		if _, stillAssigned := shouldHold[*member.AccountID]; !stillAssigned {
			shouldHold[*member.AccountID] = false
		}
	}

	for accountID, grant := range shouldHold {
		account, err := s.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("failed to load account %d: %w", accountID, err)
		}
		if account == nil {
			continue
		}

		roles := withRole(account.Roles, entity.RoleAssemblyAdmin, grant)
		if err := s.accountRepo.UpdateRoles(ctx, accountID, roles); err != nil {
			return fmt.Errorf("failed to sync roles for account %d: %w", accountID, err)
		}
	}

	return nil
}

// withRole returns the role list with the role present or absent
func withRole(roles []string, role string, present bool) []string {
	out := make([]string, 0, len(roles)+1)
	for _, r := range roles {
		if r != role {
			out = append(out, r)
		}
	}
	if present {
		out = append(out, role)
	}
	return out
}

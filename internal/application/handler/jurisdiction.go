package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/service"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
	"github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

// JurisdictionMemberHandler performs the jurisdiction-driven steps: fee
// definition and the approval decisions. On approval it dispatches to the
// type-specific post-approval routine and lands the protocol on its terminal
// step within the same transaction.
type JurisdictionMemberHandler struct {
	initiation        service.InitiationService
	majority          service.MajorityService
	removal           service.RemovalService
	assemblyPositions service.PositionService
	councilPositions  service.PositionService
	honors            service.HonorService
	logger            *zap.Logger
}

// NewJurisdictionMemberHandler creates the jurisdiction-member step handler
func NewJurisdictionMemberHandler(
	initiation service.InitiationService,
	majority service.MajorityService,
	removal service.RemovalService,
	assemblyPositions service.PositionService,
	councilPositions service.PositionService,
	honors service.HonorService,
	logger *zap.Logger,
) *JurisdictionMemberHandler {
	return &JurisdictionMemberHandler{
		initiation:        initiation,
		majority:          majority,
		removal:           removal,
		assemblyPositions: assemblyPositions,
		councilPositions:  councilPositions,
		honors:            honors,
		logger:            logger,
	}
}

// Kind identifies the handler in the workflow registry
func (h *JurisdictionMemberHandler) Kind() workflow.HandlerKind {
	return workflow.HandlerJurisdiction
}

// CanExecute requires the jurisdiction-member role; jurisdiction members act
// across all assemblies
func (h *JurisdictionMemberHandler) CanExecute(actor workflow.Actor, protocol *entity.Protocol) bool {
	return actor.HasRole(entity.RoleJurisdictionMember)
}

// RequiredFields lists payload keys the step cannot proceed without
func (h *JurisdictionMemberHandler) RequiredFields(step workflow.Step) []string {
	switch step {
	case workflow.StepApproval, workflow.StepFinalApproval:
		return []string{"approved"}
	case workflow.StepFeeDefinition:
		return []string{"fee_cents"}
	}
	return nil
}

// OptionalFields lists payload keys the step understands
func (h *JurisdictionMemberHandler) OptionalFields(step workflow.Step) []string {
	switch step {
	case workflow.StepApproval, workflow.StepFinalApproval:
		return []string{"ceremony_date", "feedback", "year"}
	case workflow.StepFeeDefinition:
		return []string{"fee_notes"}
	}
	return nil
}

// Execute dispatches by the protocol's current step name
func (h *JurisdictionMemberHandler) Execute(ctx context.Context, req Request) (*Result, error) {
	switch workflow.Step(req.Protocol.CurrentStep) {
	case workflow.StepFeeDefinition:
		return h.executeFeeDefinition(req)
	case workflow.StepApproval, workflow.StepFinalApproval:
		return h.executeDecision(ctx, req)
	}
	return nil, fmt.Errorf("jurisdiction handler has no action for step %s", req.Protocol.CurrentStep)
}

func (h *JurisdictionMemberHandler) executeFeeDefinition(req Request) (*Result, error) {
	protocol := req.Protocol

	feeCents, ok := req.Payload.Int64("fee_cents")
	if !ok || feeCents < 0 {
		return nil, fmt.Errorf("a non-negative fee amount is required")
	}
	protocol.FeeCents = &feeCents
	protocol.FeeNotes = req.Payload.String("fee_notes")

	return &Result{
		Protocol:    protocol,
		Description: fmt.Sprintf("Fee set to %.2f", float64(feeCents)/100),
	}, nil
}

func (h *JurisdictionMemberHandler) executeDecision(ctx context.Context, req Request) (*Result, error) {
	protocol := req.Protocol

	approved, ok := req.Payload.Bool("approved")
	if !ok {
		return nil, workflow.ErrMissingDecision
	}

	if !approved {
		protocol.Feedback = req.Payload.String("feedback")
		return &Result{
			Protocol:     protocol,
			StepOverride: workflow.StepRejected,
			Description:  "Protocol rejected by jurisdiction",
			Note:         protocol.Feedback,
		}, nil
	}

	now := time.Now()
	approverID := req.Actor.AccountID
	protocol.ApproverID = &approverID
	protocol.ApprovedAt = &now

	if date, ok := req.Payload.Time("ceremony_date"); ok {
		protocol.CeremonyDate = &date
	}
	if protocol.Type == entity.TypeMajority && protocol.CeremonyDate == nil {
		return nil, workflow.ErrMissingCeremonyDate
	}

	note, events, err := h.runPostApproval(ctx, &protocol, req)
	if err != nil {
		return nil, err
	}

	return &Result{
		Protocol:     protocol,
		StepOverride: workflow.StepCompleted,
		Description:  fmt.Sprintf("Protocol %s approved by jurisdiction", protocol.Code),
		Note:         note,
		Events:       events,
	}, nil
}

// runPostApproval executes the type-specific side effects of an approval.
// Events the services produce are handed back on the result so the
// orchestrator can publish them after commit.
func (h *JurisdictionMemberHandler) runPostApproval(ctx context.Context, protocol *entity.Protocol, req Request) (string, []*event.Event, error) {
	switch protocol.Type {
	case entity.TypeInitiation:
		results, events, err := h.initiation.ProcessProtocolCompletion(ctx, protocol, req.Actor.AccountID)
		if err != nil {
			return "", nil, err
		}
		note, err := summarizeJSON(results)
		return note, events, err

	case entity.TypeMajority:
		outcome, events, err := h.majority.ProcessCeremony(ctx, protocol, *protocol.CeremonyDate)
		if err != nil {
			return "", nil, err
		}
		note, err := summarizeJSON(outcome)
		return note, events, err

	case entity.TypeRemoval:
		removed, err := h.removal.ProcessRemoval(ctx, protocol)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%d members discharged", len(removed)), nil, nil

	case entity.TypePositionAssembly, entity.TypePositionCouncil:
		assignments, err := service.PositionAssignments(protocol)
		if err != nil {
			return "", nil, err
		}
		svc := h.assemblyPositions
		if protocol.Type == entity.TypePositionCouncil {
			svc = h.councilPositions
		}
		if err := svc.AssignPositions(ctx, protocol.AssemblyID, assignments, protocol.ID, req.Actor.AccountID); err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%d positions assigned", len(assignments)), nil, nil

	case entity.TypeHonorOfTheYear, entity.TypeHeartOfColors, entity.TypeGrandCross:
		year := time.Now().Year()
		if y, ok := req.Payload.Int64("year"); ok {
			year = int(y)
		}
		granted, err := h.honors.GrantHonors(ctx, protocol, year)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("%d honors granted for %d", len(granted), year), nil, nil
	}

	h.logger.Warn("No post-approval routine for protocol type",
		zap.String("type", protocol.Type.String()),
		zap.Int64("protocol_id", protocol.ID))
	return "", nil, nil
}

func summarizeJSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary: %w", err)
	}
	return string(raw), nil
}

package handler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/service"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

// HonorsPresidentHandler performs the honors-committee review step. It
// validates the candidate list against the honor's uniqueness rules and
// prunes members who already hold a lifetime honor.
type HonorsPresidentHandler struct {
	honors service.HonorService
	logger *zap.Logger
}

// NewHonorsPresidentHandler creates the honors-president step handler
func NewHonorsPresidentHandler(honors service.HonorService, logger *zap.Logger) *HonorsPresidentHandler {
	return &HonorsPresidentHandler{
		honors: honors,
		logger: logger,
	}
}

// Kind identifies the handler in the workflow registry
func (h *HonorsPresidentHandler) Kind() workflow.HandlerKind {
	return workflow.HandlerHonorsPresident
}

// CanExecute requires the honors-president role
func (h *HonorsPresidentHandler) CanExecute(actor workflow.Actor, protocol *entity.Protocol) bool {
	return actor.HasRole(entity.RoleHonorsPresident)
}

// RequiredFields lists payload keys the step cannot proceed without
func (h *HonorsPresidentHandler) RequiredFields(step workflow.Step) []string {
	if step == workflow.StepHonorsApproval {
		return []string{"approved"}
	}
	return nil
}

// OptionalFields lists payload keys the step understands
func (h *HonorsPresidentHandler) OptionalFields(step workflow.Step) []string {
	if step == workflow.StepHonorsApproval {
		return []string{"feedback", "year"}
	}
	return nil
}

// Execute dispatches by the protocol's current step name
func (h *HonorsPresidentHandler) Execute(ctx context.Context, req Request) (*Result, error) {
	if workflow.Step(req.Protocol.CurrentStep) != workflow.StepHonorsApproval {
		return nil, fmt.Errorf("honors-president handler has no action for step %s", req.Protocol.CurrentStep)
	}

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
			Description:  "Honor request rejected by honors committee",
			Note:         protocol.Feedback,
		}, nil
	}

	honorType, _ := entity.HonorForProtocolType(protocol.Type)
	year := time.Now().Year()
	if y, ok := req.Payload.Int64("year"); ok {
		year = int(y)
	}

	ids, err := service.MemberIDs(&protocol)
	if err != nil {
		return nil, err
	}

	review, err := h.honors.ReviewBatch(ctx, honorType, ids, year)
	if err != nil {
		return nil, err
	}

	// Pruned members stay pruned: the payload is rewritten so the final
	// approval only grants to the kept set.
	if len(review.Removed) > 0 {
		data, err := service.EncodeMemberIDs(review.Kept)
		if err != nil {
			return nil, err
		}
		protocol.MemberData = data

		h.logger.Info("Pruned already-honored members from batch",
			zap.Int64("protocol_id", protocol.ID),
			zap.String("honor_type", honorType),
			zap.Int64s("removed", review.Removed))
	}

	note, err := summarizeJSON(review)
	if err != nil {
		return nil, err
	}

	return &Result{
		Protocol:    protocol,
		Description: fmt.Sprintf("Honor batch approved by honors committee (%d members)", len(review.Kept)),
		Note:        note,
	}, nil
}

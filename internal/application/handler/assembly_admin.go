package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

// AssemblyAdminHandler performs the steps driven by an assembly
// administrator: protocol creation and payment recording.
type AssemblyAdminHandler struct {
	receipts port.ReceiptInspector
	logger   *zap.Logger
}

// NewAssemblyAdminHandler creates the assembly-admin step handler
func NewAssemblyAdminHandler(receipts port.ReceiptInspector, logger *zap.Logger) *AssemblyAdminHandler {
	return &AssemblyAdminHandler{
		receipts: receipts,
		logger:   logger,
	}
}

// Kind identifies the handler in the workflow registry
func (h *AssemblyAdminHandler) Kind() workflow.HandlerKind {
	return workflow.HandlerAssemblyAdmin
}

// CanExecute requires the assembly-admin role scoped to the protocol's assembly
func (h *AssemblyAdminHandler) CanExecute(actor workflow.Actor, protocol *entity.Protocol) bool {
	return actor.HasRole(entity.RoleAssemblyAdmin) && actor.ScopedTo(protocol.AssemblyID)
}

// RequiredFields lists payload keys the step cannot proceed without
func (h *AssemblyAdminHandler) RequiredFields(step workflow.Step) []string {
	switch step {
	case workflow.StepCreation:
		return []string{"member_data"}
	}
	return nil
}

// OptionalFields lists payload keys the step understands
func (h *AssemblyAdminHandler) OptionalFields(step workflow.Step) []string {
	switch step {
	case workflow.StepCreation:
		return []string{"ceremony_date"}
	case workflow.StepAwaitingPayment:
		return []string{"receipt_path", "payment_confirmed"}
	}
	return nil
}

// Execute dispatches by the protocol's current step name
func (h *AssemblyAdminHandler) Execute(ctx context.Context, req Request) (*Result, error) {
	switch workflow.Step(req.Protocol.CurrentStep) {
	case workflow.StepCreation:
		return h.executeCreation(req)
	case workflow.StepAwaitingPayment:
		return h.executePayment(req)
	}
	return nil, fmt.Errorf("assembly-admin handler has no action for step %s", req.Protocol.CurrentStep)
}

// executeCreation binds the requester, attaches the member payload and sets
// the ceremony date when supplied. Also runs on resubmission after rejection.
func (h *AssemblyAdminHandler) executeCreation(req Request) (*Result, error) {
	protocol := req.Protocol
	protocol.RequesterID = req.Actor.AccountID

	if req.Payload.Has("member_data") {
		raw, err := json.Marshal(req.Payload["member_data"])
		if err != nil {
			return nil, fmt.Errorf("invalid member data: %w", err)
		}
		protocol.MemberData = string(raw)
	}
	if protocol.MemberData == "" {
		return nil, fmt.Errorf("member data is required")
	}

	if date, ok := req.Payload.Time("ceremony_date"); ok {
		protocol.CeremonyDate = &date
	}

	// Resubmission clears the previous rejection
	protocol.Feedback = ""

	return &Result{
		Protocol:    protocol,
		Description: fmt.Sprintf("Protocol %s prepared by assembly admin", protocol.Code),
	}, nil
}

// executePayment records the uploaded receipt and/or the payment confirmation
func (h *AssemblyAdminHandler) executePayment(req Request) (*Result, error) {
	protocol := req.Protocol

	if path := req.Payload.String("receipt_path"); path != "" {
		info, err := h.receipts.Inspect(path)
		if err != nil {
			return nil, fmt.Errorf("receipt rejected: %w", err)
		}
		protocol.ReceiptPath = path

		h.logger.Info("Payment receipt recorded",
			zap.Int64("protocol_id", protocol.ID),
			zap.String("path", path),
			zap.Int("pages", info.Pages))
	}

	if confirmed, ok := req.Payload.Bool("payment_confirmed"); ok {
		protocol.PaymentConfirmed = confirmed
	}

	if protocol.ReceiptPath == "" && !protocol.PaymentConfirmed {
		return nil, fmt.Errorf("a receipt or payment confirmation is required")
	}

	return &Result{
		Protocol:    protocol,
		Description: "Payment recorded by assembly admin",
	}, nil
}

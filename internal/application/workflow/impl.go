package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/dispatcher"
	"github.com/ordem-digital/protocol-engine/internal/application/handler"
	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
	domainwf "github.com/ordem-digital/protocol-engine/internal/domain/workflow"
	"github.com/ordem-digital/protocol-engine/internal/metrics"
)

// engineImpl is the concrete implementation of Orchestrator
type engineImpl struct {
	registry     *domainwf.Registry
	handlers     handler.Set
	protocolRepo port.ProtocolRepository
	historyRepo  port.HistoryRepository
	txManager    port.TransactionManager
	dispatcher   dispatcher.Dispatcher
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewEngine creates the workflow orchestrator
func NewEngine(
	registry *domainwf.Registry,
	handlers handler.Set,
	protocolRepo port.ProtocolRepository,
	historyRepo port.HistoryRepository,
	txManager port.TransactionManager,
	d dispatcher.Dispatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
) Orchestrator {
	return &engineImpl{
		registry:     registry,
		handlers:     handlers,
		protocolRepo: protocolRepo,
		historyRepo:  historyRepo,
		txManager:    txManager,
		dispatcher:   d,
		metrics:      m,
		logger:       logger,
	}
}

func (e *engineImpl) CurrentStep(protocol *entity.Protocol) (domainwf.StepDefinition, error) {
	wf, err := e.registry.WorkflowFor(protocol.Type)
	if err != nil {
		return domainwf.StepDefinition{}, err
	}

	name := domainwf.Step(protocol.CurrentStep)
	if protocol.CurrentStep == "" {
		name = wf.InitialStep
	}

	return wf.Step(name)
}

func (e *engineImpl) CanTransition(protocol *entity.Protocol, target domainwf.Step) bool {
	current, err := e.CurrentStep(protocol)
	if err != nil {
		return false
	}
	return current.Permits(target)
}

func (e *engineImpl) ActorAuthorized(protocol *entity.Protocol, target domainwf.Step, actor domainwf.Actor) bool {
	wf, err := e.registry.WorkflowFor(protocol.Type)
	if err != nil {
		return false
	}
	def, err := wf.Step(target)
	if err != nil {
		return false
	}

	if !actor.HasAnyRole(def.RequiredRoles) {
		return false
	}
	if def.Handler != domainwf.HandlerNone {
		h, ok := e.handlers[def.Handler]
		if !ok || !h.CanExecute(actor, protocol) {
			return false
		}
	}
	return true
}

func (e *engineImpl) CreateProtocol(ctx context.Context, req CreateRequest) (*entity.Protocol, error) {
	wf, err := e.registry.WorkflowFor(req.Type)
	if err != nil {
		return nil, err
	}
	initial, err := wf.Step(wf.InitialStep)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	protocol := entity.Protocol{
		Code:        uuid.New().String(),
		Type:        req.Type,
		CurrentStep: initial.Name.String(),
		Status:      domainwf.StatusFor(initial.Name).String(),
		AssemblyID:  req.AssemblyID,
		RequesterID: req.Actor.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if !req.Actor.HasAnyRole(initial.RequiredRoles) {
		return nil, fmt.Errorf("%w: creating a %s protocol requires %v",
			domainwf.ErrUnauthorized, req.Type, initial.RequiredRoles)
	}

	var pending []*event.Event

	if initial.Handler != domainwf.HandlerNone {
		h, ok := e.handlers[initial.Handler]
		if !ok {
			return nil, fmt.Errorf("no handler registered for kind %s", initial.Handler)
		}
		if !h.CanExecute(req.Actor, &protocol) {
			return nil, fmt.Errorf("%w: actor out of scope for assembly %d",
				domainwf.ErrUnauthorized, req.AssemblyID)
		}

		res, err := h.Execute(ctx, handler.Request{Protocol: protocol, Actor: req.Actor, Payload: req.Payload})
		if err != nil {
			return nil, e.wrapActionError(err)
		}
		protocol = res.Protocol
		pending = res.Events
	}

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := e.protocolRepo.Create(txCtx, &protocol); err != nil {
			return err
		}

		entry := &entity.ProtocolHistory{
			ProtocolID:  protocol.ID,
			ActorID:     req.Actor.AccountID,
			ActionType:  entity.HistoryActionCreated,
			Description: fmt.Sprintf("Protocol %s created in step %s", protocol.Code, protocol.CurrentStep),
			NewState:    snapshot(&protocol),
			Timestamp:   time.Now(),
		}
		return e.historyRepo.Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	e.metrics.ProtocolsCreated.WithLabelValues(protocol.Type.String()).Inc()

	createdEvt := event.New(event.TypeProtocolCreated, protocol.ID, map[string]interface{}{
		"code": protocol.Code,
		"type": protocol.Type.String(),
	})
	e.dispatcher.DispatchAsync(ctx, createdEvt)
	for _, evt := range pending {
		e.dispatcher.DispatchAsync(ctx, event.NewCorrelated(evt.Type, evt.ProtocolID, evt.Payload, createdEvt.CorrelationID))
	}

	e.logger.Info("Protocol created",
		zap.Int64("protocol_id", protocol.ID),
		zap.String("code", protocol.Code),
		zap.String("type", protocol.Type.String()))

	return &protocol, nil
}

// TransitionTo validates the requested transition, executes the target
// step's handler and persists the outcome. Step update, handler side effects
// and history append commit in one transaction; a failure anywhere leaves no
// partial state.
func (e *engineImpl) TransitionTo(ctx context.Context, protocolID int64, target domainwf.Step, actor domainwf.Actor, payload handler.Payload) (*entity.Protocol, error) {
	protocol, err := e.protocolRepo.GetByID(ctx, protocolID)
	if err != nil {
		return nil, err
	}
	if protocol == nil {
		return nil, fmt.Errorf("protocol %d not found", protocolID)
	}

	wf, err := e.registry.WorkflowFor(protocol.Type)
	if err != nil {
		return nil, err
	}
	current, err := e.CurrentStep(protocol)
	if err != nil {
		return nil, err
	}

	if !current.Permits(target) {
		e.countTransition(protocol, target, "invalid_transition")
		return nil, fmt.Errorf("%w: %s does not permit %s", domainwf.ErrInvalidTransition, current.Name, target)
	}

	targetDef, err := wf.Step(target)
	if err != nil {
		return nil, err
	}

	if !e.ActorAuthorized(protocol, target, actor) {
		e.countTransition(protocol, target, "unauthorized")
		return nil, fmt.Errorf("%w: step %s requires %v", domainwf.ErrUnauthorized, target, targetDef.RequiredRoles)
	}

	var next entity.Protocol
	var pending []*event.Event

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		before := snapshot(protocol)

		next = *protocol
		next.CurrentStep = target.String()
		next.Status = domainwf.StatusFor(target).String()

		description := fmt.Sprintf("Moved from %s to %s", current.Name, target)
		note := ""

		if targetDef.Handler != domainwf.HandlerNone {
			h, ok := e.handlers[targetDef.Handler]
			if !ok {
				return fmt.Errorf("no handler registered for kind %s", targetDef.Handler)
			}

			res, err := h.Execute(txCtx, handler.Request{Protocol: next, Actor: actor, Payload: payload})
			if err != nil {
				return e.wrapActionError(err)
			}

			next = res.Protocol
			if res.Description != "" {
				description = res.Description
			}
			note = res.Note
			pending = res.Events

			if res.StepOverride != "" {
				if !targetDef.Permits(res.StepOverride) {
					return fmt.Errorf("handler for %s produced unreachable step %s", target, res.StepOverride)
				}
				next.CurrentStep = res.StepOverride.String()
				next.Status = domainwf.StatusFor(res.StepOverride).String()
			}
		}

		finalDef, err := wf.Step(domainwf.Step(next.CurrentStep))
		if err != nil {
			return err
		}

		now := time.Now()
		if finalDef.Terminal() {
			next.ArchivedAt = &now
		}
		next.UpdatedAt = now

		if err := e.protocolRepo.Update(txCtx, &next, protocol.CurrentStep); err != nil {
			return err
		}

		entry := &entity.ProtocolHistory{
			ProtocolID:    next.ID,
			ActorID:       actor.AccountID,
			ActionType:    entity.HistoryActionTransition,
			Description:   description,
			PreviousState: before,
			NewState:      snapshot(&next),
			Note:          note,
			Timestamp:     now,
		}
		return e.historyRepo.Append(txCtx, entry)
	})
	if err != nil {
		e.countTransition(protocol, target, "error")
		return nil, err
	}

	e.countTransition(protocol, target, "success")

	// Events surface only now that the transaction has committed; an aborted
	// transition above returns before reaching this point. Handler events
	// join the transition's correlation chain.
	statusEvt := event.New(event.TypeStatusChanged, next.ID, map[string]interface{}{
		"previous_step": protocol.CurrentStep,
		"new_step":      next.CurrentStep,
		"status":        next.Status,
		"actor_id":      actor.AccountID,
	})
	e.dispatcher.DispatchAsync(ctx, statusEvt)
	for _, evt := range pending {
		e.dispatcher.DispatchAsync(ctx, event.NewCorrelated(evt.Type, evt.ProtocolID, evt.Payload, statusEvt.CorrelationID))
	}

	e.logger.Info("Protocol transitioned",
		zap.Int64("protocol_id", next.ID),
		zap.String("from", protocol.CurrentStep),
		zap.String("to", next.CurrentStep),
		zap.String("status", next.Status))

	return &next, nil
}

func (e *engineImpl) History(ctx context.Context, protocolID int64) ([]*entity.ProtocolHistory, error) {
	return e.historyRepo.GetByProtocolID(ctx, protocolID)
}

// wrapActionError passes the engine's own typed failures through and wraps
// everything else as an action failure
func (e *engineImpl) wrapActionError(err error) error {
	if errors.Is(err, domainwf.ErrMissingCeremonyDate) || errors.Is(err, domainwf.ErrMissingDecision) {
		return err
	}
	return &domainwf.ActionError{Cause: err}
}

func (e *engineImpl) countTransition(protocol *entity.Protocol, target domainwf.Step, result string) {
	e.metrics.Transitions.WithLabelValues(protocol.Type.String(), target.String(), result).Inc()
}

// protocolSnapshot is the attribute subset journaled before and after each
// transition
type protocolSnapshot struct {
	Step             string     `json:"step"`
	Status           string     `json:"status"`
	ApproverID       *int64     `json:"approver_id,omitempty"`
	CeremonyDate     *time.Time `json:"ceremony_date,omitempty"`
	FeeCents         *int64     `json:"fee_cents,omitempty"`
	Feedback         string     `json:"feedback,omitempty"`
	ReceiptPath      string     `json:"receipt_path,omitempty"`
	PaymentConfirmed bool       `json:"payment_confirmed,omitempty"`
}

func snapshot(p *entity.Protocol) string {
	raw, err := json.Marshal(protocolSnapshot{
		Step:             p.CurrentStep,
		Status:           p.Status,
		ApproverID:       p.ApproverID,
		CeremonyDate:     p.CeremonyDate,
		FeeCents:         p.FeeCents,
		Feedback:         p.Feedback,
		ReceiptPath:      p.ReceiptPath,
		PaymentConfirmed: p.PaymentConfirmed,
	})
	if err != nil {
		return "{}"
	}
	return string(raw)
}

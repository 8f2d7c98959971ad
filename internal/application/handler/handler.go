package handler

import (
	"context"

	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
	"github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

// Request carries everything a step action needs. Protocol is a value
// snapshot loaded by the orchestrator; handlers modify their copy and hand
// it back through Result rather than mutating shared state.
type Request struct {
	Protocol entity.Protocol
	Actor    workflow.Actor
	Payload  Payload
}

// Result is the outcome of a step action. The orchestrator applies it and
// persists exactly once. StepOverride lets decision steps land the protocol
// directly on a terminal step within the same transaction. Events collected
// here are dispatched by the orchestrator only after that transaction
// commits; an aborted transition publishes nothing.
type Result struct {
	Protocol     entity.Protocol
	StepOverride workflow.Step
	Description  string
	Note         string
	Events       []*event.Event
}

// ActionHandler is the contract every role-specific step handler implements.
// Execute dispatches internally on the protocol's current step name, which
// the orchestrator has already set to the target step.
type ActionHandler interface {
	// Kind identifies the handler in the workflow registry
	Kind() workflow.HandlerKind

	// Execute performs the step's domain work
	Execute(ctx context.Context, req Request) (*Result, error)

	// CanExecute reports whether the actor may act on this protocol at all
	// (role plus assembly scope); the orchestrator checks it before Execute
	CanExecute(actor workflow.Actor, protocol *entity.Protocol) bool

	// RequiredFields lists the payload keys the step cannot proceed without.
	// Consumed by the form layer for validation, not by the orchestrator.
	RequiredFields(step workflow.Step) []string

	// OptionalFields lists payload keys the step understands but tolerates missing
	OptionalFields(step workflow.Step) []string
}

// Set is the closed collection of handlers the orchestrator dispatches to
type Set map[workflow.HandlerKind]ActionHandler

// NewSet builds a handler set from the given handlers
func NewSet(handlers ...ActionHandler) Set {
	set := make(Set, len(handlers))
	for _, h := range handlers {
		set[h.Kind()] = h
	}
	return set
}

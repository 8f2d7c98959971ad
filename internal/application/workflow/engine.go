package workflow

import (
	"context"

	"github.com/ordem-digital/protocol-engine/internal/application/handler"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	domainwf "github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

// CreateRequest carries everything needed to open a protocol in the initial
// step of its type's workflow
type CreateRequest struct {
	Type       entity.ProtocolType
	AssemblyID int64
	Actor      domainwf.Actor
	Payload    handler.Payload
}

// Orchestrator drives protocols through their workflows. It is the only
// component allowed to mutate protocol state; every transition runs in one
// atomic unit and appends exactly one history entry.
type Orchestrator interface {
	// CurrentStep resolves the protocol's stored step (or the workflow's
	// initial step if unset) against the registry
	CurrentStep(protocol *entity.Protocol) (domainwf.StepDefinition, error)

	// CanTransition reports whether the target step is directly reachable
	// from the protocol's current step
	CanTransition(protocol *entity.Protocol, target domainwf.Step) bool

	// ActorAuthorized reports whether the actor holds a role required by the
	// target step and passes the step handler's scope check
	ActorAuthorized(protocol *entity.Protocol, target domainwf.Step, actor domainwf.Actor) bool

	// CreateProtocol opens a protocol in the initial step, executing the
	// initial step's handler under the same role check as a transition
	CreateProtocol(ctx context.Context, req CreateRequest) (*entity.Protocol, error)

	// TransitionTo validates and executes one workflow transition
	TransitionTo(ctx context.Context, protocolID int64, target domainwf.Step, actor domainwf.Actor, payload handler.Payload) (*entity.Protocol, error)

	// History returns the protocol's transition journal, oldest first
	History(ctx context.Context, protocolID int64) ([]*entity.ProtocolHistory, error)
}

package workflow

import (
	"fmt"

	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
)

// HandlerKind identifies which step action handler a step is bound to.
// The set is closed; the registry references handlers by kind rather than
// resolving them dynamically.
type HandlerKind string

const (
	HandlerNone            HandlerKind = ""
	HandlerAssemblyAdmin   HandlerKind = "ASSEMBLY_ADMIN"
	HandlerJurisdiction    HandlerKind = "JURISDICTION_MEMBER"
	HandlerHonorsPresident HandlerKind = "HONORS_PRESIDENT"
)

// StepDefinition is the immutable definition of one workflow step.
// RequiredRoles are the roles entitled to drive a transition into the step;
// an empty list makes the step passive. A step with an empty NextSteps set
// is terminal.
type StepDefinition struct {
	Name          Step
	Label         string
	RequiredRoles []string
	Handler       HandlerKind
	NextSteps     []Step
}

// Terminal returns true if no further transitions leave the step
func (d StepDefinition) Terminal() bool {
	return len(d.NextSteps) == 0
}

// Permits returns true if the target step is directly reachable
func (d StepDefinition) Permits(target Step) bool {
	for _, next := range d.NextSteps {
		if next == target {
			return true
		}
	}
	return false
}

// WorkflowDefinition is the ordered step graph for one protocol type
type WorkflowDefinition struct {
	Type        entity.ProtocolType
	InitialStep Step
	steps       map[Step]StepDefinition
}

// Step resolves a step definition by name
func (w *WorkflowDefinition) Step(name Step) (StepDefinition, error) {
	def, ok := w.steps[name]
	if !ok {
		return StepDefinition{}, fmt.Errorf("%w: %s not in workflow for %s", ErrInvalidStep, name, w.Type)
	}
	return def, nil
}

// Steps returns every step name in the workflow
func (w *WorkflowDefinition) Steps() []Step {
	names := make([]Step, 0, len(w.steps))
	for name := range w.steps {
		names = append(names, name)
	}
	return names
}

// Registry is the static mapping from protocol type to workflow definition.
// It is fixed configuration built once at process start; no runtime mutation
// operation exists.
type Registry struct {
	workflows map[entity.ProtocolType]*WorkflowDefinition
}

// WorkflowFor resolves the workflow definition for a protocol type
func (r *Registry) WorkflowFor(protocolType entity.ProtocolType) (*WorkflowDefinition, error) {
	wf, ok := r.workflows[protocolType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProtocolType, protocolType)
	}
	return wf, nil
}

// Types returns every protocol type with a registered workflow
func (r *Registry) Types() []entity.ProtocolType {
	types := make([]entity.ProtocolType, 0, len(r.workflows))
	for t := range r.workflows {
		types = append(types, t)
	}
	return types
}

// RegistryBuilder assembles an immutable Registry
type RegistryBuilder struct {
	workflows map[entity.ProtocolType]*workflowBuilder
}

type workflowBuilder struct {
	parent       *RegistryBuilder
	protocolType entity.ProtocolType
	initialStep  Step
	steps        map[Step]StepDefinition
	order        []Step
}

// NewRegistryBuilder creates an empty registry builder
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{
		workflows: make(map[entity.ProtocolType]*workflowBuilder),
	}
}

// Workflow starts configuring the workflow for a protocol type
func (b *RegistryBuilder) Workflow(protocolType entity.ProtocolType) *workflowBuilder {
	if !protocolType.IsValid() {
		panic(fmt.Sprintf("invalid protocol type: %s", protocolType))
	}

	wb, exists := b.workflows[protocolType]
	if !exists {
		wb = &workflowBuilder{
			parent:       b,
			protocolType: protocolType,
			steps:        make(map[Step]StepDefinition),
		}
		b.workflows[protocolType] = wb
	}

	return wb
}

// Step adds a step definition to the workflow. The first step added becomes
// the workflow's initial step.
func (wb *workflowBuilder) Step(def StepDefinition) *workflowBuilder {
	if !def.Name.IsValid() {
		panic(fmt.Sprintf("invalid step: %s", def.Name))
	}
	for _, next := range def.NextSteps {
		if !next.IsValid() {
			panic(fmt.Sprintf("invalid next step %s on %s", next, def.Name))
		}
	}

	if len(wb.order) == 0 {
		wb.initialStep = def.Name
	}
	wb.steps[def.Name] = def
	wb.order = append(wb.order, def.Name)

	return wb
}

// Build finishes a fluent chain, delegating to the owning registry builder
func (wb *workflowBuilder) Build() *Registry {
	return wb.parent.Build()
}

// Build produces the immutable registry. It verifies that every next-step
// reference resolves within its own workflow.
func (b *RegistryBuilder) Build() *Registry {
	workflows := make(map[entity.ProtocolType]*WorkflowDefinition, len(b.workflows))

	for protocolType, wb := range b.workflows {
		steps := make(map[Step]StepDefinition, len(wb.steps))
		for name, def := range wb.steps {
			for _, next := range def.NextSteps {
				if _, ok := wb.steps[next]; !ok {
					panic(fmt.Sprintf("workflow %s: step %s permits unknown step %s", protocolType, name, next))
				}
			}
			steps[name] = def
		}

		workflows[protocolType] = &WorkflowDefinition{
			Type:        protocolType,
			InitialStep: wb.initialStep,
			steps:       steps,
		}
	}

	return &Registry{workflows: workflows}
}

package workflow

import (
	"testing"

	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	domainwf "github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

func TestBuildRegistryCoversEveryProtocolType(t *testing.T) {
	registry := BuildRegistry()

	types := []entity.ProtocolType{
		entity.TypeInitiation,
		entity.TypeMajority,
		entity.TypeRemoval,
		entity.TypePositionAssembly,
		entity.TypePositionCouncil,
		entity.TypeHonorOfTheYear,
		entity.TypeHeartOfColors,
		entity.TypeGrandCross,
	}

	for _, protocolType := range types {
		wf, err := registry.WorkflowFor(protocolType)
		if err != nil {
			t.Errorf("no workflow for %s: %v", protocolType, err)
			continue
		}
		if wf.InitialStep != domainwf.StepCreation {
			t.Errorf("%s: initial step = %s, want %s", protocolType, wf.InitialStep, domainwf.StepCreation)
		}
	}
}

func TestBuildRegistrySimplePath(t *testing.T) {
	registry := BuildRegistry()
	wf, err := registry.WorkflowFor(entity.TypeMajority)
	if err != nil {
		t.Fatalf("WorkflowFor returned error: %v", err)
	}

	path := []struct {
		from domainwf.Step
		to   domainwf.Step
	}{
		{domainwf.StepCreation, domainwf.StepAwaitingApproval},
		{domainwf.StepAwaitingApproval, domainwf.StepApproval},
		{domainwf.StepApproval, domainwf.StepCompleted},
		{domainwf.StepApproval, domainwf.StepRejected},
		{domainwf.StepRejected, domainwf.StepCreation},
	}

	for _, hop := range path {
		def, err := wf.Step(hop.from)
		if err != nil {
			t.Fatalf("step %s missing: %v", hop.from, err)
		}
		if !def.Permits(hop.to) {
			t.Errorf("%s should permit %s", hop.from, hop.to)
		}
	}

	completed, err := wf.Step(domainwf.StepCompleted)
	if err != nil {
		t.Fatalf("completed step missing: %v", err)
	}
	if !completed.Terminal() {
		t.Error("completed step should be terminal")
	}
}

func TestBuildRegistryHonorPath(t *testing.T) {
	registry := BuildRegistry()
	wf, err := registry.WorkflowFor(entity.TypeHeartOfColors)
	if err != nil {
		t.Fatalf("WorkflowFor returned error: %v", err)
	}

	path := []struct {
		from domainwf.Step
		to   domainwf.Step
	}{
		{domainwf.StepCreation, domainwf.StepHonorsApproval},
		{domainwf.StepHonorsApproval, domainwf.StepFeeDefinition},
		{domainwf.StepHonorsApproval, domainwf.StepRejected},
		{domainwf.StepFeeDefinition, domainwf.StepAwaitingPayment},
		{domainwf.StepAwaitingPayment, domainwf.StepFinalApproval},
		{domainwf.StepFinalApproval, domainwf.StepCompleted},
		{domainwf.StepFinalApproval, domainwf.StepRejected},
	}

	for _, hop := range path {
		def, err := wf.Step(hop.from)
		if err != nil {
			t.Fatalf("step %s missing: %v", hop.from, err)
		}
		if !def.Permits(hop.to) {
			t.Errorf("%s should permit %s", hop.from, hop.to)
		}
	}

	// Honor workflows skip the plain approval step entirely
	if _, err := wf.Step(domainwf.StepApproval); err == nil {
		t.Error("honor workflow should not contain the plain approval step")
	}
}

func TestBuildRegistryStepRoles(t *testing.T) {
	registry := BuildRegistry()

	tests := []struct {
		protocolType entity.ProtocolType
		step         domainwf.Step
		role         string
		handler      domainwf.HandlerKind
	}{
		{entity.TypeInitiation, domainwf.StepCreation, entity.RoleAssemblyAdmin, domainwf.HandlerAssemblyAdmin},
		{entity.TypeInitiation, domainwf.StepApproval, entity.RoleJurisdictionMember, domainwf.HandlerJurisdiction},
		{entity.TypeGrandCross, domainwf.StepHonorsApproval, entity.RoleHonorsPresident, domainwf.HandlerHonorsPresident},
		{entity.TypeGrandCross, domainwf.StepFeeDefinition, entity.RoleJurisdictionMember, domainwf.HandlerJurisdiction},
		{entity.TypeGrandCross, domainwf.StepAwaitingPayment, entity.RoleAssemblyAdmin, domainwf.HandlerAssemblyAdmin},
		{entity.TypeGrandCross, domainwf.StepFinalApproval, entity.RoleJurisdictionMember, domainwf.HandlerJurisdiction},
	}

	for _, tt := range tests {
		wf, err := registry.WorkflowFor(tt.protocolType)
		if err != nil {
			t.Fatalf("WorkflowFor(%s) returned error: %v", tt.protocolType, err)
		}
		def, err := wf.Step(tt.step)
		if err != nil {
			t.Fatalf("%s/%s missing: %v", tt.protocolType, tt.step, err)
		}

		found := false
		for _, role := range def.RequiredRoles {
			if role == tt.role {
				found = true
			}
		}
		if !found {
			t.Errorf("%s/%s: required roles %v do not include %s", tt.protocolType, tt.step, def.RequiredRoles, tt.role)
		}
		if def.Handler != tt.handler {
			t.Errorf("%s/%s: handler = %s, want %s", tt.protocolType, tt.step, def.Handler, tt.handler)
		}
	}
}

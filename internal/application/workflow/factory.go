package workflow

import (
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	domainwf "github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

// BuildRegistry assembles the static workflow table for every protocol type.
// It is fixed configuration, built once at process start.
//
// Simple types run creation → awaiting-approval → approval; honor types
// insert the honors committee review, fee definition and payment steps.
// Rejected protocols may be resubmitted, re-entering creation.
func BuildRegistry() *domainwf.Registry {
	b := domainwf.NewRegistryBuilder()

	simpleTypes := []entity.ProtocolType{
		entity.TypeInitiation,
		entity.TypeMajority,
		entity.TypeRemoval,
		entity.TypePositionAssembly,
		entity.TypePositionCouncil,
	}
	for _, t := range simpleTypes {
		b.Workflow(t).
			Step(domainwf.StepDefinition{
				Name:          domainwf.StepCreation,
				Label:         "Creation",
				RequiredRoles: []string{entity.RoleAssemblyAdmin},
				Handler:       domainwf.HandlerAssemblyAdmin,
				NextSteps:     []domainwf.Step{domainwf.StepAwaitingApproval},
			}).
			Step(domainwf.StepDefinition{
				Name:          domainwf.StepAwaitingApproval,
				Label:         "Awaiting Approval",
				RequiredRoles: []string{entity.RoleAssemblyAdmin},
				NextSteps:     []domainwf.Step{domainwf.StepApproval},
			}).
			Step(domainwf.StepDefinition{
				Name:          domainwf.StepApproval,
				Label:         "Jurisdiction Approval",
				RequiredRoles: []string{entity.RoleJurisdictionMember},
				Handler:       domainwf.HandlerJurisdiction,
				NextSteps:     []domainwf.Step{domainwf.StepCompleted, domainwf.StepRejected},
			}).
			Step(domainwf.StepDefinition{
				Name:  domainwf.StepCompleted,
				Label: "Completed",
			}).
			Step(domainwf.StepDefinition{
				Name:      domainwf.StepRejected,
				Label:     "Rejected",
				NextSteps: []domainwf.Step{domainwf.StepCreation},
			})
	}

	honorTypes := []entity.ProtocolType{
		entity.TypeHonorOfTheYear,
		entity.TypeHeartOfColors,
		entity.TypeGrandCross,
	}
	for _, t := range honorTypes {
		b.Workflow(t).
			Step(domainwf.StepDefinition{
				Name:          domainwf.StepCreation,
				Label:         "Creation",
				RequiredRoles: []string{entity.RoleAssemblyAdmin},
				Handler:       domainwf.HandlerAssemblyAdmin,
				NextSteps:     []domainwf.Step{domainwf.StepHonorsApproval},
			}).
			Step(domainwf.StepDefinition{
				Name:          domainwf.StepHonorsApproval,
				Label:         "Honors Committee Review",
				RequiredRoles: []string{entity.RoleHonorsPresident},
				Handler:       domainwf.HandlerHonorsPresident,
				NextSteps:     []domainwf.Step{domainwf.StepFeeDefinition, domainwf.StepRejected},
			}).
			Step(domainwf.StepDefinition{
				Name:          domainwf.StepFeeDefinition,
				Label:         "Fee Definition",
				RequiredRoles: []string{entity.RoleJurisdictionMember},
				Handler:       domainwf.HandlerJurisdiction,
				NextSteps:     []domainwf.Step{domainwf.StepAwaitingPayment},
			}).
			Step(domainwf.StepDefinition{
				Name:          domainwf.StepAwaitingPayment,
				Label:         "Awaiting Payment",
				RequiredRoles: []string{entity.RoleAssemblyAdmin},
				Handler:       domainwf.HandlerAssemblyAdmin,
				NextSteps:     []domainwf.Step{domainwf.StepFinalApproval},
			}).
			Step(domainwf.StepDefinition{
				Name:          domainwf.StepFinalApproval,
				Label:         "Final Jurisdiction Approval",
				RequiredRoles: []string{entity.RoleJurisdictionMember},
				Handler:       domainwf.HandlerJurisdiction,
				NextSteps:     []domainwf.Step{domainwf.StepCompleted, domainwf.StepRejected},
			}).
			Step(domainwf.StepDefinition{
				Name:  domainwf.StepCompleted,
				Label: "Completed",
			}).
			Step(domainwf.StepDefinition{
				Name:      domainwf.StepRejected,
				Label:     "Rejected",
				NextSteps: []domainwf.Step{domainwf.StepCreation},
			})
	}

	return b.Build()
}

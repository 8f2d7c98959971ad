package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/service"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
	"github.com/ordem-digital/protocol-engine/internal/domain/workflow"
)

type jurisdictionFixture struct {
	handler    *JurisdictionMemberHandler
	initiation *stubInitiationService
	majority   *stubMajorityService
	removal    *stubRemovalService
	assembly   *stubPositionService
	council    *stubPositionService
	honors     *stubHonorService
}

func newJurisdictionFixture(t *testing.T) *jurisdictionFixture {
	t.Helper()

	f := &jurisdictionFixture{
		initiation: &stubInitiationService{},
		majority:   &stubMajorityService{outcome: &service.CeremonyOutcome{}},
		removal:    &stubRemovalService{},
		assembly:   &stubPositionService{},
		council:    &stubPositionService{},
		honors:     &stubHonorService{},
	}

	logger, _ := zap.NewDevelopment()
	f.handler = NewJurisdictionMemberHandler(
		f.initiation, f.majority, f.removal, f.assembly, f.council, f.honors, logger)
	return f
}

func jurisdictionRequest(protocolType entity.ProtocolType, step workflow.Step, payload Payload) Request {
	return Request{
		Protocol: entity.Protocol{
			ID:          1,
			Code:        "PROTO-1",
			Type:        protocolType,
			CurrentStep: step.String(),
			AssemblyID:  1,
			MemberData:  `{"member_ids":[1,2]}`,
		},
		Actor:   workflow.Actor{AccountID: 20, Roles: []string{entity.RoleJurisdictionMember}},
		Payload: payload,
	}
}

func TestJurisdictionCanExecute(t *testing.T) {
	f := newJurisdictionFixture(t)
	protocol := &entity.Protocol{AssemblyID: 1}

	member := workflow.Actor{AccountID: 20, Roles: []string{entity.RoleJurisdictionMember}}
	assert.True(t, f.handler.CanExecute(member, protocol))

	admin := workflow.Actor{AccountID: 10, Roles: []string{entity.RoleAssemblyAdmin}}
	assert.False(t, f.handler.CanExecute(admin, protocol))
}

func TestJurisdictionDecisionRequiresApprovedFlag(t *testing.T) {
	f := newJurisdictionFixture(t)

	req := jurisdictionRequest(entity.TypeRemoval, workflow.StepApproval, Payload{})
	_, err := f.handler.Execute(context.Background(), req)
	assert.ErrorIs(t, err, workflow.ErrMissingDecision)
}

func TestJurisdictionRejection(t *testing.T) {
	f := newJurisdictionFixture(t)

	req := jurisdictionRequest(entity.TypeRemoval, workflow.StepApproval, Payload{
		"approved": false,
		"feedback": "insufficient justification",
	})

	res, err := f.handler.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, workflow.StepRejected, res.StepOverride)
	assert.Equal(t, "insufficient justification", res.Protocol.Feedback)
	assert.Equal(t, 0, f.removal.calls)
}

func TestJurisdictionApprovalRunsRemoval(t *testing.T) {
	f := newJurisdictionFixture(t)
	f.removal.removed = []int64{1, 2}

	req := jurisdictionRequest(entity.TypeRemoval, workflow.StepApproval, Payload{"approved": true})

	res, err := f.handler.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, workflow.StepCompleted, res.StepOverride)
	assert.Equal(t, 1, f.removal.calls)
	require.NotNil(t, res.Protocol.ApproverID)
	assert.Equal(t, int64(20), *res.Protocol.ApproverID)
	assert.NotNil(t, res.Protocol.ApprovedAt)
	assert.Contains(t, res.Note, "2 members discharged")
}

func TestJurisdictionMajorityApprovalNeedsCeremonyDate(t *testing.T) {
	f := newJurisdictionFixture(t)

	req := jurisdictionRequest(entity.TypeMajority, workflow.StepApproval, Payload{"approved": true})
	_, err := f.handler.Execute(context.Background(), req)
	assert.ErrorIs(t, err, workflow.ErrMissingCeremonyDate)
	assert.Equal(t, 0, f.majority.calls)
}

func TestJurisdictionMajorityApproval(t *testing.T) {
	f := newJurisdictionFixture(t)
	f.majority.outcome = &service.CeremonyOutcome{Promoted: []int64{1, 2}}

	req := jurisdictionRequest(entity.TypeMajority, workflow.StepApproval, Payload{
		"approved":      true,
		"ceremony_date": "2026-05-20",
	})

	res, err := f.handler.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, workflow.StepCompleted, res.StepOverride)
	assert.Equal(t, 1, f.majority.calls)
	assert.Equal(t, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC), f.majority.ceremonyDate)
	require.NotNil(t, res.Protocol.CeremonyDate)
}

func TestJurisdictionApprovalDispatchesByType(t *testing.T) {
	f := newJurisdictionFixture(t)
	f.honors.granted = []int64{1, 2}

	tests := []struct {
		name         string
		protocolType entity.ProtocolType
		memberData   string
		check        func(t *testing.T)
	}{
		{
			"initiation",
			entity.TypeInitiation,
			`{"members":[{"name":"Ana","cpf":"123.456.789-09","email":"ana@example.com"}]}`,
			func(t *testing.T) { assert.Equal(t, 1, f.initiation.calls) },
		},
		{
			"assembly positions",
			entity.TypePositionAssembly,
			`{"assignments":{"WORTHY_ADVISOR":1}}`,
			func(t *testing.T) { assert.Equal(t, 1, f.assembly.calls) },
		},
		{
			"council positions",
			entity.TypePositionCouncil,
			`{"assignments":{"PRESIDENT":1}}`,
			func(t *testing.T) { assert.Equal(t, 1, f.council.calls) },
		},
		{
			"honor grant",
			entity.TypeGrandCross,
			`{"member_ids":[1,2]}`,
			func(t *testing.T) { assert.Equal(t, 1, f.honors.grantCalls) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := workflow.StepApproval
			if tt.protocolType.IsHonor() {
				step = workflow.StepFinalApproval
			}
			req := jurisdictionRequest(tt.protocolType, step, Payload{"approved": true})
			req.Protocol.MemberData = tt.memberData

			res, err := f.handler.Execute(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, workflow.StepCompleted, res.StepOverride)
			tt.check(t)
		})
	}
}

func TestJurisdictionApprovalCarriesServiceEvents(t *testing.T) {
	f := newJurisdictionFixture(t)
	f.initiation.results = []service.InitiationResult{{Success: true, Name: "Ana", MemberID: 1}}
	f.initiation.events = []*event.Event{
		event.New(event.TypeCredentialIssued, 1, map[string]interface{}{"member_number": "2026070001"}),
	}

	req := jurisdictionRequest(entity.TypeInitiation, workflow.StepApproval, Payload{"approved": true})
	req.Protocol.MemberData = `{"members":[{"name":"Ana","cpf":"123.456.789-09","email":"ana@example.com"}]}`

	res, err := f.handler.Execute(context.Background(), req)
	require.NoError(t, err)

	// service events ride on the result for the orchestrator to publish
	// after commit; the handler itself dispatches nothing
	require.Len(t, res.Events, 1)
	assert.Equal(t, event.TypeCredentialIssued, res.Events[0].Type)
}

func TestJurisdictionHonorGrantYear(t *testing.T) {
	f := newJurisdictionFixture(t)
	f.honors.granted = []int64{1}

	req := jurisdictionRequest(entity.TypeHonorOfTheYear, workflow.StepFinalApproval, Payload{
		"approved": true,
		"year":     float64(2025),
	})

	_, err := f.handler.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2025, f.honors.grantYear)
}

func TestJurisdictionFeeDefinition(t *testing.T) {
	f := newJurisdictionFixture(t)

	req := jurisdictionRequest(entity.TypeGrandCross, workflow.StepFeeDefinition, Payload{
		"fee_cents": float64(15000),
		"fee_notes": "lifetime honor fee",
	})

	res, err := f.handler.Execute(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, res.Protocol.FeeCents)
	assert.Equal(t, int64(15000), *res.Protocol.FeeCents)
	assert.Equal(t, "lifetime honor fee", res.Protocol.FeeNotes)
	assert.Equal(t, workflow.Step(""), res.StepOverride)
}

func TestJurisdictionFeeDefinitionRequiresAmount(t *testing.T) {
	f := newJurisdictionFixture(t)

	tests := []struct {
		name    string
		payload Payload
	}{
		{"missing fee", Payload{}},
		{"negative fee", Payload{"fee_cents": float64(-100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jurisdictionRequest(entity.TypeGrandCross, workflow.StepFeeDefinition, tt.payload)
			_, err := f.handler.Execute(context.Background(), req)
			assert.Error(t, err)
		})
	}
}

func TestJurisdictionRequiredFields(t *testing.T) {
	f := newJurisdictionFixture(t)

	assert.Equal(t, []string{"approved"}, f.handler.RequiredFields(workflow.StepApproval))
	assert.Equal(t, []string{"approved"}, f.handler.RequiredFields(workflow.StepFinalApproval))
	assert.Equal(t, []string{"fee_cents"}, f.handler.RequiredFields(workflow.StepFeeDefinition))
	assert.Nil(t, f.handler.RequiredFields(workflow.StepCreation))
}

package handler

import (
	"context"
	"time"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/application/service"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
)

// Stub domain services recording the calls the handlers make

type stubInitiationService struct {
	results []service.InitiationResult
	events  []*event.Event
	err     error
	calls   int
}

func (s *stubInitiationService) ProcessProtocolCompletion(ctx context.Context, protocol *entity.Protocol, actorID int64) ([]service.InitiationResult, []*event.Event, error) {
	s.calls++
	return s.results, s.events, s.err
}

type stubMajorityService struct {
	outcome      *service.CeremonyOutcome
	events       []*event.Event
	err          error
	calls        int
	ceremonyDate time.Time
}

func (s *stubMajorityService) ProcessCeremony(ctx context.Context, protocol *entity.Protocol, ceremonyDate time.Time) (*service.CeremonyOutcome, []*event.Event, error) {
	s.calls++
	s.ceremonyDate = ceremonyDate
	return s.outcome, s.events, s.err
}

type stubRemovalService struct {
	removed []int64
	err     error
	calls   int
}

func (s *stubRemovalService) ProcessRemoval(ctx context.Context, protocol *entity.Protocol) ([]int64, error) {
	s.calls++
	return s.removed, s.err
}

type stubPositionService struct {
	err         error
	calls       int
	assignments map[string]int64
}

func (s *stubPositionService) AssignPositions(ctx context.Context, assemblyID int64, assignments map[string]int64, protocolID, actorID int64) error {
	s.calls++
	s.assignments = assignments
	return s.err
}

type stubHonorService struct {
	review      *service.HonorBatchReview
	reviewErr   error
	granted     []int64
	grantErr    error
	reviewCalls int
	grantCalls  int
	grantYear   int
}

func (s *stubHonorService) ReviewBatch(ctx context.Context, honorType string, memberIDs []int64, year int) (*service.HonorBatchReview, error) {
	s.reviewCalls++
	return s.review, s.reviewErr
}

func (s *stubHonorService) GrantHonors(ctx context.Context, protocol *entity.Protocol, year int) ([]int64, error) {
	s.grantCalls++
	s.grantYear = year
	return s.granted, s.grantErr
}

type stubReceiptInspector struct {
	info *port.ReceiptInfo
	err  error
	path string
}

func (s *stubReceiptInspector) Inspect(path string) (*port.ReceiptInfo, error) {
	s.path = path
	if s.err != nil {
		return nil, s.err
	}
	if s.info != nil {
		return s.info, nil
	}
	return &port.ReceiptInfo{Pages: 1, FileSize: 1024}, nil
}

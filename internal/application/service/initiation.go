package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
	"github.com/ordem-digital/protocol-engine/pkg/utils"
)

const tempPasswordLength = 12

// InitiationResult is the per-entry outcome of processing an initiation
// protocol. Entry failures are collected, never fatal to the batch.
type InitiationResult struct {
	Success  bool   `json:"success"`
	Name     string `json:"name"`
	MemberID int64  `json:"member_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// InitiationService creates member and account records when an initiation
// protocol completes. Credential events are returned to the caller, not
// dispatched: the orchestrator publishes them once the enclosing transaction
// commits.
type InitiationService interface {
	ProcessProtocolCompletion(ctx context.Context, protocol *entity.Protocol, actorID int64) ([]InitiationResult, []*event.Event, error)
}

type initiationServiceImpl struct {
	memberRepo   port.MemberRepository
	accountRepo  port.AccountRepository
	assemblyRepo port.AssemblyRepository
	historyRepo  port.HistoryRepository
	logger       *zap.Logger
}

// NewInitiationService creates a new InitiationService
func NewInitiationService(
	memberRepo port.MemberRepository,
	accountRepo port.AccountRepository,
	assemblyRepo port.AssemblyRepository,
	historyRepo port.HistoryRepository,
	logger *zap.Logger,
) InitiationService {
	return &initiationServiceImpl{
		memberRepo:   memberRepo,
		accountRepo:  accountRepo,
		assemblyRepo: assemblyRepo,
		historyRepo:  historyRepo,
		logger:       logger,
	}
}

// ProcessProtocolCompletion creates one member plus linked account per entry
// in the protocol payload. Each entry gets a generated member number
// (year + 2-digit assembly code + 4-digit sequence) and a temporary password
// carried on a credential event for post-commit delivery.
func (s *initiationServiceImpl) ProcessProtocolCompletion(ctx context.Context, protocol *entity.Protocol, actorID int64) ([]InitiationResult, []*event.Event, error) {
	entries, err := NewMemberEntries(protocol)
	if err != nil {
		return nil, nil, err
	}

	assembly, err := s.assemblyRepo.GetByID(ctx, protocol.AssemblyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load assembly %d: %w", protocol.AssemblyID, err)
	}
	if assembly == nil {
		return nil, nil, fmt.Errorf("assembly %d not found", protocol.AssemblyID)
	}

	year := time.Now().Year()
	sequence, err := s.memberRepo.CountByAssemblyAndYear(ctx, assembly.ID, year)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count members for numbering: %w", err)
	}

	initiationDate := protocol.CeremonyDate
	results := make([]InitiationResult, 0, len(entries))
	var events []*event.Event

	for _, entry := range entries {
		sequence++
		result, credential := s.createMember(ctx, protocol, assembly, entry, year, sequence, initiationDate)
		if !result.Success {
			sequence--
		}
		if credential != nil {
			events = append(events, credential)
		}
		results = append(results, result)
	}

	s.appendCompletionHistory(ctx, protocol, actorID, results)

	return results, events, nil
}

func (s *initiationServiceImpl) createMember(
	ctx context.Context,
	protocol *entity.Protocol,
	assembly *entity.Assembly,
	entry entity.NewMemberEntry,
	year, sequence int,
	initiationDate *time.Time,
) (InitiationResult, *event.Event) {
	fail := func(err error) (InitiationResult, *event.Event) {
		s.logger.Warn("Skipping initiation entry",
			zap.Int64("protocol_id", protocol.ID),
			zap.String("name", entry.Name),
			zap.Error(err))
		return InitiationResult{Success: false, Name: entry.Name, Error: err.Error()}, nil
	}

	if entry.Name == "" || entry.CPF == "" || entry.Email == "" {
		return fail(fmt.Errorf("name, CPF and email are required"))
	}
	if err := utils.ValidateEmail(entry.Email); err != nil {
		return fail(err)
	}
	if err := utils.ValidateCPF(entry.CPF); err != nil {
		return fail(err)
	}
	cpf := utils.NormalizeCPF(entry.CPF)

	existing, err := s.memberRepo.GetByCPF(ctx, cpf)
	if err != nil {
		return fail(fmt.Errorf("failed to check CPF: %w", err))
	}
	if existing != nil {
		return fail(fmt.Errorf("duplicate CPF %s already on file", cpf))
	}

	if account, err := s.accountRepo.GetByEmail(ctx, entry.Email); err != nil {
		return fail(fmt.Errorf("failed to check email: %w", err))
	} else if account != nil {
		return fail(fmt.Errorf("email %s already in use", entry.Email))
	}

	tempPassword, err := generateTempPassword()
	if err != nil {
		return fail(fmt.Errorf("failed to generate password: %w", err))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("failed to hash password: %w", err))
	}

	now := time.Now()
	account := &entity.Account{
		Name:         entry.Name,
		Email:        entry.Email,
		PasswordHash: string(hash),
		Type:         entity.MemberTypeActiveGirl,
		Roles:        []string{},
		AssemblyID:   &assembly.ID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return fail(fmt.Errorf("failed to create account: %w", err))
	}

	memberNumber := fmt.Sprintf("%d%s%04d", year, assembly.Code, sequence)
	member := &entity.Member{
		AssemblyID:     assembly.ID,
		AccountID:      &account.ID,
		Name:           entry.Name,
		CPF:            cpf,
		Email:          entry.Email,
		MemberNumber:   memberNumber,
		Status:         entity.MemberStatusActive,
		Type:           entity.MemberTypeActiveGirl,
		InitiationDate: initiationDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return fail(fmt.Errorf("failed to create member: %w", err))
	}

	// First-access credentials ride on the event; delivery stays
	// fire-and-forget once the orchestrator dispatches it after commit.
	credential := event.New(event.TypeCredentialIssued, protocol.ID, map[string]interface{}{
		"account_id":    account.ID,
		"name":          entry.Name,
		"email":         entry.Email,
		"member_number": memberNumber,
		"temp_password": tempPassword,
	})

	s.logger.Info("Member initiated",
		zap.Int64("protocol_id", protocol.ID),
		zap.Int64("member_id", member.ID),
		zap.String("member_number", memberNumber))

	return InitiationResult{Success: true, Name: entry.Name, MemberID: member.ID}, credential
}

func (s *initiationServiceImpl) appendCompletionHistory(ctx context.Context, protocol *entity.Protocol, actorID int64, results []InitiationResult) {
	created := 0
	for _, r := range results {
		if r.Success {
			created++
		}
	}

	detail, err := json.Marshal(results)
	if err != nil {
		detail = []byte("[]")
	}

	entry := &entity.ProtocolHistory{
		ProtocolID:  protocol.ID,
		ActorID:     actorID,
		ActionType:  entity.HistoryActionCompletion,
		Description: fmt.Sprintf("Initiation processed: %d of %d members created", created, len(results)),
		NewState:    string(detail),
		Timestamp:   time.Now(),
	}
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append initiation completion history",
			zap.Int64("protocol_id", protocol.ID),
			zap.Error(err))
	}
}

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateTempPassword() (string, error) {
	buf := make([]byte, tempPasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}

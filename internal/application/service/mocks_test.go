package service

import (
	"context"
	"time"

	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
	"github.com/ordem-digital/protocol-engine/internal/domain/event"
)

// Map-backed mock repositories shared by the service tests

type mockMemberRepo struct {
	members map[int64]*entity.Member
	nextID  int64
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{members: make(map[int64]*entity.Member), nextID: 1}
}

func (m *mockMemberRepo) add(member *entity.Member) *entity.Member {
	if member.ID == 0 {
		member.ID = m.nextID
		m.nextID++
	} else if member.ID >= m.nextID {
		m.nextID = member.ID + 1
	}
	m.members[member.ID] = member
	return member
}

func (m *mockMemberRepo) Create(ctx context.Context, member *entity.Member) error {
	member.ID = m.nextID
	m.nextID++
	stored := *member
	m.members[member.ID] = &stored
	return nil
}

func (m *mockMemberRepo) GetByID(ctx context.Context, id int64) (*entity.Member, error) {
	member, ok := m.members[id]
	if !ok {
		return nil, nil
	}
	copied := *member
	return &copied, nil
}

func (m *mockMemberRepo) GetByCPF(ctx context.Context, cpf string) (*entity.Member, error) {
	for _, member := range m.members {
		if member.CPF == cpf {
			copied := *member
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockMemberRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Member, error) {
	var out []*entity.Member
	for _, id := range ids {
		if member, ok := m.members[id]; ok {
			copied := *member
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockMemberRepo) ListByAssembly(ctx context.Context, assemblyID int64) ([]*entity.Member, error) {
	var out []*entity.Member
	for _, member := range m.members {
		if member.AssemblyID == assemblyID {
			copied := *member
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockMemberRepo) Update(ctx context.Context, member *entity.Member) error {
	stored := *member
	m.members[member.ID] = &stored
	return nil
}

func (m *mockMemberRepo) CountByAssemblyAndYear(ctx context.Context, assemblyID int64, year int) (int, error) {
	count := 0
	for _, member := range m.members {
		if member.AssemblyID == assemblyID && member.CreatedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

type mockAccountRepo struct {
	accounts map[int64]*entity.Account
	nextID   int64
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{accounts: make(map[int64]*entity.Account), nextID: 1}
}

func (m *mockAccountRepo) add(account *entity.Account) *entity.Account {
	if account.ID == 0 {
		account.ID = m.nextID
		m.nextID++
	} else if account.ID >= m.nextID {
		m.nextID = account.ID + 1
	}
	m.accounts[account.ID] = account
	return account
}

func (m *mockAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	account.ID = m.nextID
	m.nextID++
	stored := *account
	m.accounts[account.ID] = &stored
	return nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	for _, account := range m.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) UpdateType(ctx context.Context, id int64, accountType string) error {
	if account, ok := m.accounts[id]; ok {
		account.Type = accountType
	}
	return nil
}

func (m *mockAccountRepo) UpdateRoles(ctx context.Context, id int64, roles []string) error {
	if account, ok := m.accounts[id]; ok {
		account.Roles = roles
	}
	return nil
}

type mockAssemblyRepo struct {
	assemblies map[int64]*entity.Assembly
}

func newMockAssemblyRepo(assemblies ...*entity.Assembly) *mockAssemblyRepo {
	m := &mockAssemblyRepo{assemblies: make(map[int64]*entity.Assembly)}
	for _, a := range assemblies {
		m.assemblies[a.ID] = a
	}
	return m
}

func (m *mockAssemblyRepo) GetByID(ctx context.Context, id int64) (*entity.Assembly, error) {
	assembly, ok := m.assemblies[id]
	if !ok {
		return nil, nil
	}
	copied := *assembly
	return &copied, nil
}

func (m *mockAssemblyRepo) List(ctx context.Context) ([]*entity.Assembly, error) {
	out := make([]*entity.Assembly, 0, len(m.assemblies))
	for _, assembly := range m.assemblies {
		copied := *assembly
		out = append(out, &copied)
	}
	return out, nil
}

type mockHistoryRepo struct {
	entries []*entity.ProtocolHistory
}

func (m *mockHistoryRepo) Append(ctx context.Context, entry *entity.ProtocolHistory) error {
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockHistoryRepo) GetByProtocolID(ctx context.Context, protocolID int64) ([]*entity.ProtocolHistory, error) {
	var out []*entity.ProtocolHistory
	for _, entry := range m.entries {
		if entry.ProtocolID == protocolID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type mockPositionRepo struct {
	assignments map[int64]*entity.PositionAssignment
	nextID      int64
}

func newMockPositionRepo() *mockPositionRepo {
	return &mockPositionRepo{assignments: make(map[int64]*entity.PositionAssignment), nextID: 1}
}

func (m *mockPositionRepo) add(assignment *entity.PositionAssignment) *entity.PositionAssignment {
	if assignment.ID == 0 {
		assignment.ID = m.nextID
		m.nextID++
	} else if assignment.ID >= m.nextID {
		m.nextID = assignment.ID + 1
	}
	m.assignments[assignment.ID] = assignment
	return assignment
}

func (m *mockPositionRepo) Create(ctx context.Context, assignment *entity.PositionAssignment) error {
	assignment.ID = m.nextID
	m.nextID++
	stored := *assignment
	m.assignments[assignment.ID] = &stored
	return nil
}

func (m *mockPositionRepo) GetOpenByAssembly(ctx context.Context, assemblyID int64, category string) ([]*entity.PositionAssignment, error) {
	var out []*entity.PositionAssignment
	for _, assignment := range m.assignments {
		if assignment.AssemblyID == assemblyID && assignment.Category == category && assignment.Open() {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockPositionRepo) GetOpenByMember(ctx context.Context, memberID int64) ([]*entity.PositionAssignment, error) {
	var out []*entity.PositionAssignment
	for _, assignment := range m.assignments {
		if assignment.MemberID == memberID && assignment.Open() {
			copied := *assignment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockPositionRepo) Close(ctx context.Context, id int64, endDate time.Time) error {
	if assignment, ok := m.assignments[id]; ok {
		end := endDate
		assignment.EndDate = &end
	}
	return nil
}

type mockHonorRepo struct {
	grants []*entity.HonorGrant
	nextID int64
}

func newMockHonorRepo() *mockHonorRepo {
	return &mockHonorRepo{nextID: 1}
}

func (m *mockHonorRepo) Create(ctx context.Context, grant *entity.HonorGrant) error {
	grant.ID = m.nextID
	m.nextID++
	copied := *grant
	m.grants = append(m.grants, &copied)
	return nil
}

func (m *mockHonorRepo) ExistsForMember(ctx context.Context, memberID int64, honorType string) (bool, error) {
	for _, grant := range m.grants {
		if grant.MemberID == memberID && grant.HonorType == honorType {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockHonorRepo) ExistsForMemberYear(ctx context.Context, memberID int64, honorType string, year int) (bool, error) {
	for _, grant := range m.grants {
		if grant.MemberID == memberID && grant.HonorType == honorType && grant.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockHonorRepo) ListByMember(ctx context.Context, memberID int64) ([]*entity.HonorGrant, error) {
	var out []*entity.HonorGrant
	for _, grant := range m.grants {
		if grant.MemberID == memberID {
			copied := *grant
			out = append(out, &copied)
		}
	}
	return out, nil
}

// eventsOfType filters a returned event batch by type
func eventsOfType(events []*event.Event, eventType event.Type) []*event.Event {
	var out []*event.Event
	for _, evt := range events {
		if evt.Type == eventType {
			out = append(out, evt)
		}
	}
	return out
}

package port

import (
	"context"
	"time"

	"github.com/ordem-digital/protocol-engine/internal/domain/entity"
)

// TransactionManager scopes a function to one atomic unit of work. Every
// workflow transition runs inside exactly one transaction: step update,
// handler side effects and history append all commit or none do.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProtocolRepository defines persistence operations for Protocol
type ProtocolRepository interface {
	Create(ctx context.Context, protocol *entity.Protocol) error
	GetByID(ctx context.Context, id int64) (*entity.Protocol, error)
	GetByCode(ctx context.Context, code string) (*entity.Protocol, error)

	// Update persists the protocol with a compare-and-swap on the step name:
	// the write only applies while the stored step still equals fromStep,
	// guarding against concurrent double-transitions.
	Update(ctx context.Context, protocol *entity.Protocol, fromStep string) error
	List(ctx context.Context, filter ProtocolFilter) ([]*entity.Protocol, error)
}

// ProtocolFilter narrows protocol listings by simple attributes
type ProtocolFilter struct {
	AssemblyID *int64
	Type       entity.ProtocolType
	Status     string
	Limit      int
	Offset     int
}

// HistoryRepository defines persistence operations for ProtocolHistory.
// The journal is append-only: no update or delete operation exists.
type HistoryRepository interface {
	Append(ctx context.Context, entry *entity.ProtocolHistory) error
	GetByProtocolID(ctx context.Context, protocolID int64) ([]*entity.ProtocolHistory, error)
}

// MemberRepository defines persistence operations for Member
type MemberRepository interface {
	Create(ctx context.Context, member *entity.Member) error
	GetByID(ctx context.Context, id int64) (*entity.Member, error)
	GetByCPF(ctx context.Context, cpf string) (*entity.Member, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entity.Member, error)
	ListByAssembly(ctx context.Context, assemblyID int64) ([]*entity.Member, error)
	Update(ctx context.Context, member *entity.Member) error
	CountByAssemblyAndYear(ctx context.Context, assemblyID int64, year int) (int, error)
}

// AccountRepository defines persistence operations for Account
type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	UpdateType(ctx context.Context, id int64, accountType string) error
	UpdateRoles(ctx context.Context, id int64, roles []string) error
}

// AssemblyRepository defines persistence operations for Assembly
type AssemblyRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Assembly, error)
	List(ctx context.Context) ([]*entity.Assembly, error)
}

// PositionRepository defines persistence operations for PositionAssignment
type PositionRepository interface {
	Create(ctx context.Context, assignment *entity.PositionAssignment) error
	GetOpenByAssembly(ctx context.Context, assemblyID int64, category string) ([]*entity.PositionAssignment, error)
	GetOpenByMember(ctx context.Context, memberID int64) ([]*entity.PositionAssignment, error)
	Close(ctx context.Context, id int64, endDate time.Time) error
}

// HonorRepository defines persistence operations for HonorGrant
type HonorRepository interface {
	Create(ctx context.Context, grant *entity.HonorGrant) error
	ExistsForMember(ctx context.Context, memberID int64, honorType string) (bool, error)
	ExistsForMemberYear(ctx context.Context, memberID int64, honorType string, year int) (bool, error)
	ListByMember(ctx context.Context, memberID int64) ([]*entity.HonorGrant, error)
}

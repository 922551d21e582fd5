package ports

import (
	"context"
	"time"

	"github.com/tourbooking/auth-service/internal/core/domain"
)

// CredentialStore abstracts user lookup, password verification, lockout
// counters and role membership. Password hashing is owned entirely by the
// implementation; the core only ever hands over plaintext for checking or
// initial storage.
//
// Lookup misses return domain.ErrAccountNotFound. Create returns
// domain.ErrAccountExists on a duplicate email and CreateRole returns
// domain.ErrRoleExists on a duplicate name. Update applies the account's
// version check and returns domain.ErrVersionConflict when another writer
// got there first.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)

	IsLockedOut(ctx context.Context, account *domain.Account) (bool, error)
	LockoutEndTime(ctx context.Context, account *domain.Account) (time.Time, error)

	CheckPassword(ctx context.Context, account *domain.Account, plaintext string) (bool, error)
	RecordAccessFailure(ctx context.Context, account *domain.Account) error
	ResetAccessFailureCount(ctx context.Context, account *domain.Account) error

	RolesOf(ctx context.Context, account *domain.Account) ([]domain.RoleName, error)
	RoleExists(ctx context.Context, name domain.RoleName) (bool, error)
	CreateRole(ctx context.Context, name domain.RoleName) error
	AddToRole(ctx context.Context, account *domain.Account, name domain.RoleName) error

	Create(ctx context.Context, account *domain.Account, plaintext string) error
	Update(ctx context.Context, account *domain.Account) error
}

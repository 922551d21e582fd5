package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tourbooking/auth-service/internal/core/domain"
	"github.com/tourbooking/auth-service/internal/core/ports"
)

// UserService provisions accounts and binds them to one of the fixed roles,
// bootstrapping the role record the first time it is needed.
type UserService struct {
	store ports.CredentialStore
	audit ports.AuditPublisher
	log   zerolog.Logger

	now func() time.Time
}

// NewUserService wires a UserService. audit may be nil.
func NewUserService(store ports.CredentialStore, audit ports.AuditPublisher, log zerolog.Logger) *UserService {
	if audit == nil {
		audit = nopAuditPublisher{}
	}
	return &UserService{store: store, audit: audit, log: log, now: time.Now}
}

// Register creates the account, then lazily creates the target role and adds
// the account to it. Store validation failures surface as a generic server
// error so internal details never reach the caller; store infrastructure
// failures propagate raw.
func (s *UserService) Register(ctx context.Context, input ports.RegistrationInput, role domain.RoleName) (*domain.Account, error) {
	existing, err := s.store.FindByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken(input.Email)
	}

	now := s.now()
	account := &domain.Account{
		DisplayName:               input.FirstName + " " + input.LastName,
		Email:                     input.Email,
		PhoneNumber:               input.PhoneNumber,
		EmailNotificationsEnabled: true,
		LockoutEnabled:            true,
		SecurityStamp:             uuid.NewString(),
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if err := s.store.Create(ctx, account, input.Password); err != nil {
		s.log.Error().Err(err).Str("email", input.Email).Msg("account creation failed")
		return nil, domain.ErrCreateFailed
	}

	// Re-fetch to pick up the store-generated id.
	created, err := s.store.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrFetchAfterCreate
		}
		return nil, err
	}

	if err := s.ensureRole(ctx, role); err != nil {
		return nil, err
	}

	if err := s.store.AddToRole(ctx, created, role); err != nil {
		return nil, err
	}

	s.audit.Publish(ports.AuditEvent{Type: ports.AuditAccountRegistered, Email: created.Email, Reason: string(role), At: s.now()})
	return created, nil
}

// ensureRole creates the role if it does not exist yet. A concurrent caller
// may win the race; the resulting duplicate-create is not a failure.
func (s *UserService) ensureRole(ctx context.Context, role domain.RoleName) error {
	exists, err := s.store.RoleExists(ctx, role)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.store.CreateRole(ctx, role); err != nil && !errors.Is(err, domain.ErrRoleExists) {
		return err
	}
	return nil
}

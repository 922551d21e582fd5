package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tourbooking/auth-service/internal/core/domain"
	"github.com/tourbooking/auth-service/internal/core/ports"
	"github.com/tourbooking/auth-service/internal/core/token"
)

// TokenSettings carries the token lifetimes and the refresh hardening flag.
// Both lifetimes are mandatory; there are no fallback defaults.
type TokenSettings struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// StrictRefresh additionally requires the submitted refresh token to
	// equal the stored one. The reference flow only checks presence and
	// non-expiry of the stored token; see DESIGN.md for the trade-off.
	StrictRefresh bool
}

// AuthService implements login and refresh-token rotation against the
// credential store and the token codec. It holds no per-request state.
type AuthService struct {
	store    ports.CredentialStore
	codec    *token.Codec
	settings TokenSettings
	audit    ports.AuditPublisher
	log      zerolog.Logger

	now func() time.Time
}

// NewAuthService wires an AuthService. Non-positive token lifetimes are a
// construction-time error. audit may be nil when no pipeline is attached.
func NewAuthService(store ports.CredentialStore, codec *token.Codec, settings TokenSettings, audit ports.AuditPublisher, log zerolog.Logger) (*AuthService, error) {
	if settings.AccessTokenTTL <= 0 {
		return nil, errors.New("auth service: access token lifetime must be positive")
	}
	if settings.RefreshTokenTTL <= 0 {
		return nil, errors.New("auth service: refresh token lifetime must be positive")
	}
	if audit == nil {
		audit = nopAuditPublisher{}
	}
	return &AuthService{
		store:    store,
		codec:    codec,
		settings: settings,
		audit:    audit,
		log:      log,
		now:      time.Now,
	}, nil
}

// Login verifies the credentials and, on success, mints a fresh token pair
// and rotates the stored refresh token. Credential and lockout failures come
// back as *domain.AuthError; store infrastructure failures propagate raw.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	if strings.TrimSpace(email) == "" {
		return nil, domain.ErrEmailEmpty
	}
	if strings.TrimSpace(password) == "" {
		return nil, domain.ErrPasswordEmpty
	}

	account, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrLoginAccountNotFound
		}
		return nil, err
	}

	lockedOut, err := s.store.IsLockedOut(ctx, account)
	if err != nil {
		return nil, err
	}
	if lockedOut {
		lockoutEnd, err := s.store.LockoutEndTime(ctx, account)
		if err != nil {
			return nil, err
		}
		s.audit.Publish(ports.AuditEvent{Type: ports.AuditLoginLockedOut, Email: account.Email, At: s.now()})
		// Remaining duration is computed at response time so repeated
		// attempts see it shrink.
		return nil, domain.ErrLockedOutFor(lockoutEnd.Sub(s.now()))
	}

	validPassword, err := s.store.CheckPassword(ctx, account, password)
	if err != nil {
		return nil, err
	}
	if !validPassword {
		if err := s.store.RecordAccessFailure(ctx, account); err != nil {
			return nil, err
		}
		s.audit.Publish(ports.AuditEvent{Type: ports.AuditLoginFailed, Email: account.Email, Reason: "invalid_password", At: s.now()})
		return nil, domain.ErrInvalidPassword
	}

	roles, err := s.store.RolesOf(ctx, account)
	if err != nil {
		return nil, err
	}

	claims := domain.AccessClaims{
		Subject:     account.ID,
		DisplayName: account.DisplayName,
		Email:       account.Email,
		TokenID:     uuid.NewString(),
		Roles:       roleNames(roles),
	}

	pair, err := s.issueTokens(ctx, account, claims, domain.ErrLoginPersistence)
	if err != nil {
		return nil, err
	}

	if err := s.store.ResetAccessFailureCount(ctx, account); err != nil {
		return nil, err
	}

	s.audit.Publish(ports.AuditEvent{Type: ports.AuditLoginSucceeded, Email: account.Email, At: s.now()})
	return pair, nil
}

// Refresh rotates a token pair. The access token is validated as proof of
// prior issuance only — its expiry is deliberately ignored. Every failure
// except blank input shares the generic session-expired message.
func (s *AuthService) Refresh(ctx context.Context, pair domain.TokenPair) (*domain.TokenPair, error) {
	if strings.TrimSpace(pair.AccessToken) == "" || strings.TrimSpace(pair.RefreshToken) == "" {
		return nil, domain.ErrTokenPairInvalid
	}

	claims, ok := s.codec.TryValidate(pair.AccessToken)
	if !ok || claims.Email == "" {
		s.audit.Publish(ports.AuditEvent{Type: ports.AuditRefreshRejected, Reason: "access_token_invalid", At: s.now()})
		return nil, domain.ErrAccessTokenInvalid
	}

	account, err := s.store.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrRefreshAccountNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(account.RefreshToken) == "" ||
		account.RefreshTokenExpiry == nil ||
		!account.RefreshTokenExpiry.After(s.now()) {
		s.audit.Publish(ports.AuditEvent{Type: ports.AuditRefreshRejected, Email: account.Email, Reason: "refresh_token_invalid", At: s.now()})
		return nil, domain.ErrRefreshTokenInvalid
	}

	if s.settings.StrictRefresh &&
		subtle.ConstantTimeCompare([]byte(account.RefreshToken), []byte(pair.RefreshToken)) != 1 {
		s.audit.Publish(ports.AuditEvent{Type: ports.AuditRefreshRejected, Email: account.Email, Reason: "refresh_token_mismatch", At: s.now()})
		return nil, domain.ErrRefreshTokenInvalid
	}

	// Re-mint with the claims exactly as extracted (same subject, same
	// token id, same roles) and a fresh expiry.
	newPair, err := s.issueTokens(ctx, account, claims, domain.ErrRefreshPersistence)
	if err != nil {
		return nil, err
	}

	s.audit.Publish(ports.AuditEvent{Type: ports.AuditTokensRefreshed, Email: account.Email, At: s.now()})
	return newPair, nil
}

// issueTokens mints an access token, rotates the refresh token and persists
// the new refresh state onto the account. A version conflict comes back as
// the given persistence error and is never retried here; two concurrent
// issuances race and the last successful update owns the live refresh token.
// Store infrastructure failures propagate raw.
func (s *AuthService) issueTokens(ctx context.Context, account *domain.Account, claims domain.AccessClaims, persistErr *domain.AuthError) (*domain.TokenPair, error) {
	now := s.now()

	accessToken, err := s.codec.Mint(claims, now.Add(s.settings.AccessTokenTTL))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.codec.NewRefreshValue()
	if err != nil {
		return nil, err
	}

	refreshExpiry := now.Add(s.settings.RefreshTokenTTL)
	account.RefreshToken = refreshToken
	account.RefreshTokenExpiry = &refreshExpiry

	if err := s.store.Update(ctx, account); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			s.log.Warn().Str("email", account.Email).Msg("refresh token update lost a concurrent write")
			return nil, persistErr
		}
		return nil, err
	}

	return &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func roleNames(roles []domain.RoleName) []string {
	if len(roles) == 0 {
		return nil
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

type nopAuditPublisher struct{}

func (nopAuditPublisher) Publish(ports.AuditEvent) {}

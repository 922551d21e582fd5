package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tourbooking/auth-service/internal/api/metrics"
	"github.com/tourbooking/auth-service/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns the consumer side of the audit pipeline: it logs
// each event, bumps the matching counter and persists the entry.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process records a single audit event. Persistence failures are surfaced to
// the dispatcher for logging but never reach the user-facing operation that
// emitted the event.
func (s *auditService) Process(ctx context.Context, event ports.AuditEvent) error {
	s.log.Info().
		Str("type", string(event.Type)).
		Str("email", event.Email).
		Str("reason", event.Reason).
		Time("at", event.At).
		Msg("audit event")

	switch event.Type {
	case ports.AuditLoginSucceeded:
		metrics.LoginsTotal.WithLabelValues("success").Inc()
	case ports.AuditLoginFailed:
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
	case ports.AuditLoginLockedOut:
		metrics.LockoutsTotal.Inc()
	case ports.AuditTokensRefreshed:
		metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	case ports.AuditRefreshRejected:
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
	case ports.AuditAccountRegistered:
		metrics.RegistrationsTotal.WithLabelValues(event.Reason).Inc()
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("persist audit event: %w", err)
	}
	return nil
}

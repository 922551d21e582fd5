package ports

import (
	"context"
	"time"
)

// AuditEventType classifies an audit trail entry.
type AuditEventType string

const (
	AuditLoginSucceeded    AuditEventType = "login_succeeded"
	AuditLoginFailed       AuditEventType = "login_failed"
	AuditLoginLockedOut    AuditEventType = "login_locked_out"
	AuditTokensRefreshed   AuditEventType = "tokens_refreshed"
	AuditRefreshRejected   AuditEventType = "refresh_rejected"
	AuditAccountRegistered AuditEventType = "account_registered"
)

// AuditEvent records one security-relevant occurrence on an account.
type AuditEvent struct {
	Type   AuditEventType
	Email  string
	Reason string
	At     time.Time
}

// AuditPublisher hands events to the async audit pipeline. Publishing must
// never block the calling operation beyond queue admission and must never
// surface an error into the auth flow.
type AuditPublisher interface {
	Publish(event AuditEvent)
}

// AuditService processes audit events on the consumer side of the queue.
type AuditService interface {
	Process(ctx context.Context, event AuditEvent) error
}

// AuditRepository persists processed audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event AuditEvent) error
}

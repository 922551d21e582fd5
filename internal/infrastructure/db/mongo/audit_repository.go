package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tourbooking/auth-service/internal/core/ports"
)

const auditCollection = "auth_audit"

// AuditRepository persists audit trail entries. Insert-only.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	Type   string `bson:"type"`
	Email  string `bson:"email,omitempty"`
	Reason string `bson:"reason,omitempty"`
	At     int64  `bson:"at"`
}

func (r *AuditRepository) Insert(ctx context.Context, event ports.AuditEvent) error {
	doc := auditDoc{
		Type:   string(event.Type),
		Email:  event.Email,
		Reason: event.Reason,
		At:     event.At.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

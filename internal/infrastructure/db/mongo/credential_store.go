package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/tourbooking/auth-service/internal/core/domain"
)

const (
	accountsCollection = "accounts"
	rolesCollection    = "roles"
)

// CredentialStore is the MongoDB-backed implementation of
// ports.CredentialStore. Password hashes never leave this package: they live
// on the stored document and are only compared here via bcrypt.
type CredentialStore struct {
	accounts *mongo.Collection
	roles    *mongo.Collection

	maxFailedAttempts int
	lockoutWindow     time.Duration

	now func() time.Time
}

// NewCredentialStore wires the store against the accounts and roles
// collections with the given lockout policy.
func NewCredentialStore(db *mongo.Database, maxFailedAttempts int, lockoutWindow time.Duration) *CredentialStore {
	return &CredentialStore{
		accounts:          db.Collection(accountsCollection),
		roles:             db.Collection(rolesCollection),
		maxFailedAttempts: maxFailedAttempts,
		lockoutWindow:     lockoutWindow,
		now:               time.Now,
	}
}

// EnsureIndexes creates the unique indexes the store's duplicate-key checks
// rely on. Call once at startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(accountsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("accounts email index: %w", err)
	}
	_, err = db.Collection(rolesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("roles name index: %w", err)
	}
	return nil
}

type accountDoc struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Email              string             `bson:"email"`
	DisplayName        string             `bson:"display_name"`
	PhoneNumber        string             `bson:"phone_number,omitempty"`
	PasswordHash       string             `bson:"password_hash"`
	EmailNotifications bool               `bson:"email_notifications_enabled"`
	LockoutEnabled     bool               `bson:"lockout_enabled"`
	AccessFailedCount  int                `bson:"access_failed_count"`
	LockoutEnd         *time.Time         `bson:"lockout_end,omitempty"`
	RefreshToken       string             `bson:"refresh_token,omitempty"`
	RefreshTokenExpiry *time.Time         `bson:"refresh_token_expiry,omitempty"`
	SecurityStamp      string             `bson:"security_stamp"`
	Roles              []string           `bson:"roles,omitempty"`
	CreatedAt          int64              `bson:"created_at"`
	UpdatedAt          int64              `bson:"updated_at"`
	Version            int64              `bson:"version"`
}

// normalizeEmail is the canonical form emails are stored and looked up in.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var doc accountDoc
	err := s.accounts.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return docToAccount(&doc), nil
}

// IsLockedOut reports whether the account is currently inside its lockout
// window. Lockout is evaluated against the store clock, not lockout-start
// time.
func (s *CredentialStore) IsLockedOut(_ context.Context, account *domain.Account) (bool, error) {
	if !account.LockoutEnabled || account.LockoutEndTime == nil {
		return false, nil
	}
	return account.LockoutEndTime.After(s.now()), nil
}

func (s *CredentialStore) LockoutEndTime(_ context.Context, account *domain.Account) (time.Time, error) {
	if account.LockoutEndTime == nil {
		return time.Time{}, nil
	}
	return *account.LockoutEndTime, nil
}

// CheckPassword compares the plaintext against the stored bcrypt hash.
// A mismatch is (false, nil); only infrastructure failures return an error.
func (s *CredentialStore) CheckPassword(ctx context.Context, account *domain.Account, plaintext string) (bool, error) {
	var doc struct {
		PasswordHash string `bson:"password_hash"`
	}
	err := s.accounts.FindOne(ctx, bson.M{"email": normalizeEmail(account.Email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, domain.ErrAccountNotFound
		}
		return false, fmt.Errorf("load password hash: %w", err)
	}

	switch err := bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(plaintext)); {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

// RecordAccessFailure increments the failure counter; reaching the
// configured threshold sets the lockout end time and resets the counter,
// timed from this failure.
func (s *CredentialStore) RecordAccessFailure(ctx context.Context, account *domain.Account) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc accountDoc
	err := s.accounts.FindOneAndUpdate(ctx,
		bson.M{"email": normalizeEmail(account.Email)},
		bson.M{"$inc": bson.M{"access_failed_count": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("record access failure: %w", err)
	}

	account.AccessFailedCount = doc.AccessFailedCount

	if doc.LockoutEnabled && doc.AccessFailedCount >= s.maxFailedAttempts {
		lockoutEnd := s.now().Add(s.lockoutWindow)
		_, err := s.accounts.UpdateByID(ctx, doc.ID, bson.M{
			"$set": bson.M{"lockout_end": lockoutEnd, "access_failed_count": 0},
		})
		if err != nil {
			return fmt.Errorf("set lockout: %w", err)
		}
		account.AccessFailedCount = 0
		account.LockoutEndTime = &lockoutEnd
	}
	return nil
}

func (s *CredentialStore) ResetAccessFailureCount(ctx context.Context, account *domain.Account) error {
	_, err := s.accounts.UpdateOne(ctx,
		bson.M{"email": normalizeEmail(account.Email)},
		bson.M{
			"$set":   bson.M{"access_failed_count": 0},
			"$unset": bson.M{"lockout_end": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("reset access failures: %w", err)
	}
	account.AccessFailedCount = 0
	account.LockoutEndTime = nil
	return nil
}

func (s *CredentialStore) RolesOf(ctx context.Context, account *domain.Account) ([]domain.RoleName, error) {
	var doc struct {
		Roles []string `bson:"roles"`
	}
	err := s.accounts.FindOne(ctx, bson.M{"email": normalizeEmail(account.Email)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("load roles: %w", err)
	}

	roles := make([]domain.RoleName, 0, len(doc.Roles))
	for _, r := range doc.Roles {
		roles = append(roles, domain.RoleName(r))
	}
	return roles, nil
}

func (s *CredentialStore) RoleExists(ctx context.Context, name domain.RoleName) (bool, error) {
	err := s.roles.FindOne(ctx, bson.M{"name": string(name)}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("find role: %w", err)
	}
	return true, nil
}

// CreateRole inserts the role record. A concurrent duplicate create comes
// back as domain.ErrRoleExists so registration can treat it as already done.
func (s *CredentialStore) CreateRole(ctx context.Context, name domain.RoleName) error {
	_, err := s.roles.InsertOne(ctx, bson.M{"name": string(name), "created_at": s.now().Unix()})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrRoleExists
		}
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

func (s *CredentialStore) AddToRole(ctx context.Context, account *domain.Account, name domain.RoleName) error {
	_, err := s.accounts.UpdateOne(ctx,
		bson.M{"email": normalizeEmail(account.Email)},
		bson.M{"$addToSet": bson.M{"roles": string(name)}},
	)
	if err != nil {
		return fmt.Errorf("add to role: %w", err)
	}
	return nil
}

// Create hashes the password and inserts the account. The unique email index
// turns a duplicate insert into domain.ErrAccountExists.
func (s *CredentialStore) Create(ctx context.Context, account *domain.Account, plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	doc := accountDoc{
		Email:              normalizeEmail(account.Email),
		DisplayName:        account.DisplayName,
		PhoneNumber:        account.PhoneNumber,
		PasswordHash:       string(hash),
		EmailNotifications: account.EmailNotificationsEnabled,
		LockoutEnabled:     account.LockoutEnabled,
		SecurityStamp:      account.SecurityStamp,
		CreatedAt:          now.Unix(),
		UpdatedAt:          now.Unix(),
		Version:            1,
	}

	if _, err := s.accounts.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// Update persists the refresh-token fields under an optimistic concurrency
// check on the account version. A lost race surfaces as
// domain.ErrVersionConflict and is never retried here.
func (s *CredentialStore) Update(ctx context.Context, account *domain.Account) error {
	id, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return fmt.Errorf("invalid account id %q: %w", account.ID, err)
	}

	res, err := s.accounts.UpdateOne(ctx,
		bson.M{"_id": id, "version": account.Version},
		bson.M{
			"$set": bson.M{
				"refresh_token":        account.RefreshToken,
				"refresh_token_expiry": account.RefreshTokenExpiry,
				"updated_at":           s.now().Unix(),
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVersionConflict
	}
	account.Version++
	return nil
}

func docToAccount(doc *accountDoc) *domain.Account {
	return &domain.Account{
		ID:                        doc.ID.Hex(),
		Email:                     doc.Email,
		DisplayName:               doc.DisplayName,
		PhoneNumber:               doc.PhoneNumber,
		EmailNotificationsEnabled: doc.EmailNotifications,
		LockoutEnabled:            doc.LockoutEnabled,
		AccessFailedCount:         doc.AccessFailedCount,
		LockoutEndTime:            doc.LockoutEnd,
		RefreshToken:              doc.RefreshToken,
		RefreshTokenExpiry:        doc.RefreshTokenExpiry,
		SecurityStamp:             doc.SecurityStamp,
		CreatedAt:                 unixToTime(doc.CreatedAt),
		UpdatedAt:                 unixToTime(doc.UpdatedAt),
		Version:                   doc.Version,
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

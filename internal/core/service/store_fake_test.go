package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tourbooking/auth-service/internal/core/domain"
	"github.com/tourbooking/auth-service/internal/core/ports"
)

// fakeStore is the in-memory test double for ports.CredentialStore. It
// records every call so tests can assert that a branch made no store calls,
// and it is mutex-guarded so the concurrent registration test can hit it
// from several goroutines.
type fakeStore struct {
	mu          sync.Mutex
	accounts    map[string]*fakeAccount
	roles       map[domain.RoleName]struct{}
	memberships map[string][]domain.RoleName
	calls       []string

	rolesCreated int
	nextID       int

	updateErr error
	createErr error

	now func() time.Time
}

type fakeAccount struct {
	account  domain.Account
	password string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:    make(map[string]*fakeAccount),
		roles:       make(map[domain.RoleName]struct{}),
		memberships: make(map[string][]domain.RoleName),
		now:         time.Now,
	}
}

func (f *fakeStore) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeStore) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// seed inserts an account directly, bypassing Create.
func (f *fakeStore) seed(account domain.Account, password string, roles ...domain.RoleName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if account.ID == "" {
		account.ID = fmt.Sprintf("acct-%d", f.nextID)
	}
	if account.Version == 0 {
		account.Version = 1
	}
	account.Email = normalize(account.Email)
	f.accounts[account.Email] = &fakeAccount{account: account, password: password}
	for _, r := range roles {
		f.roles[r] = struct{}{}
		f.memberships[account.Email] = append(f.memberships[account.Email], r)
	}
}

// stored returns a copy of the persisted account state.
func (f *fakeStore) stored(email string) (domain.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fa, ok := f.accounts[normalize(email)]
	if !ok {
		return domain.Account{}, false
	}
	return fa.account, true
}

func (f *fakeStore) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FindByEmail")
	fa, ok := f.accounts[normalize(email)]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := fa.account
	return &clone, nil
}

func (f *fakeStore) IsLockedOut(_ context.Context, account *domain.Account) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("IsLockedOut")
	if !account.LockoutEnabled || account.LockoutEndTime == nil {
		return false, nil
	}
	return account.LockoutEndTime.After(f.now()), nil
}

func (f *fakeStore) LockoutEndTime(_ context.Context, account *domain.Account) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LockoutEndTime")
	if account.LockoutEndTime == nil {
		return time.Time{}, nil
	}
	return *account.LockoutEndTime, nil
}

func (f *fakeStore) CheckPassword(_ context.Context, account *domain.Account, plaintext string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CheckPassword")
	fa, ok := f.accounts[normalize(account.Email)]
	if !ok {
		return false, domain.ErrAccountNotFound
	}
	return fa.password == plaintext, nil
}

func (f *fakeStore) RecordAccessFailure(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RecordAccessFailure")
	if fa, ok := f.accounts[normalize(account.Email)]; ok {
		fa.account.AccessFailedCount++
		account.AccessFailedCount = fa.account.AccessFailedCount
	}
	return nil
}

func (f *fakeStore) ResetAccessFailureCount(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ResetAccessFailureCount")
	if fa, ok := f.accounts[normalize(account.Email)]; ok {
		fa.account.AccessFailedCount = 0
		fa.account.LockoutEndTime = nil
		account.AccessFailedCount = 0
	}
	return nil
}

func (f *fakeStore) RolesOf(_ context.Context, account *domain.Account) ([]domain.RoleName, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RolesOf")
	return append([]domain.RoleName(nil), f.memberships[normalize(account.Email)]...), nil
}

func (f *fakeStore) RoleExists(_ context.Context, name domain.RoleName) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RoleExists")
	_, ok := f.roles[name]
	return ok, nil
}

func (f *fakeStore) CreateRole(_ context.Context, name domain.RoleName) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateRole")
	if _, ok := f.roles[name]; ok {
		return domain.ErrRoleExists
	}
	f.roles[name] = struct{}{}
	f.rolesCreated++
	return nil
}

func (f *fakeStore) AddToRole(_ context.Context, account *domain.Account, name domain.RoleName) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AddToRole")
	email := normalize(account.Email)
	for _, existing := range f.memberships[email] {
		if existing == name {
			return nil
		}
	}
	f.memberships[email] = append(f.memberships[email], name)
	return nil
}

func (f *fakeStore) Create(_ context.Context, account *domain.Account, plaintext string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Create")
	if f.createErr != nil {
		return f.createErr
	}
	email := normalize(account.Email)
	if _, ok := f.accounts[email]; ok {
		return domain.ErrAccountExists
	}
	f.nextID++
	stored := *account
	stored.ID = fmt.Sprintf("acct-%d", f.nextID)
	stored.Email = email
	stored.Version = 1
	f.accounts[email] = &fakeAccount{account: stored, password: plaintext}
	return nil
}

func (f *fakeStore) Update(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Update")
	if f.updateErr != nil {
		return f.updateErr
	}
	fa, ok := f.accounts[normalize(account.Email)]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if fa.account.Version != account.Version {
		return domain.ErrVersionConflict
	}
	fa.account.RefreshToken = account.RefreshToken
	fa.account.RefreshTokenExpiry = account.RefreshTokenExpiry
	fa.account.Version++
	account.Version++
	return nil
}

var _ ports.CredentialStore = (*fakeStore)(nil)

package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
	"github.com/catalog-backoffice/product-api/internal/infrastructure/memory"
)

// spyStore wraps the in-memory store, counts calls and lets a test inject
// failures per operation.
type spyStore struct {
	*memory.CredentialStore

	mu          sync.Mutex
	createCalls int
	deleteCalls int
	addCalls    int

	findByEmailErr error
	createErr      error
	addToRoleErr   error
	removeErr      error
	onAddToRole    func()
	isInRoleFn     func(ctx context.Context, user *domain.User, roleName string) (bool, error)
}

func newSpyStore(t *testing.T) *spyStore {
	t.Helper()
	inner := memory.NewCredentialStore().WithHashCost(bcrypt.MinCost)
	if err := inner.EnsureRoles(context.Background(), domain.SeedRoles...); err != nil {
		t.Fatalf("ensure roles: %v", err)
	}
	return &spyStore{CredentialStore: inner}
}

func (s *spyStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.findByEmailErr != nil {
		return nil, s.findByEmailErr
	}
	return s.CredentialStore.FindUserByEmail(ctx, email)
}

func (s *spyStore) CreateUser(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	s.mu.Lock()
	s.createCalls++
	s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.CredentialStore.CreateUser(ctx, user, password)
}

func (s *spyStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	s.deleteCalls++
	s.mu.Unlock()
	return s.CredentialStore.DeleteUser(ctx, id)
}

func (s *spyStore) IsInRole(ctx context.Context, user *domain.User, roleName string) (bool, error) {
	if s.isInRoleFn != nil {
		return s.isInRoleFn(ctx, user, roleName)
	}
	return s.CredentialStore.IsInRole(ctx, user, roleName)
}

func (s *spyStore) AddToRole(ctx context.Context, user *domain.User, roleName string) error {
	s.mu.Lock()
	s.addCalls++
	s.mu.Unlock()
	if s.onAddToRole != nil {
		s.onAddToRole()
		return ctx.Err()
	}
	if s.addToRoleErr != nil {
		return s.addToRoleErr
	}
	return s.CredentialStore.AddToRole(ctx, user, roleName)
}

func (s *spyStore) RemoveFromRole(ctx context.Context, user *domain.User, roleName string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	return s.CredentialStore.RemoveFromRole(ctx, user, roleName)
}

// mustUser creates a user directly in the store holding the given roles.
func mustUser(t *testing.T, s *spyStore, email, password string, roles ...string) *domain.User {
	t.Helper()
	ctx := context.Background()
	u, err := s.CredentialStore.CreateUser(ctx, &domain.User{Email: email, UserName: email}, password)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, r := range roles {
		if err := s.CredentialStore.AddToRole(ctx, u, r); err != nil {
			t.Fatalf("add role %s: %v", r, err)
		}
	}
	return u
}

func mustRoleID(t *testing.T, s *spyStore, name string) string {
	t.Helper()
	r, err := s.FindRoleByName(context.Background(), name)
	if err != nil {
		t.Fatalf("find role %s: %v", name, err)
	}
	return r.ID
}

// wantKind fails unless err is a *domain.Error of kind k carrying msgs.
func wantKind(t *testing.T, err error, k domain.Kind, msgs ...string) {
	t.Helper()
	de, ok := err.(*domain.Error)
	if !ok {
		t.Fatalf("expected *domain.Error, got %T (%v)", err, err)
	}
	if de.Kind != k {
		t.Fatalf("expected kind %s, got %s", k, de.Kind)
	}
	if msgs == nil {
		return
	}
	if len(de.Messages) != len(msgs) {
		t.Fatalf("expected messages %q, got %q", msgs, de.Messages)
	}
	for i := range msgs {
		if de.Messages[i] != msgs[i] {
			t.Fatalf("expected messages %q, got %q", msgs, de.Messages)
		}
	}
}

type stubIssuer struct {
	issueFn func(c domain.Claims) (ports.IssuedToken, error)
}

func (s *stubIssuer) Issue(c domain.Claims) (ports.IssuedToken, error) {
	return s.issueFn(c)
}

var nopLog = zerolog.Nop()

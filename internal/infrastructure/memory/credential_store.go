// Package memory provides process-local implementations of the store ports,
// used when STORE_DRIVER=memory and in tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

// CredentialStore keeps users, roles and memberships in maps guarded by a
// single mutex. Membership uniqueness is enforced on every write.
type CredentialStore struct {
	mu          sync.RWMutex
	users       map[string]*domain.User        // by id
	byEmail     map[string]string              // normalised email -> id
	roles       map[string]*domain.Role        // by id
	roleByName  map[string]string              // name -> id
	memberships map[string]map[string]struct{} // user id -> role names
	hashCost    int
}

var (
	_ ports.CredentialStore = (*CredentialStore)(nil)
	_ ports.RoleProvisioner = (*CredentialStore)(nil)
)

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		users:       make(map[string]*domain.User),
		byEmail:     make(map[string]string),
		roles:       make(map[string]*domain.Role),
		roleByName:  make(map[string]string),
		memberships: make(map[string]map[string]struct{}),
		hashCost:    bcrypt.DefaultCost,
	}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func (s *CredentialStore) WithHashCost(cost int) *CredentialStore {
	s.hashCost = cost
	return s
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (s *CredentialStore) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *CredentialStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (s *CredentialStore) CreateUser(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.Reject("password is too long")
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := domain.NormalizeEmail(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return nil, domain.Reject(domain.MsgEmailExists)
	}

	now := time.Now().UTC()
	created := cloneUser(user)
	created.ID = uuid.NewString()
	created.PasswordHash = string(hash)
	created.CreatedAt = now
	created.UpdatedAt = now

	s.users[created.ID] = created
	s.byEmail[key] = created.ID
	return cloneUser(created), nil
}

func (s *CredentialStore) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(s.byEmail, domain.NormalizeEmail(u.Email))
	delete(s.users, id)
	delete(s.memberships, id)
	return nil
}

func (s *CredentialStore) CheckPassword(ctx context.Context, user *domain.User, password string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil, nil
}

func (s *CredentialStore) FindRoleByID(ctx context.Context, id string) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	c := *r
	return &c, nil
}

// FindRoleByName is not part of the port; tests and bootstrap use it.
func (s *CredentialStore) FindRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.roleByName[name]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	c := *s.roles[id]
	return &c, nil
}

// RolesForUser returns role names sorted for stable output.
func (s *CredentialStore) RolesForUser(ctx context.Context, user *domain.User) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.memberships[user.ID]))
	for name := range s.memberships[user.ID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *CredentialStore) IsInRole(ctx context.Context, user *domain.User, roleName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.memberships[user.ID][roleName]
	return ok, nil
}

func (s *CredentialStore) AddToRole(ctx context.Context, user *domain.User, roleName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if _, ok := s.roleByName[roleName]; !ok {
		return domain.Reject("role " + roleName + " does not exist")
	}
	set, ok := s.memberships[user.ID]
	if !ok {
		set = make(map[string]struct{})
		s.memberships[user.ID] = set
	}
	if _, exists := set[roleName]; exists {
		return domain.Reject("user is already in role " + roleName)
	}
	set[roleName] = struct{}{}
	return nil
}

func (s *CredentialStore) RemoveFromRole(ctx context.Context, user *domain.User, roleName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.memberships[user.ID]
	if _, ok := set[roleName]; !ok {
		return domain.Reject("user is not in role " + roleName)
	}
	delete(set, roleName)
	return nil
}

// EnsureRoles creates any missing roles. Role IDs are assigned sequentially
// ("1", "2", ...) in the order roles are first seen.
func (s *CredentialStore) EnsureRoles(ctx context.Context, names ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		if _, ok := s.roleByName[name]; ok {
			continue
		}
		id := strconv.Itoa(len(s.roles) + 1)
		s.roles[id] = &domain.Role{ID: id, Name: name}
		s.roleByName[name] = id
	}
	return nil
}

// MembershipCount returns the number of (user, role) rows; used by tests.
func (s *CredentialStore) MembershipCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, set := range s.memberships {
		n += len(set)
	}
	return n
}

// UserCount returns the number of stored users; used by tests.
func (s *CredentialStore) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

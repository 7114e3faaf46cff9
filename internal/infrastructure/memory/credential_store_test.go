package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
)

func newSeededStore(t *testing.T) *CredentialStore {
	t.Helper()
	s := NewCredentialStore().WithHashCost(bcrypt.MinCost)
	require.NoError(t, s.EnsureRoles(context.Background(), domain.SeedRoles...))
	return s
}

func TestCredentialStore_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	u, err := s.CreateUser(ctx, &domain.User{Email: "Alice@Example.com", UserName: "alice"}, "Password1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "Alice@Example.com", u.Email, "email is stored as entered")
	assert.NotEqual(t, "Password1", u.PasswordHash)

	byEmail, err := s.FindUserByEmail(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	ok, err := s.CheckPassword(ctx, u, "Password1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.CheckPassword(ctx, u, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialStore_DuplicateEmailRejected(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	_, err := s.CreateUser(ctx, &domain.User{Email: "a@x.com"}, "Password1")
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, &domain.User{Email: "A@X.com"}, "Password1")
	var rej *domain.StoreRejection
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, []string{domain.MsgEmailExists}, rej.Reasons)
	assert.Equal(t, 1, s.UserCount())
}

func TestCredentialStore_LookupMisses(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	_, err := s.FindUserByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = s.FindUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = s.FindRoleByID(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}

func TestCredentialStore_Membership(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	u, err := s.CreateUser(ctx, &domain.User{Email: "a@x.com"}, "Password1")
	require.NoError(t, err)

	require.NoError(t, s.AddToRole(ctx, u, domain.RoleUser))
	require.NoError(t, s.AddToRole(ctx, u, domain.RoleAdmin))

	var rej *domain.StoreRejection
	assert.ErrorAs(t, s.AddToRole(ctx, u, domain.RoleAdmin), &rej)
	assert.ErrorAs(t, s.AddToRole(ctx, u, "Ghost"), &rej)

	roles, err := s.RolesForUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin", "User"}, roles)

	in, err := s.IsInRole(ctx, u, domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, in)

	require.NoError(t, s.RemoveFromRole(ctx, u, domain.RoleAdmin))
	assert.ErrorAs(t, s.RemoveFromRole(ctx, u, domain.RoleAdmin), &rej)
	assert.Equal(t, 1, s.MembershipCount())
}

func TestCredentialStore_DeleteUserDropsMemberships(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	u, err := s.CreateUser(ctx, &domain.User{Email: "a@x.com"}, "Password1")
	require.NoError(t, err)
	require.NoError(t, s.AddToRole(ctx, u, domain.RoleUser))

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.Equal(t, 0, s.UserCount())
	assert.Equal(t, 0, s.MembershipCount())
	_, err = s.FindUserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCredentialStore_EnsureRolesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	require.NoError(t, s.EnsureRoles(ctx, domain.SeedRoles...))

	admin, err := s.FindRoleByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Name)

	user, err := s.FindRoleByName(ctx, domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "3", user.ID)
}

func TestCredentialStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newSeededStore(t)
	_, err := s.FindUserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, context.Canceled)
}

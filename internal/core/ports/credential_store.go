package ports

import (
	"context"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
)

// CredentialStore holds users, roles and memberships. Lookups return
// domain.ErrUserNotFound / domain.ErrRoleNotFound on a miss; writes refused for
// a business reason return a *domain.StoreRejection. Any other error is an
// infrastructure failure.
type CredentialStore interface {
	FindUserByID(ctx context.Context, id string) (*domain.User, error)
	// FindUserByEmail matches case-insensitively.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	// CreateUser hashes password, persists the user and returns it with its ID set.
	CreateUser(ctx context.Context, user *domain.User, password string) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	CheckPassword(ctx context.Context, user *domain.User, password string) (bool, error)

	FindRoleByID(ctx context.Context, id string) (*domain.Role, error)
	RolesForUser(ctx context.Context, user *domain.User) ([]string, error)
	IsInRole(ctx context.Context, user *domain.User, roleName string) (bool, error)
	AddToRole(ctx context.Context, user *domain.User, roleName string) error
	RemoveFromRole(ctx context.Context, user *domain.User, roleName string) error
}

// RoleProvisioner creates missing roles. Used only at bootstrap.
type RoleProvisioner interface {
	EnsureRoles(ctx context.Context, names ...string) error
}

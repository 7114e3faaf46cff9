package ports

import (
	"context"
	"time"
)

// RegisterInput carries the registration command.
type RegisterInput struct {
	Email           string `validate:"required,email"`
	Password        string `validate:"min=8"`
	ConfirmPassword string `validate:"eqfield=Password"`
	UserName        string
	FirstName       string
	LastName        string
}

// LoginInput carries the login command.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token       string
	TokenExpiry time.Time
}

// AuthService implements registration and login.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (string, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

// RoleMembershipInput identifies a (user, role) pair by IDs.
type RoleMembershipInput struct {
	UserID string `validate:"required"`
	RoleID string `validate:"required"`
}

// RoleService assigns and revokes role memberships.
type RoleService interface {
	Assign(ctx context.Context, input RoleMembershipInput) (string, error)
	Revoke(ctx context.Context, input RoleMembershipInput) (string, error)
}

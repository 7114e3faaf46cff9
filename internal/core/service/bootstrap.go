package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

// AdminSeed describes the administrator account created at startup.
// Both fields empty disables seeding.
type AdminSeed struct {
	Email    string
	Password string
}

// Bootstrap provisions the seed roles and, when configured, an administrator
// holding Admin and User. It is safe to run on every start.
func Bootstrap(ctx context.Context, store ports.CredentialStore, roles ports.RoleProvisioner, admin AdminSeed, log zerolog.Logger) error {
	if err := roles.EnsureRoles(ctx, domain.SeedRoles...); err != nil {
		return fmt.Errorf("bootstrap: ensure roles: %w", err)
	}

	if admin.Email == "" || admin.Password == "" {
		return nil
	}

	user, err := store.FindUserByEmail(ctx, admin.Email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = store.CreateUser(ctx, &domain.User{Email: admin.Email, UserName: admin.Email}, admin.Password)
		if err != nil {
			return fmt.Errorf("bootstrap: create admin: %w", err)
		}
		log.Info().Str("user_id", user.ID).Msg("seeded admin user")
	case err != nil:
		return fmt.Errorf("bootstrap: find admin: %w", err)
	}

	for _, role := range []string{domain.RoleAdmin, domain.RoleUser} {
		in, err := store.IsInRole(ctx, user, role)
		if err != nil {
			return fmt.Errorf("bootstrap: check %s role: %w", role, err)
		}
		if in {
			continue
		}
		if err := store.AddToRole(ctx, user, role); err != nil {
			return fmt.Errorf("bootstrap: assign %s role: %w", role, err)
		}
	}
	return nil
}

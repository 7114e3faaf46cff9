package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
	"github.com/catalog-backoffice/product-api/internal/core/validation"
)

// RoleService moves a (user, role) pair between NotMember and Member.
// The membership check and the mutation run under a per-pair lock; the
// store's uniqueness constraint remains the final guard.
type RoleService struct {
	store     ports.CredentialStore
	locker    ports.Locker
	validator *validation.Validator
	log       zerolog.Logger
}

var _ ports.RoleService = (*RoleService)(nil)

// NewRoleService returns a RoleService. A nil locker disables serialisation.
func NewRoleService(store ports.CredentialStore, locker ports.Locker, log zerolog.Logger) *RoleService {
	if locker == nil {
		locker = noLocker{}
	}
	return &RoleService{
		store:     store,
		locker:    locker,
		validator: validation.New(),
		log:       log,
	}
}

func (s *RoleService) Assign(ctx context.Context, in ports.RoleMembershipInput) (string, error) {
	user, role, err := s.resolve(ctx, in)
	if err != nil {
		return "", err
	}

	release, err := s.locker.Lock(ctx, membershipKey(user.ID, role.Name))
	if err != nil {
		return "", fmt.Errorf("assign role: acquire lock: %w", err)
	}
	defer release()

	member, err := s.store.IsInRole(ctx, user, role.Name)
	if err != nil {
		return "", fmt.Errorf("assign role: check membership: %w", err)
	}
	if member {
		return "", domain.NewValidationError(domain.MsgRoleAlreadyPresent)
	}

	if err := s.store.AddToRole(ctx, user, role.Name); err != nil {
		return "", storeFailure("assign role", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", role.Name).Msg("role assigned")
	return MsgRoleAssigned, nil
}

func (s *RoleService) Revoke(ctx context.Context, in ports.RoleMembershipInput) (string, error) {
	user, role, err := s.resolve(ctx, in)
	if err != nil {
		return "", err
	}

	release, err := s.locker.Lock(ctx, membershipKey(user.ID, role.Name))
	if err != nil {
		return "", fmt.Errorf("revoke role: acquire lock: %w", err)
	}
	defer release()

	member, err := s.store.IsInRole(ctx, user, role.Name)
	if err != nil {
		return "", fmt.Errorf("revoke role: check membership: %w", err)
	}
	if !member {
		return "", domain.NewValidationError(domain.MsgUserNotInRole)
	}

	if err := s.store.RemoveFromRole(ctx, user, role.Name); err != nil {
		return "", storeFailure("revoke role", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", role.Name).Msg("role removed")
	return MsgRoleRemoved, nil
}

// resolve validates the command and loads both sides of the pair.
func (s *RoleService) resolve(ctx context.Context, in ports.RoleMembershipInput) (*domain.User, *domain.Role, error) {
	if msgs := s.validator.Validate(in); len(msgs) > 0 {
		return nil, nil, domain.NewValidationError(msgs...)
	}

	user, err := s.store.FindUserByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.NewNotFoundError(domain.MsgUserNotFound)
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	role, err := s.store.FindRoleByID(ctx, in.RoleID)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return nil, nil, domain.NewNotFoundError(domain.MsgRoleNotFound)
		}
		return nil, nil, fmt.Errorf("find role: %w", err)
	}

	return user, role, nil
}

func membershipKey(userID, roleName string) string {
	return "membership:" + userID + ":" + roleName
}

type noLocker struct{}

func (noLocker) Lock(context.Context, string) (func(), error) { return func() {}, nil }

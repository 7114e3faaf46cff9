package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
	"github.com/catalog-backoffice/product-api/internal/core/validation"
)

const compensationTimeout = 5 * time.Second

// AuthService implements registration and login.
type AuthService struct {
	store     ports.CredentialStore
	issuer    ports.TokenIssuer
	validator *validation.Validator
	log       zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(store ports.CredentialStore, issuer ports.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		issuer:    issuer,
		validator: validation.New(),
		log:       log,
	}
}

// Register creates an account holding the default role. No token is issued.
// If the default role cannot be assigned the new account is deleted again.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	if msgs := s.validator.Validate(in); len(msgs) > 0 {
		return "", domain.NewValidationError(msgs...)
	}

	_, err := s.store.FindUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return "", domain.NewValidationError(domain.MsgEmailExists)
	case !errors.Is(err, domain.ErrUserNotFound):
		return "", fmt.Errorf("register: find user by email: %w", err)
	}

	userName := in.UserName
	if userName == "" {
		userName = in.Email
	}
	user := &domain.User{
		Email:     in.Email,
		UserName:  userName,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}

	created, err := s.store.CreateUser(ctx, user, in.Password)
	if err != nil {
		return "", storeFailure("register: create user", err)
	}

	if err := s.store.AddToRole(ctx, created, domain.DefaultRole); err != nil {
		s.compensate(ctx, created)
		return "", storeFailure("register: assign default role", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return MsgUserRegistered, nil
}

// compensate removes an account whose registration did not complete. It runs
// detached from ctx so a cancelled request still cleans up.
func (s *AuthService) compensate(ctx context.Context, user *domain.User) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	if err := s.store.DeleteUser(cctx, user.ID); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).
			Msg("registration rollback failed, user persisted without default role")
		return
	}
	s.log.Warn().Str("user_id", user.ID).Msg("registration rolled back")
}

// Login verifies credentials and issues a token carrying the user's current
// roles. Unknown email and wrong password fail with the same message.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	user, err := s.store.FindUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewUnauthorizedError(domain.MsgInvalidCredentials)
		}
		return nil, fmt.Errorf("login: find user by email: %w", err)
	}

	ok, err := s.store.CheckPassword(ctx, user, in.Password)
	if err != nil {
		return nil, fmt.Errorf("login: check password: %w", err)
	}
	if !ok {
		return nil, domain.NewUnauthorizedError(domain.MsgInvalidCredentials)
	}

	roles, err := s.store.RolesForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("login: roles for user: %w", err)
	}

	tok, err := s.issuer.Issue(domain.Claims{
		Subject: user.ID,
		Email:   user.Email,
		Roles:   roles,
	})
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	return &ports.LoginResult{Token: tok.Value, TokenExpiry: tok.ExpiresAt}, nil
}

// storeFailure turns a store rejection into a validation error carrying the
// store's reasons and wraps anything else as an internal failure.
func storeFailure(op string, err error) error {
	var rej *domain.StoreRejection
	if errors.As(err, &rej) {
		return domain.NewValidationError(rej.Reasons...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

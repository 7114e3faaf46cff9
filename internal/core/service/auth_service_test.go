package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
	"github.com/catalog-backoffice/product-api/internal/infrastructure/token"
)

func newTestIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	iss, err := token.NewIssuer(token.Config{
		SigningKey: "MyStrongPassword123!MyStrongPassword123!",
		Issuer:     "https://localhost:7060/",
		Audience:   "https://localhost:7060/",
		TTL:        time.Hour,
	})
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return iss
}

func TestAuthService_Register_Success(t *testing.T) {
	store := newSpyStore(t)
	svc := NewAuthService(store, newTestIssuer(t), nopLog)

	msg, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:           "a@x.com",
		Password:        "Password1",
		ConfirmPassword: "Password1",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if msg != MsgUserRegistered {
		t.Fatalf("unexpected message: %q", msg)
	}

	user, err := store.FindUserByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if user.PasswordHash == "Password1" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed by the store")
	}
	if user.UserName != "a@x.com" {
		t.Fatalf("expected user name to default to email, got %q", user.UserName)
	}
	roles, _ := store.RolesForUser(context.Background(), user)
	if len(roles) != 1 || roles[0] != domain.DefaultRole {
		t.Fatalf("expected default role %q, got %v", domain.DefaultRole, roles)
	}
}

func TestAuthService_Register_ShortPasswordNeverCreates(t *testing.T) {
	passwords := []string{"", "a", "Pass1", "Passwo1"}

	for _, pw := range passwords {
		store := newSpyStore(t)
		svc := NewAuthService(store, newTestIssuer(t), nopLog)

		_, err := svc.Register(context.Background(), ports.RegisterInput{
			Email:           "a@x.com",
			Password:        pw,
			ConfirmPassword: pw,
		})
		wantKind(t, err, domain.KindValidation, "password must be at least 8 characters")
		if store.createCalls != 0 {
			t.Fatalf("password %q: CreateUser called %d times", pw, store.createCalls)
		}
	}
}

func TestAuthService_Register_ValidationCollectsAllMessages(t *testing.T) {
	store := newSpyStore(t)
	svc := NewAuthService(store, newTestIssuer(t), nopLog)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:           "nope",
		Password:        "Password1",
		ConfirmPassword: "Password2",
	})
	wantKind(t, err, domain.KindValidation,
		"email must be a valid email address",
		"password and confirmation do not match",
	)
	if store.createCalls != 0 {
		t.Fatalf("CreateUser should not be called")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	store := newSpyStore(t)
	svc := NewAuthService(store, newTestIssuer(t), nopLog)
	in := ports.RegisterInput{Email: "a@x.com", Password: "Password1", ConfirmPassword: "Password1"}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	in.Email = "A@X.COM"
	_, err := svc.Register(context.Background(), in)
	wantKind(t, err, domain.KindValidation, domain.MsgEmailExists)

	if store.UserCount() != 1 {
		t.Fatalf("expected exactly one user, got %d", store.UserCount())
	}
	if store.createCalls != 1 {
		t.Fatalf("expected CreateUser once, got %d", store.createCalls)
	}
}

func TestAuthService_Register_StoreRejection(t *testing.T) {
	store := newSpyStore(t)
	store.createErr = domain.Reject("Error creating user")
	svc := NewAuthService(store, newTestIssuer(t), nopLog)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "a@x.com", Password: "Password1", ConfirmPassword: "Password1",
	})
	wantKind(t, err, domain.KindValidation, "Error creating user")
}

func TestAuthService_Register_StoreOutageIsInternal(t *testing.T) {
	store := newSpyStore(t)
	outage := errors.New("connection refused")
	store.findByEmailErr = outage
	svc := NewAuthService(store, newTestIssuer(t), nopLog)

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "a@x.com", Password: "Password1", ConfirmPassword: "Password1",
	})
	if !errors.Is(err, outage) {
		t.Fatalf("expected wrapped outage, got %v", err)
	}
	var de *domain.Error
	if errors.As(err, &de) {
		t.Fatalf("store outage must not be a typed domain error")
	}
}

func TestAuthService_Register_DefaultRoleFailureRollsBack(t *testing.T) {
	tests := []struct {
		name    string
		addErr  error
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "rejection",
			addErr: domain.Reject("role User does not exist"),
			checkFn: func(t *testing.T, err error) {
				wantKind(t, err, domain.KindValidation, "role User does not exist")
			},
		},
		{
			name:   "outage",
			addErr: context.DeadlineExceeded,
			checkFn: func(t *testing.T, err error) {
				if !errors.Is(err, context.DeadlineExceeded) {
					t.Fatalf("expected deadline error, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newSpyStore(t)
			store.addToRoleErr = tt.addErr
			svc := NewAuthService(store, newTestIssuer(t), nopLog)

			_, err := svc.Register(context.Background(), ports.RegisterInput{
				Email: "a@x.com", Password: "Password1", ConfirmPassword: "Password1",
			})
			tt.checkFn(t, err)

			if store.deleteCalls != 1 {
				t.Fatalf("expected rollback delete, got %d calls", store.deleteCalls)
			}
			if store.UserCount() != 0 {
				t.Fatalf("expected no persisted user after rollback")
			}
		})
	}
}

func TestAuthService_Register_RollbackSurvivesCancellation(t *testing.T) {
	store := newSpyStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.onAddToRole = cancel
	svc := NewAuthService(store, newTestIssuer(t), nopLog)

	_, err := svc.Register(ctx, ports.RegisterInput{
		Email: "a@x.com", Password: "Password1", ConfirmPassword: "Password1",
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if store.deleteCalls != 1 || store.UserCount() != 0 {
		t.Fatalf("expected rollback to remove the user, deletes=%d users=%d", store.deleteCalls, store.UserCount())
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	store := newSpyStore(t)
	issuer := newTestIssuer(t)
	svc := NewAuthService(store, issuer, nopLog)
	user := mustUser(t, store, "test@example.com", "Password123", domain.RoleAdmin, domain.RoleUser)

	res, err := svc.Login(context.Background(), ports.LoginInput{Email: "test@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if !res.TokenExpiry.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %v", res.TokenExpiry)
	}

	claims, err := issuer.Parse(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(claims.Roles) != 2 || !claims.HasRole(domain.RoleAdmin) || !claims.HasRole(domain.RoleUser) {
		t.Fatalf("expected exactly Admin and User, got %v", claims.Roles)
	}
}

func TestAuthService_Login_NoRoles(t *testing.T) {
	store := newSpyStore(t)
	issuer := newTestIssuer(t)
	svc := NewAuthService(store, issuer, nopLog)
	mustUser(t, store, "plain@example.com", "Password123")

	res, err := svc.Login(context.Background(), ports.LoginInput{Email: "plain@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := issuer.Parse(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if len(claims.Roles) != 0 {
		t.Fatalf("expected no roles, got %v", claims.Roles)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	store := newSpyStore(t)
	svc := NewAuthService(store, newTestIssuer(t), nopLog)
	mustUser(t, store, "dave@example.com", "goodpassword")

	_, unknownErr := svc.Login(context.Background(), ports.LoginInput{Email: "ghost@example.com", Password: "goodpassword"})
	_, wrongErr := svc.Login(context.Background(), ports.LoginInput{Email: "dave@example.com", Password: "badpassword"})

	wantKind(t, unknownErr, domain.KindUnauthorized, domain.MsgInvalidCredentials)
	wantKind(t, wrongErr, domain.KindUnauthorized, domain.MsgInvalidCredentials)
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("messages differ: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}

func TestAuthService_Login_IssuerFailureIsInternal(t *testing.T) {
	store := newSpyStore(t)
	boom := errors.New("signing failed")
	svc := NewAuthService(store, &stubIssuer{issueFn: func(domain.Claims) (ports.IssuedToken, error) {
		return ports.IssuedToken{}, boom
	}}, nopLog)
	mustUser(t, store, "a@x.com", "Password1")

	_, err := svc.Login(context.Background(), ports.LoginInput{Email: "a@x.com", Password: "Password1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped issuer error, got %v", err)
	}
}

func TestAuthService_Login_PassesHeldRolesToIssuer(t *testing.T) {
	store := newSpyStore(t)
	var got domain.Claims
	svc := NewAuthService(store, &stubIssuer{issueFn: func(c domain.Claims) (ports.IssuedToken, error) {
		got = c
		return ports.IssuedToken{Value: "tok", ExpiresAt: time.Unix(1700000000, 0)}, nil
	}}, nopLog)
	u := mustUser(t, store, "s@x.com", "Password1", domain.RoleSeller)

	res, err := svc.Login(context.Background(), ports.LoginInput{Email: "s@x.com", Password: "Password1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token != "tok" || !res.TokenExpiry.Equal(time.Unix(1700000000, 0)) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got.Subject != u.ID || got.Email != "s@x.com" || len(got.Roles) != 1 || got.Roles[0] != domain.RoleSeller {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

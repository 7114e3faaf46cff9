// Package token signs and verifies HS256 bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

const defaultTTL = time.Hour

// Claims is the wire payload. Roles is serialised as a JSON array under
// "role" so that every held role is a distinct claim value.
type Claims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"role"`
}

// Config holds the externally supplied signing parameters.
type Config struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
}

// Issuer implements ports.TokenIssuer and ports.TokenParser.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

var (
	_ ports.TokenIssuer = (*Issuer)(nil)
	_ ports.TokenParser = (*Issuer)(nil)
)

func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("token: signing key must not be empty")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Issuer{
		key:      []byte(cfg.SigningKey),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Issue signs claims with an expiry of now + TTL.
func (i *Issuer) Issue(c domain.Claims) (ports.IssuedToken, error) {
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)

	roles := make([]string, len(c.Roles))
	copy(roles, c.Roles)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: c.Email,
		Roles: roles,
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return ports.IssuedToken{Value: signed, ExpiresAt: exp}, nil
}

// Parse verifies signature, algorithm, expiry, issuer and audience.
func (i *Issuer) Parse(raw string) (domain.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return i.key, nil
	}, opts...)
	if err != nil {
		return domain.Claims{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return domain.Claims{}, errors.New("parse token: invalid token")
	}

	return domain.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Roles:   claims.Roles,
	}, nil
}

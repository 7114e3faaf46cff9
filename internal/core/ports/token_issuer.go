package ports

import (
	"time"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
)

// IssuedToken is a signed bearer token and its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenIssuer signs claims into a time-bounded bearer token.
type TokenIssuer interface {
	Issue(claims domain.Claims) (IssuedToken, error)
}

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (domain.Claims, error)
}

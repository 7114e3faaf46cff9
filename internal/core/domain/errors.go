package domain

import (
	"errors"
	"strings"
)

// Kind classifies an expected failure. Anything that is not a *Error is internal.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// Error is the outcome of a flow that failed for an expected reason.
type Error struct {
	Kind     Kind
	Messages []string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + strings.Join(e.Messages, "; ")
}

func NewValidationError(messages ...string) *Error {
	return &Error{Kind: KindValidation, Messages: messages}
}

func NewNotFoundError(messages ...string) *Error {
	return &Error{Kind: KindNotFound, Messages: messages}
}

func NewUnauthorizedError(messages ...string) *Error {
	return &Error{Kind: KindUnauthorized, Messages: messages}
}

// IsKind reports whether err carries a *Error of kind k.
func IsKind(err error, k Kind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == k
}

// StoreRejection is returned by a store that refused a write for a business
// reason (duplicate key, constraint). Reasons are safe to show to callers.
type StoreRejection struct {
	Reasons []string
}

func (r *StoreRejection) Error() string {
	return "store rejected operation: " + strings.Join(r.Reasons, "; ")
}

func Reject(reasons ...string) *StoreRejection {
	return &StoreRejection{Reasons: reasons}
}

// Lookup misses reported by stores and repositories.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrRoleNotFound    = errors.New("role not found")
	ErrProductNotFound = errors.New("product not found")
)

// Messages returned to callers.
const (
	MsgInvalidCredentials = "email or password incorrect"
	MsgEmailExists        = "email already exists"
	MsgUserNotFound       = "user not found"
	MsgRoleNotFound       = "role not found"
	MsgRoleAlreadyPresent = "role already present"
	MsgUserNotInRole      = "user not in role"
	MsgProductNotFound    = "product not found"
	MsgInvalidPayload     = "invalid payload"
)

package handler

import (
	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/validation"
)

// echoValidator lets handlers call c.Validate(req) on transport-only DTOs
// such as query parameters. Command validation stays in the services.
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validation.New()}
}

// Validate satisfies the echo.Validator interface. Failures are returned as a
// validation error so they render like every other 400.
func (ev *echoValidator) Validate(i any) error {
	if msgs := ev.v.Validate(i); len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/catalog-backoffice/product-api/internal/api/middleware"
	"github.com/catalog-backoffice/product-api/internal/api/response"
	"github.com/catalog-backoffice/product-api/internal/core/domain"
)

// MsgInternalError is the only text a caller sees for an unexpected failure.
const MsgInternalError = "an error occurred"

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps *domain.Error kinds to 400, 404 and 401 with the error's messages.
//   - Passes Echo's own errors (bind failures, unknown routes, middleware
//     rejections) through with their status code.
//   - Logs anything else and answers 500 without leaking detail.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, response.Envelope) {
	var de *domain.Error
	if errors.As(err, &de) {
		switch de.Kind {
		case domain.KindValidation:
			return http.StatusBadRequest, response.Failure("", de.Messages)
		case domain.KindNotFound:
			return http.StatusNotFound, response.Failure("", de.Messages)
		case domain.KindUnauthorized:
			return http.StatusUnauthorized, response.Failure("", de.Messages)
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, response.Failure("", []string{fmt.Sprintf("%v", he.Message)})
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", middleware.RequestIDFromContext(c)).
		Msg("unhandled error")

	return http.StatusInternalServerError, response.Failure(MsgInternalError, nil)
}

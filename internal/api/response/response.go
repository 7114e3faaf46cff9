// Package response defines the JSON envelope every endpoint returns.
package response

import "github.com/labstack/echo/v4"

// Envelope is {message, data, errors}. Errors is [] on success and data is
// null on failure.
type Envelope struct {
	Message string   `json:"message"`
	Data    any      `json:"data"`
	Errors  []string `json:"errors"`
}

// Success writes a successful envelope.
func Success(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Message: message, Data: data, Errors: []string{}})
}

// Failure builds a failed envelope. A nil errs slice is rendered as [].
func Failure(message string, errs []string) Envelope {
	if errs == nil {
		errs = []string{}
	}
	return Envelope{Message: message, Data: nil, Errors: errs}
}

package middleware

import "github.com/labstack/echo/v4"

// Keys under which middleware stores request-scoped values on echo.Context.
const (
	ContextKeyRequestID = "request_id"
	ContextKeyUserID    = "user_id"
	ContextKeyEmail     = "email"
	ContextKeyRoles     = "roles"
)

// RolesFromContext returns the roles set by Auth and whether Auth ran.
func RolesFromContext(c echo.Context) ([]string, bool) {
	roles, ok := c.Get(ContextKeyRoles).([]string)
	return roles, ok
}

// UserIDFromContext returns the authenticated subject, or "".
func UserIDFromContext(c echo.Context) string {
	id, _ := c.Get(ContextKeyUserID).(string)
	return id
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRBAC(t *testing.T, roles any, required ...string) (int, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roles != nil {
		c.Set(ContextKeyRoles, roles)
	}

	called := false
	handler := RequireRole(required...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec.Code, called
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		roles    any
		required []string
		wantCode int
	}{
		{"exact match", []string{"Admin"}, []string{"Admin"}, http.StatusOK},
		{"one of several held", []string{"User", "Seller"}, []string{"Seller"}, http.StatusOK},
		{"any of required", []string{"Seller"}, []string{"Admin", "Seller"}, http.StatusOK},
		{"wrong role", []string{"User"}, []string{"Admin"}, http.StatusForbidden},
		{"no roles", []string{}, []string{"Admin"}, http.StatusForbidden},
		{"case sensitive", []string{"admin"}, []string{"Admin"}, http.StatusForbidden},
		{"comma joined is not a role list", []string{"Admin,User"}, []string{"Admin"}, http.StatusForbidden},
		{"auth did not run", nil, []string{"Admin"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, called := runRBAC(t, tt.roles, tt.required...)
			if code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, code)
			}
			if called != (tt.wantCode == http.StatusOK) {
				t.Fatalf("next called=%v for status %d", called, code)
			}
		})
	}
}

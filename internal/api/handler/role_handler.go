package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/catalog-backoffice/product-api/internal/api/metrics"
	"github.com/catalog-backoffice/product-api/internal/api/response"
	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

// RoleHandler serves /api/userrole. Routes are Admin only.
type RoleHandler struct {
	roleService ports.RoleService
}

func NewRoleHandler(roleService ports.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

type roleMembershipRequest struct {
	UserID string `json:"userId"`
	RoleID string `json:"roleId"`
}

// Assign adds a role to a user.
//
// @Summary      Assign a role to a user
// @Tags         userrole
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roleMembershipRequest  true  "User and role ids"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/userrole [post]
func (h *RoleHandler) Assign(c echo.Context) error {
	in, err := bindMembership(c)
	if err != nil {
		return err
	}

	msg, err := h.roleService.Assign(c.Request().Context(), in)
	metrics.RoleChangesTotal.WithLabelValues("assign", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, msg, nil)
}

// Revoke removes a role from a user.
//
// @Summary      Remove a role from a user
// @Tags         userrole
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      roleMembershipRequest  true  "User and role ids"
// @Success      200   {object}  response.Envelope
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /api/userrole [delete]
func (h *RoleHandler) Revoke(c echo.Context) error {
	in, err := bindMembership(c)
	if err != nil {
		return err
	}

	msg, err := h.roleService.Revoke(c.Request().Context(), in)
	metrics.RoleChangesTotal.WithLabelValues("revoke", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}
	return response.Success(c, http.StatusOK, msg, nil)
}

func bindMembership(c echo.Context) (ports.RoleMembershipInput, error) {
	var req roleMembershipRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return ports.RoleMembershipInput{}, echo.NewHTTPError(http.StatusBadRequest, domain.MsgInvalidPayload)
	}
	return ports.RoleMembershipInput{UserID: req.UserID, RoleID: req.RoleID}, nil
}

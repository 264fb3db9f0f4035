package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"armory/internal/service"
)

// UserHandler serves the caller's own profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Profile godoc
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetProfile(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, user)
}

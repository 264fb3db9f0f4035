package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"armory/internal/service"
)

// LogHandler exposes the caller's audit trail.
type LogHandler struct {
	svc service.LogService
}

// NewLogHandler creates a new audit log handler.
func NewLogHandler(svc service.LogService) *LogHandler {
	return &LogHandler{svc: svc}
}

// List godoc
// @Summary List the caller's inventory log, newest first
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.InventoryLogEntry
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /logs [get]
func (h *LogHandler) List(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.ListForUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Get godoc
// @Summary Get one of the caller's log entries
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Log entry ID"
// @Success 200 {object} model.InventoryLogEntry
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /logs/{id} [get]
func (h *LogHandler) Get(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	entry, err := h.svc.GetForUser(c.Request().Context(), id, claims.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, entry)
}

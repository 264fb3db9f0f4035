package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"armory/internal/service"
)

// InventoryHandler handles scanning and the equipment registry.
type InventoryHandler struct {
	inventory service.InventoryService
	equipment service.EquipmentService
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(inventory service.InventoryService, equipment service.EquipmentService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, equipment: equipment}
}

// ScanRequest is the payload produced by a QR scanner.
type ScanRequest struct {
	QRCode string `json:"qr_code" form:"qr_code"`
	Notes  string `json:"notes" form:"notes"`
}

// EquipmentRequest carries the writable equipment fields.
type EquipmentRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	QRToken  string `json:"qr_token"`
}

func (r EquipmentRequest) input() service.EquipmentInput {
	return service.EquipmentInput{Name: r.Name, Category: r.Category, QRToken: r.QRToken}
}

// Scan godoc
// @Summary Withdraw or return an item by scanning its QR code
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ScanRequest true "Scanned QR code"
// @Success 200 {object} model.Equipment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /inventory/scan [post]
func (h *InventoryHandler) Scan(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	item, err := h.inventory.Scan(c.Request().Context(), req.QRCode, claims.UserID, req.Notes)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// Mine godoc
// @Summary List items the caller currently holds
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Equipment
// @Failure 401 {object} errors.ErrorResponse
// @Router /inventory [get]
func (h *InventoryHandler) Mine(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	items, err := h.equipment.ListByHolder(c.Request().Context(), claims.UserID)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// CreateItem godoc
// @Summary Register equipment
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body EquipmentRequest true "Equipment"
// @Success 201 {object} model.Equipment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /inventory/items [post]
func (h *InventoryHandler) CreateItem(c echo.Context) error {
	var req EquipmentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	item, err := h.equipment.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

// ListItems godoc
// @Summary List all equipment
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Equipment
// @Router /inventory/items [get]
func (h *InventoryHandler) ListItems(c echo.Context) error {
	items, err := h.equipment.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// GetItem godoc
// @Summary Get equipment by id
// @Tags inventory
// @Produce json
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Success 200 {object} model.Equipment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /inventory/items/{id} [get]
func (h *InventoryHandler) GetItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	item, err := h.equipment.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// UpdateItem godoc
// @Summary Rename or recategorise equipment
// @Tags inventory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Param request body EquipmentRequest true "Equipment"
// @Success 200 {object} model.Equipment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /inventory/items/{id} [put]
func (h *InventoryHandler) UpdateItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req EquipmentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	item, err := h.equipment.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete equipment and its log entries
// @Tags inventory
// @Security BearerAuth
// @Param id path int true "Equipment ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /inventory/items/{id} [delete]
func (h *InventoryHandler) DeleteItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.equipment.Delete(c.Request().Context(), id); err != nil {
		return respondError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid id")
	}
	return uint(id), nil
}

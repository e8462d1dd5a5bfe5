package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"payment_options_echo/internal/services"
	"payment_options_echo/internal/storage"
)

// AdminHandler exposes read-only views of stored payment state
type AdminHandler struct {
	records *services.PaymentRecordService
}

func NewAdminHandler(records *services.PaymentRecordService) *AdminHandler {
	return &AdminHandler{records: records}
}

func (h *AdminHandler) GetPaymentRecord(c echo.Context) error {
	rec, err := h.records.GetPaymentRecord(c.Request().Context(), c.Param("userId"))
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Payment record not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *AdminHandler) ListInteractions(c echo.Context) error {
	items, err := h.records.ListInteractions(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"userId":       c.Param("userId"),
		"interactions": items,
	})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-reservation/internal/booking"
)

// DashboardHandler serves the front desk summary views.
type DashboardHandler struct {
	svc *booking.Service
}

func NewDashboardHandler(svc *booking.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats handles GET /v1/dashboard/stats.
func (h *DashboardHandler) Stats(c echo.Context) error {
	st, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, st)
}

// Rooms handles GET /v1/dashboard/rooms?limit= (default 10).
func (h *DashboardHandler) Rooms(c echo.Context) error {
	occ, err := h.svc.Occupancy(c.Request().Context(), queryLimit(c, 10))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, occ)
}

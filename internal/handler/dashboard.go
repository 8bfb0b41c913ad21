package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

type DashboardHandler struct {
	Dashboard *service.Dashboard
}

func NewDashboardHandler(s *service.Dashboard) *DashboardHandler {
	return &DashboardHandler{Dashboard: s}
}

// Stats returns the admin landing-page counters.
func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	stats, err := h.Dashboard.Stats(ctx)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

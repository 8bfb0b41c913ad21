// Package handler contains the HTTP layer: request DTOs, binding and the
// mapping from service errors to status codes. Handlers hold no business
// rules; they translate between HTTP and the service layer.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

// dbTimeout bounds every request-scoped database interaction.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// serviceError maps the service error taxonomy onto HTTP responses. The
// error chain's message is passed through; sentinel text alone is too vague
// for clients.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredential):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSessionSuperseded):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "logged in from another device"})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUpstreamUnavailable):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "upstream service unavailable"})
	default:
		c.Logger().Errorf("handler: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// reqMeta collects the actor, client address and device headers for audit
// records and session binding. Clients that do not send X-Device-Model get
// their User-Agent recorded as the model instead.
func reqMeta(c echo.Context) service.RequestMeta {
	m := service.RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		Device: repository.DeviceMeta{
			DeviceID:    c.Request().Header.Get("X-Device-Id"),
			DeviceModel: c.Request().Header.Get("X-Device-Model"),
			AppVersion:  c.Request().Header.Get("X-App-Version"),
			DeviceToken: c.Request().Header.Get("X-Device-Token"),
			PlayerID:    c.Request().Header.Get("X-Player-Id"),
		},
	}
	if m.Device.DeviceModel == "" {
		m.Device.DeviceModel = m.UserAgent
	}
	if id, ok := c.Get("user_id").(uint64); ok {
		m.ActorID = id
	}
	return m
}

func paramID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func pageQuery(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

// pagedResp is the envelope for list endpoints.
type pagedResp struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
}

func paged(data interface{}, total, page, limit int) pagedResp {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return pagedResp{Data: data, Total: total, Page: page, Limit: limit, TotalPages: pages}
}

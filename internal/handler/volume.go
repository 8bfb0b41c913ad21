package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

type VolumeHandler struct {
	Content *service.Content
}

func NewVolumeHandler(s *service.Content) *VolumeHandler {
	return &VolumeHandler{Content: s}
}

type volumeReq struct {
	JournalID  uint64 `json:"journalId"`
	VolumeName string `json:"volumeName"`
}

func (h *VolumeHandler) Create(c echo.Context) error {
	var req volumeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Content.CreateVolume(ctx, req.JournalID, req.VolumeName, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *VolumeHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	// A journalId filter returns that journal's live volumes unpaged.
	if raw := c.QueryParam("journalId"); raw != "" {
		jid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || jid == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid journalId"})
		}
		vols, err := h.Content.ListVolumesByJournal(ctx, jid)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": vols})
	}

	page, limit := pageQuery(c)
	vols, total, err := h.Content.ListVolumes(ctx, c.QueryParam("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paged(vols, total, page, limit))
}

func (h *VolumeHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Content.GetVolume(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VolumeHandler) Rename(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req volumeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	v, err := h.Content.RenameVolume(ctx, id, req.VolumeName, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes one volume. Issues and articles under it are untouched;
// only a journal-level delete cascades.
func (h *VolumeHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.DeleteVolume(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "volume deleted"})
}

func (h *VolumeHandler) Restore(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.RestoreVolume(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "volume restored"})
}

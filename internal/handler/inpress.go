package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

// InPressHandler manages accepted-but-unpublished articles shelved under a
// volume.
type InPressHandler struct {
	Content *service.Content
}

func NewInPressHandler(s *service.Content) *InPressHandler {
	return &InPressHandler{Content: s}
}

type inPressReq struct {
	VolumeID uint64 `json:"volumeId"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Content  string `json:"content"`
	Document string `json:"document"`
}

func (h *InPressHandler) Create(c echo.Context) error {
	var req inPressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Content.CreateInPress(ctx, service.InPressInput{
		VolumeID: req.VolumeID, Title: req.Title, Author: req.Author,
		Content: req.Content, Document: req.Document,
	}, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *InPressHandler) List(c echo.Context) error {
	page, limit := pageQuery(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	arts, total, err := h.Content.ListInPress(ctx, c.QueryParam("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paged(arts, total, page, limit))
}

func (h *InPressHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Content.GetInPress(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *InPressHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req inPressReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Content.UpdateInPress(ctx, id, service.InPressInput{
		Title: req.Title, Author: req.Author,
		Content: req.Content, Document: req.Document,
	}, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *InPressHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.DeleteInPress(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "in-press article deleted"})
}

func (h *InPressHandler) Restore(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.RestoreInPress(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "in-press article restored"})
}

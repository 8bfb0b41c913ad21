package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

type EditorHandler struct {
	Editors *service.Editors
}

func NewEditorHandler(s *service.Editors) *EditorHandler {
	return &EditorHandler{Editors: s}
}

type editorReq struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	University  string `json:"university"`
	Address     string `json:"address"`
	CoverImage  string `json:"coverImage"`
}

func (r editorReq) toInput() service.EditorInput {
	return service.EditorInput{
		FirstName: r.FirstName, LastName: r.LastName, Email: r.Email,
		Designation: r.Designation, Department: r.Department,
		University: r.University, Address: r.Address, CoverImage: r.CoverImage,
	}
}

func (h *EditorHandler) Create(c echo.Context) error {
	var req editorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Editors.Create(ctx, req.toInput(), reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *EditorHandler) List(c echo.Context) error {
	page, limit := pageQuery(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	editors, total, err := h.Editors.List(ctx, c.QueryParam("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paged(editors, total, page, limit))
}

func (h *EditorHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Editors.Get(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *EditorHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req editorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Editors.Update(ctx, id, req.toInput(), reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *EditorHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Editors.Delete(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "editor deleted"})
}

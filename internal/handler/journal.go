package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

// JournalHandler exposes journal CRUD, the full-details tree view,
// soft-delete with cascade and restore.
type JournalHandler struct {
	Content *service.Content
}

func NewJournalHandler(s *service.Content) *JournalHandler {
	return &JournalHandler{Content: s}
}

type journalReq struct {
	Title      string `json:"title"`
	SubTitle   string `json:"subTitle"`
	Content    string `json:"content"`
	CoverImage string `json:"coverImage"`
	ISSN       string `json:"issn"`
}

type assignEditorsReq struct {
	EditorIDs []uint64 `json:"editorIds"`
}

func (r journalReq) toInput() service.JournalInput {
	return service.JournalInput{
		Title: r.Title, SubTitle: r.SubTitle, Content: r.Content,
		CoverImage: r.CoverImage, ISSN: r.ISSN,
	}
}

func (h *JournalHandler) Create(c echo.Context) error {
	var req journalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Content.CreateJournal(ctx, req.toInput(), reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, j)
}

func (h *JournalHandler) List(c echo.Context) error {
	page, limit := pageQuery(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	journals, total, err := h.Content.ListJournals(ctx, c.QueryParam("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paged(journals, total, page, limit))
}

// ListAll returns every live journal without pagination, for dropdowns.
func (h *JournalHandler) ListAll(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	journals, err := h.Content.ListAllJournals(ctx)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": journals})
}

// ListDeleted returns soft-deleted journals, the restore candidates.
func (h *JournalHandler) ListDeleted(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	journals, err := h.Content.ListDeletedJournals(ctx)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": journals})
}

func (h *JournalHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Content.GetJournal(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, j)
}

// FullDetails returns the journal with its editors and the whole
// volume/issue/article tree in one response.
func (h *JournalHandler) FullDetails(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	details, err := h.Content.JournalFullDetails(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

func (h *JournalHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req journalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Content.UpdateJournal(ctx, id, req.toInput(), reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, j)
}

// AssignEditors replaces the journal's editorial board with the given set.
func (h *JournalHandler) AssignEditors(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req assignEditorsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.AssignEditors(ctx, id, req.EditorIDs, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "editors assigned"})
}

// Delete soft-deletes the journal and everything beneath it.
func (h *JournalHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.DeleteJournal(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "journal deleted"})
}

// Restore brings a soft-deleted journal and its tree back.
func (h *JournalHandler) Restore(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.RestoreJournal(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "journal restored"})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

// SubmissionHandler covers the public manuscript submission endpoint and
// the admin review lifecycle.
type SubmissionHandler struct {
	Submissions *service.Submissions
}

func NewSubmissionHandler(s *service.Submissions) *SubmissionHandler {
	return &SubmissionHandler{Submissions: s}
}

type submissionReq struct {
	JournalID    uint64                   `json:"journalId"`
	Name         string                   `json:"name"`
	Email        string                   `json:"email"`
	Country      string                   `json:"country"`
	ArticleTitle string                   `json:"articleTitle"`
	ArticleType  string                   `json:"articleType"`
	Abstract     string                   `json:"abstract"`
	Files        []service.SubmissionFile `json:"files"`
}

type submissionStatusReq struct {
	Status string `json:"status"`
}

// Create accepts a public manuscript submission.
func (h *SubmissionHandler) Create(c echo.Context) error {
	var req submissionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sub, err := h.Submissions.Create(ctx, service.SubmissionInput{
		JournalID: req.JournalID, Name: req.Name, Email: req.Email,
		Country: req.Country, ArticleTitle: req.ArticleTitle,
		ArticleType: req.ArticleType, Abstract: req.Abstract, Files: req.Files,
	}, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, sub)
}

func (h *SubmissionHandler) List(c echo.Context) error {
	page, limit := pageQuery(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	subs, total, err := h.Submissions.List(ctx, c.QueryParam("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paged(subs, total, page, limit))
}

func (h *SubmissionHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sub, err := h.Submissions.Get(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, sub)
}

// UpdateStatus moves a submission through review.
func (h *SubmissionHandler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req submissionStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Submissions.UpdateStatus(ctx, id, req.Status, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}

func (h *SubmissionHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Submissions.Delete(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "submission deleted"})
}

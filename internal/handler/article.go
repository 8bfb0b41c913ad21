package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

type ArticleHandler struct {
	Content *service.Content
}

func NewArticleHandler(s *service.Content) *ArticleHandler {
	return &ArticleHandler{Content: s}
}

type articleReq struct {
	IssueID      uint64 `json:"issueId"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Content      string `json:"content"`
	CoverImage   string `json:"coverImage"`
	ArticleType  string `json:"articleType"`
	ExternalLink string `json:"externalLink"`
	Status       string `json:"status"`
}

func (r articleReq) toInput() service.ArticleInput {
	return service.ArticleInput{
		IssueID: r.IssueID, Title: r.Title, Author: r.Author,
		Content: r.Content, CoverImage: r.CoverImage,
		ArticleType: r.ArticleType, ExternalLink: r.ExternalLink,
		Status: r.Status,
	}
}

func (h *ArticleHandler) Create(c echo.Context) error {
	var req articleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Content.CreateArticle(ctx, req.toInput(), reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *ArticleHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if raw := c.QueryParam("journalId"); raw != "" {
		jid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || jid == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid journalId"})
		}
		arts, err := h.Content.ListArticlesByJournal(ctx, jid)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": arts})
	}
	if raw := c.QueryParam("issueId"); raw != "" {
		iid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || iid == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid issueId"})
		}
		arts, err := h.Content.ListArticlesByIssue(ctx, iid)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": arts})
	}

	page, limit := pageQuery(c)
	arts, total, err := h.Content.ListArticles(ctx, c.QueryParam("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paged(arts, total, page, limit))
}

func (h *ArticleHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Content.GetArticle(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *ArticleHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req articleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	a, err := h.Content.UpdateArticle(ctx, id, req.toInput(), reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// RecordView bumps the public view counter. Unauthenticated by design.
func (h *ArticleHandler) RecordView(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.RecordView(ctx, id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "view recorded"})
}

// RecordDownload bumps the public download counter.
func (h *ArticleHandler) RecordDownload(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.RecordDownload(ctx, id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "download recorded"})
}

func (h *ArticleHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.DeleteArticle(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "article deleted"})
}

func (h *ArticleHandler) Restore(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.RestoreArticle(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "article restored"})
}

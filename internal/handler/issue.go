package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

type IssueHandler struct {
	Content *service.Content
}

func NewIssueHandler(s *service.Content) *IssueHandler {
	return &IssueHandler{Content: s}
}

type issueReq struct {
	VolumeID  uint64 `json:"volumeId"`
	IssueName string `json:"issueName"`
}

func (h *IssueHandler) Create(c echo.Context) error {
	var req issueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	i, err := h.Content.CreateIssue(ctx, req.VolumeID, req.IssueName, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, i)
}

func (h *IssueHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if raw := c.QueryParam("journalId"); raw != "" {
		jid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || jid == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid journalId"})
		}
		issues, err := h.Content.ListIssuesByJournal(ctx, jid)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"data": issues})
	}

	page, limit := pageQuery(c)
	var volumeID uint64
	if raw := c.QueryParam("volumeId"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid volumeId"})
		}
		volumeID = v
	}

	issues, total, err := h.Content.ListIssues(ctx, c.QueryParam("search"), volumeID, page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, paged(issues, total, page, limit))
}

func (h *IssueHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	i, err := h.Content.GetIssue(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, i)
}

func (h *IssueHandler) Rename(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req issueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	i, err := h.Content.RenameIssue(ctx, id, req.IssueName, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, i)
}

func (h *IssueHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.DeleteIssue(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "issue deleted"})
}

func (h *IssueHandler) Restore(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Content.RestoreIssue(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "issue restored"})
}

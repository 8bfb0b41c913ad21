package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

// UserHandler exposes the admin account-management endpoints.
type UserHandler struct {
	Accounts *service.Accounts
}

func NewUserHandler(a *service.Accounts) *UserHandler {
	return &UserHandler{Accounts: a}
}

type createUserReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type updateUserReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
}

type adminUserPart struct {
	ID           uint64 `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Role         string `json:"role"`
	Address      string `json:"address,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Active       bool   `json:"active"`
	Approved     bool   `json:"approved"`
}

func toAdminUserPart(u repository.User) adminUserPart {
	p := adminUserPart{
		ID: u.ID, FirstName: u.FirstName, LastName: u.LastName,
		Email: u.Email, Phone: u.Phone, Role: u.Role,
		Active: u.Active, Approved: u.Approved,
	}
	if u.Address.Valid {
		p.Address = u.Address.String
	}
	if u.ProfileImage.Valid {
		p.ProfileImage = u.ProfileImage.String
	}
	return p
}

// Create provisions an account directly, bypassing the OTP flow.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Create(ctx, service.NewAccountInput{
		FirstName: req.FirstName, LastName: req.LastName,
		Email: req.Email, Phone: req.Phone,
		Password: req.Password, Role: req.Role,
	}, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, toAdminUserPart(u))
}

func (h *UserHandler) List(c echo.Context) error {
	page, limit := pageQuery(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	users, total, err := h.Accounts.List(ctx, c.QueryParam("search"), page, limit)
	if err != nil {
		return serviceError(c, err)
	}
	out := make([]adminUserPart, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserPart(u))
	}
	return c.JSON(http.StatusOK, paged(out, total, page, limit))
}

func (h *UserHandler) ListPending(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Accounts.ListPending(ctx)
	if err != nil {
		return serviceError(c, err)
	}
	out := make([]adminUserPart, 0, len(users))
	for _, u := range users {
		out = append(out, toAdminUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"data": out})
}

func (h *UserHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.Get(ctx, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toAdminUserPart(u))
}

func (h *UserHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Accounts.UpdateProfile(ctx, id, req.FirstName, req.LastName, req.Address, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, toAdminUserPart(u))
}

func (h *UserHandler) Approve(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.Approve(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user approved"})
}

func (h *UserHandler) Deactivate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.SetActive(ctx, id, false, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deactivated"})
}

func (h *UserHandler) Activate(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.SetActive(ctx, id, true, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user activated"})
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.Delete(ctx, id, reqMeta(c)); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

type profileImageReq struct {
	Path string `json:"path"`
}

// SetProfileImage records an already-uploaded image path on the account.
func (h *UserHandler) SetProfileImage(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req profileImageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Accounts.SetProfileImage(ctx, id, req.Path); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "profile image updated"})
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/repository"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Identity *service.Identity
}

func NewAuthHandler(id *service.Identity) *AuthHandler {
	return &AuthHandler{Identity: id}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	OTP       string `json:"otp"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type validateReq struct {
	Token string `json:"token"`
}

type logoutReq struct {
	DeviceID string `json:"deviceId"`
}

type forgotReq struct {
	Phone       string `json:"phone"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type userPart struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

type sessionResp struct {
	User    userPart  `json:"user"`
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

func toUserPart(u repository.User) userPart {
	return userPart{
		ID: u.ID, FirstName: u.FirstName, LastName: u.LastName,
		Email: u.Email, Phone: u.Phone, Role: u.Role,
	}
}

// Register drives both phases of registration through one endpoint. A
// request without an otp field starts the flow: uniqueness is checked and a
// code is texted to the phone. A request carrying the otp completes it: the
// code is consumed, the account is created and a session is returned
// immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	profile := service.RegistrationProfile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if req.OTP == "" {
		if err := h.Identity.RequestRegistration(ctx, profile); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
	}

	sess, err := h.Identity.CompleteRegistration(ctx, profile, req.OTP, req.Password, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, sessionResp{
		User: toUserPart(sess.User), Token: sess.Token, Expires: sess.Expires,
	})
}

// Login verifies credentials and binds a fresh session, invalidating any
// token issued before it.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sess, err := h.Identity.Login(ctx, req.Email, req.Password, reqMeta(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, sessionResp{
		User: toUserPart(sess.User), Token: sess.Token, Expires: sess.Expires,
	})
}

// Validate checks a token supplied in the body, for clients that want to
// probe a stored token before using it.
func (h *AuthHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Identity.Validate(ctx, req.Token)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true, "user": toUserPart(u)})
}

// Logout clears the caller's bound session when the supplied device id
// matches the one recorded at login. A mismatch is not an error; the
// session it would have cleared is already gone.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	meta := reqMeta(c)
	if req.DeviceID == "" {
		req.DeviceID = meta.Device.DeviceID
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Identity.LogoutDevice(ctx, meta.ActorID, req.DeviceID, meta); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// ForgotPassword mirrors Register's two-phase shape for password resets.
// Without an otp it sends a code to the phone; with one it consumes the code
// and stores the new password. No session is created either way.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if req.OTP == "" {
		if err := h.Identity.RequestPasswordReset(ctx, req.Phone); err != nil {
			return serviceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
	}

	if err := h.Identity.ResetPassword(ctx, req.Phone, req.OTP, req.NewPassword); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := c.Get("user").(repository.User)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

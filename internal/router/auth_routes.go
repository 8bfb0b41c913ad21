package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/handler"
)

// RegisterAuth registers the identity endpoints. Register and forgot-password
// each drive a two-phase OTP flow through a single route, so both sit behind
// the OTP rate limiter. Logout and /me require a live bound session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler,
	session echo.MiddlewareFunc, otpLimit echo.MiddlewareFunc) {

	g := e.Group("/v1/auth")
	g.POST("/register", a.Register, otpLimit)
	g.POST("/login", a.Login)
	g.POST("/validate-token", a.Validate)
	g.POST("/forgot-password", a.ForgotPassword, otpLimit)

	auth := e.Group("/v1/auth")
	auth.Use(session)
	auth.POST("/logout", a.Logout)
	auth.GET("/me", a.Me)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/handler"
	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/middleware"
)

// RegisterAdmin registers every endpoint that mutates the catalog or manages
// accounts. The whole group sits behind session auth plus the admin role
// gate.
func RegisterAdmin(e *echo.Echo, session echo.MiddlewareFunc,
	users *handler.UserHandler,
	journals *handler.JournalHandler,
	volumes *handler.VolumeHandler,
	issues *handler.IssueHandler,
	articles *handler.ArticleHandler,
	inPress *handler.InPressHandler,
	editors *handler.EditorHandler,
	submissions *handler.SubmissionHandler,
	dashboard *handler.DashboardHandler) {

	g := e.Group("/v1/admin")
	g.Use(session)
	g.Use(middleware.RequireRole("admin"))

	g.GET("/dashboard", dashboard.Stats)

	g.POST("/users", users.Create)
	g.GET("/users", users.List)
	g.GET("/users/pending", users.ListPending)
	g.GET("/users/:id", users.Get)
	g.PUT("/users/:id", users.Update)
	g.PUT("/users/:id/approve", users.Approve)
	g.PUT("/users/:id/activate", users.Activate)
	g.PUT("/users/:id/deactivate", users.Deactivate)
	g.PUT("/users/:id/profile-image", users.SetProfileImage)
	g.DELETE("/users/:id", users.Delete)

	g.POST("/journals", journals.Create)
	g.GET("/journals/deleted", journals.ListDeleted)
	g.PUT("/journals/:id", journals.Update)
	g.PUT("/journals/:id/editors", journals.AssignEditors)
	g.PUT("/journals/:id/restore", journals.Restore)
	g.DELETE("/journals/:id", journals.Delete)

	g.POST("/volumes", volumes.Create)
	g.PUT("/volumes/:id", volumes.Rename)
	g.PUT("/volumes/:id/restore", volumes.Restore)
	g.DELETE("/volumes/:id", volumes.Delete)

	g.POST("/issues", issues.Create)
	g.PUT("/issues/:id", issues.Rename)
	g.PUT("/issues/:id/restore", issues.Restore)
	g.DELETE("/issues/:id", issues.Delete)

	g.POST("/articles", articles.Create)
	g.PUT("/articles/:id", articles.Update)
	g.PUT("/articles/:id/restore", articles.Restore)
	g.DELETE("/articles/:id", articles.Delete)

	g.POST("/inpress", inPress.Create)
	g.PUT("/inpress/:id", inPress.Update)
	g.PUT("/inpress/:id/restore", inPress.Restore)
	g.DELETE("/inpress/:id", inPress.Delete)

	g.POST("/editors", editors.Create)
	g.PUT("/editors/:id", editors.Update)
	g.DELETE("/editors/:id", editors.Delete)

	g.GET("/submissions", submissions.List)
	g.GET("/submissions/:id", submissions.Get)
	g.PUT("/submissions/:id/status", submissions.UpdateStatus)
	g.DELETE("/submissions/:id", submissions.Delete)
}

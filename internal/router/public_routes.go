package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Nikhil-Varunix/BrightSphere-Backend/internal/handler"
)

// RegisterPublic registers the read-side catalog endpoints plus the public
// actions a reader can take without an account: submitting a manuscript and
// bumping article view/download counters.
func RegisterPublic(e *echo.Echo,
	journals *handler.JournalHandler,
	volumes *handler.VolumeHandler,
	issues *handler.IssueHandler,
	articles *handler.ArticleHandler,
	inPress *handler.InPressHandler,
	editors *handler.EditorHandler,
	submissions *handler.SubmissionHandler) {

	g := e.Group("/v1")

	g.GET("/journals", journals.List)
	g.GET("/journals/all", journals.ListAll)
	g.GET("/journals/:id", journals.Get)
	g.GET("/journals/:id/details", journals.FullDetails)

	g.GET("/volumes", volumes.List)
	g.GET("/volumes/:id", volumes.Get)

	g.GET("/issues", issues.List)
	g.GET("/issues/:id", issues.Get)

	g.GET("/articles", articles.List)
	g.GET("/articles/:id", articles.Get)
	g.POST("/articles/:id/view", articles.RecordView)
	g.POST("/articles/:id/download", articles.RecordDownload)

	g.GET("/inpress", inPress.List)
	g.GET("/inpress/:id", inPress.Get)

	g.GET("/editors", editors.List)
	g.GET("/editors/:id", editors.Get)

	g.POST("/submissions", submissions.Create)
}

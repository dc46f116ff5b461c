package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yourname/timesheet/internal/auth"
	"github.com/yourname/timesheet/internal/timeutil"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// "hhmm" accepts 24-hour clock strings like "09:30".
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return timeutil.IsClock(fl.Field().String())
		})
	}
}

// NewRouter assembles the gin engine. Everything under /api sits behind
// bearer authentication.
func NewRouter(app App, provider auth.Provider) *gin.Engine {
	if app.Config().Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	g := r.Group("/api")
	g.Use(auth.Middleware(provider))

	g.POST("/entries", PostEntry(app))
	g.PUT("/entries", PutEntry(app))
	g.DELETE("/entries", DeleteEntry(app))
	g.POST("/entries/start", StartEntry(app))
	g.POST("/entries/finish", FinishEntry(app))

	g.POST("/lifelogs", PostLifelog(app))
	g.PUT("/lifelogs", PutLifelog(app))
	g.DELETE("/lifelogs", DeleteLifelog(app))
	g.POST("/lifelogs/start", StartLifelog(app))
	g.POST("/lifelogs/finish", FinishLifelog(app))

	g.GET("/report/:yyyymm", GetMonthlyReport(app))
	g.GET("/report/:yyyymm/daily/:yyyymmdd", GetDailyReport(app))
	g.POST("/report/:yyyymm/export", ExportMonthlyReport(app))
	g.GET("/admin/report/:yyyymm", GetAdminMonthlyReport(app))

	g.POST("/views", PostView(app))
	g.DELETE("/views/:id", DeleteView(app))

	g.GET("/settings", GetSettings(app))
	g.PUT("/settings", PutSettings(app))

	g.GET("/projects", GetProjects(app))
	g.POST("/projects", PostProject(app))
	g.PUT("/projects/:code", PutProject(app))

	g.PUT("/admin/policies", PutPolicy(app))
	g.POST("/admin/users", PostAdminUser(app))

	return r
}

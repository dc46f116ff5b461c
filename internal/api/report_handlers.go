package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/service"
)

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func GetMonthlyReport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		yyyymm := c.Param("yyyymm")
		if !digits(yyyymm, 6) {
			HandleBadRequest(c, app.Logger(), errors.New("want YYYYMM"), "Invalid month")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		includeLifelogs := c.Query("lifelogs") == "true"
		report, err := service.MonthlyReportForUser(c.Request.Context(), app.Repos(), scope, yyyymm, includeLifelogs)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to build monthly report")
			return
		}
		HandleSuccess(c, app.Logger(), report, nil)
	}
}

func GetDailyReport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		yyyymmdd := c.Param("yyyymmdd")
		if !digits(yyyymmdd, 8) {
			HandleBadRequest(c, app.Logger(), errors.New("want YYYYMMDD"), "Invalid date")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		report, warnings, err := service.DailyReportForUser(c.Request.Context(), app.Repos(), scope, yyyymmdd)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to build daily report")
			return
		}
		var meta map[string]any
		if len(warnings) > 0 {
			meta = map[string]any{"warnings": warnings}
		}
		HandleSuccess(c, app.Logger(), report, meta)
	}
}

func GetAdminMonthlyReport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		yyyymm := c.Param("yyyymm")
		if !digits(yyyymm, 6) {
			HandleBadRequest(c, app.Logger(), errors.New("want YYYYMM"), "Invalid month")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		admin, err := service.CanAccessAdminFeature(c.Request.Context(), app.Repos().AdminUsers, scope.User.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to check admin access")
			return
		}
		if !admin {
			HandleError(c, app.Logger(), internal.NewAppError(http.StatusForbidden, "Admin access required"), "Admin access required")
			return
		}
		report, err := service.AllMembersMonthlyReport(c.Request.Context(), app.Repos(), scope, yyyymm)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to build admin report")
			return
		}
		HandleSuccess(c, app.Logger(), report, nil)
	}
}

// ExportMonthlyReport renders the caller's monthly report (or the admin
// all-members report with ?all=true) and pushes it through the export sink.
func ExportMonthlyReport(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		yyyymm := c.Param("yyyymm")
		if !digits(yyyymm, 6) {
			HandleBadRequest(c, app.Logger(), errors.New("want YYYYMM"), "Invalid month")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		ctx := c.Request.Context()

		var filename string
		var report any
		if c.Query("all") == "true" {
			admin, err := service.CanAccessAdminFeature(ctx, app.Repos().AdminUsers, scope.User.ID)
			if err != nil {
				HandleError(c, app.Logger(), err, "Failed to check admin access")
				return
			}
			if !admin {
				HandleError(c, app.Logger(), internal.NewAppError(http.StatusForbidden, "Admin access required"), "Admin access required")
				return
			}
			filename = "all-members-" + yyyymm + ".json"
			report, err = service.AllMembersMonthlyReport(ctx, app.Repos(), scope, yyyymm)
			if err != nil {
				HandleError(c, app.Logger(), err, "Failed to build admin report")
				return
			}
		} else {
			filename = scope.User.ID + "-" + yyyymm + ".json"
			report, err = service.MonthlyReportForUser(ctx, app.Repos(), scope, yyyymm, c.Query("lifelogs") == "true")
			if err != nil {
				HandleError(c, app.Logger(), err, "Failed to build monthly report")
				return
			}
		}

		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to render report")
			return
		}
		url, err := app.ExportSink().Upload(ctx, filename, payload)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to upload report")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"url": url, "filename": filename})
	}
}

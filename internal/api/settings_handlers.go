package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/service"
)

type SettingsRequest struct {
	Language  string `json:"language" binding:"required,oneof=en ja"`
	CountryID string `json:"country_id" binding:"omitempty,oneof=jp us"`
	AppMode   string `json:"app_mode" binding:"omitempty,oneof=work work_and_lifelogs"`
}

func GetSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		HandleSuccess(c, app.Logger(), scope.Settings, nil)
	}
}

func PutSettings(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid settings request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		settings := &internal.UserSettings{
			User:      scope.User.ID,
			Language:  req.Language,
			CountryID: req.CountryID,
			AppMode:   req.AppMode,
			Offset:    scope.User.Offset,
		}
		if settings.AppMode == "" {
			settings.AppMode = internal.AppModeWork
		}
		if err := service.SaveSettings(c.Request.Context(), app.Repos().UserSettings, scope.User, settings); err != nil {
			HandleError(c, app.Logger(), err, "Failed to save settings")
			return
		}
		HandleSuccess(c, app.Logger(), settings, nil)
	}
}

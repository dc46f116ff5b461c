package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/auth"
)

type ViewRequest struct {
	ViewID     string `json:"view_id" binding:"required"`
	CallbackID string `json:"callback_id"`
}

// PostView registers an open report view so the background refresher keeps
// it current until it is closed or goes stale.
func PostView(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ViewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid view request")
			return
		}
		user := auth.UserFrom(c)
		view := &internal.ActiveView{
			ViewID:        req.ViewID,
			UserID:        user.ID,
			CallbackID:    req.CallbackID,
			LastUpdatedAt: time.Now().UnixMilli(),
		}
		if err := app.Repos().ActiveViews.SaveActiveView(c.Request.Context(), view); err != nil {
			HandleError(c, app.Logger(), err, "Failed to register view")
			return
		}
		HandleSuccess(c, app.Logger(), view, nil)
	}
}

func DeleteView(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Repos().ActiveViews.DeleteActiveView(c.Request.Context(), c.Param("id")); err != nil {
			HandleError(c, app.Logger(), err, "Failed to close view")
			return
		}
		HandleSuccess(c, app.Logger(), nil, nil)
	}
}

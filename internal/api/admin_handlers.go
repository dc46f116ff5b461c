package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/service"
)

type PolicyRequest struct {
	Key   string `json:"key" binding:"required,oneof=is_manual_entry_permitted country"`
	Value string `json:"value" binding:"required"`
}

type AdminUserRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// requireAdmin gates the organization-level endpoints.
func requireAdmin(c *gin.Context, app App, scope *service.RequestScope) error {
	admin, err := service.CanAccessAdminFeature(c.Request.Context(), app.Repos().AdminUsers, scope.User.ID)
	if err != nil {
		return err
	}
	if !admin {
		return internal.NewAppError(http.StatusForbidden, "Admin access required")
	}
	return nil
}

func PutPolicy(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PolicyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid policy request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		if err := requireAdmin(c, app, scope); err != nil {
			HandleError(c, app.Logger(), err, "Admin access required")
			return
		}
		if err := app.Repos().Policies.PutPolicy(c.Request.Context(), req.Key, req.Value); err != nil {
			HandleError(c, app.Logger(), err, "Failed to save policy")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"key": req.Key, "value": req.Value}, nil)
	}
}

func PostAdminUser(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AdminUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid admin user request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		if err := requireAdmin(c, app, scope); err != nil {
			HandleError(c, app.Logger(), err, "Admin access required")
			return
		}
		if err := app.Repos().AdminUsers.PutAdminUser(c.Request.Context(), req.UserID); err != nil {
			HandleError(c, app.Logger(), err, "Failed to save admin user")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"user_id": req.UserID}, nil)
	}
}

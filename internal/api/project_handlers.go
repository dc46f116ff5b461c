package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/service"
)

type ProjectRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func GetProjects(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := app.Repos().Projects.ListProjects(c.Request.Context())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to list projects")
			return
		}
		if c.Query("active") == "true" {
			active := projects[:0]
			for _, p := range projects {
				if p.IsActive {
					active = append(active, p)
				}
			}
			projects = active
		}
		HandleSuccess(c, app.Logger(), projects, nil)
	}
}

func saveProject(app App, isNew bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid project request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		if !isNew && c.Param("code") != req.Code {
			HandleBadRequest(c, app.Logger(), internal.NewAppError(400, "code mismatch"), "Invalid project request")
			return
		}
		ctx := c.Request.Context()
		fields, err := service.ValidateProject(ctx, app.Repos().Projects, req.Code, req.Name, req.Description, isNew, scope.Language)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to validate project")
			return
		}
		if len(fields) > 0 {
			HandleError(c, app.Logger(), internal.NewValidationError(fields), "Project validation failed")
			return
		}
		project := &internal.Project{
			Code:        req.Code,
			Name:        req.Name,
			Description: req.Description,
			IsActive:    req.IsActive == nil || *req.IsActive,
		}
		if err := app.Repos().Projects.PutProject(ctx, project); err != nil {
			HandleError(c, app.Logger(), err, "Failed to save project")
			return
		}
		HandleSuccess(c, app.Logger(), project, nil)
	}
}

func PostProject(app App) gin.HandlerFunc { return saveProject(app, true) }

func PutProject(app App) gin.HandlerFunc { return saveProject(app, false) }

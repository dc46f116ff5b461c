package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/auth"
	"github.com/yourname/timesheet/internal/response"
	"github.com/yourname/timesheet/internal/service"
)

// HandleError renders any service or storage error through the response
// envelope. AppError values keep their own status code and validation
// fields; everything else falls through the err sentinel mapping.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")

	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(appErr.Code, response.FromAppError(appErr))
		return
	}
	if errors.Is(err, internal.ErrNotFound) {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		c.JSON(http.StatusNotFound, response.NotFound(msg))
		return
	}
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	c.JSON(http.StatusInternalServerError, response.InternalError(msg))
}

func HandleBadRequest(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")
	logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	c.JSON(http.StatusBadRequest, response.BadRequest(msg+": "+err.Error()))
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

// scopeFor builds the per-request scope from the authenticated user.
func scopeFor(c *gin.Context, app App) (*service.RequestScope, error) {
	user := auth.UserFrom(c)
	if user == nil {
		return nil, internal.NewAppError(http.StatusUnauthorized, "Unauthorized")
	}
	cfg := app.Config()
	return service.NewRequestScope(c.Request.Context(), app.Repos(), user, cfg.DefaultLanguage, cfg.DefaultCountry)
}

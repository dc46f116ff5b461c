package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/service"
)

type LifelogRequest struct {
	Date  string          `json:"date" binding:"omitempty,len=8,numeric"`
	Entry IntervalPayload `json:"entry" binding:"required"`
}

type EditLifelogRequest struct {
	Date     string          `json:"date" binding:"required,len=8,numeric"`
	Original IntervalPayload `json:"original" binding:"required"`
	Entry    IntervalPayload `json:"entry" binding:"required"`
}

type StartLifelogRequest struct {
	WhatToDo string `json:"what_to_do" binding:"required,max=50"`
}

func PostLifelog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LifelogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid lifelog request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		rec, err := service.AddLifelog(c.Request.Context(), app.Repos().Lifelogs, scope, req.Date, req.Entry.interval())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to add lifelog")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

func PutLifelog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EditLifelogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid lifelog edit request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		rec, err := service.EditLifelog(c.Request.Context(), app.Repos().Lifelogs, scope, req.Date, req.Original.interval(), req.Entry.interval())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to edit lifelog")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

func DeleteLifelog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LifelogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid lifelog delete request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		rec, err := service.DeleteLifelog(c.Request.Context(), app.Repos().Lifelogs, scope, req.Date, req.Entry.interval())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete lifelog")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

func StartLifelog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartLifelogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid lifelog start request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		rec, err := service.StartLifelog(c.Request.Context(), app.Repos().Lifelogs, scope, req.WhatToDo)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to start lifelog")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

func FinishLifelog(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		var rec *internal.LifelogRecord
		rec, err = service.FinishLifelog(c.Request.Context(), app.Repos().Lifelogs, scope)
		if err != nil {
			HandleError(c, app.Logger(), err, "No open lifelog to finish")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

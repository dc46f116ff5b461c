package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/service"
)

// IntervalPayload is the wire shape of one time entry.
type IntervalPayload struct {
	Start       string `json:"start" binding:"required,hhmm"`
	End         string `json:"end" binding:"omitempty,hhmm"`
	ProjectCode string `json:"project_code"`
	WhatToDo    string `json:"what_to_do"`
}

func (p IntervalPayload) interval() internal.Interval {
	return internal.Interval{
		Start:       p.Start,
		End:         p.End,
		ProjectCode: p.ProjectCode,
		WhatToDo:    p.WhatToDo,
	}
}

type EntryRequest struct {
	Kind  string          `json:"kind" binding:"required,oneof=work break_time time_off"`
	Date  string          `json:"date" binding:"omitempty,len=8,numeric"`
	Entry IntervalPayload `json:"entry" binding:"required"`
}

type EditEntryRequest struct {
	FromKind string          `json:"from_kind" binding:"required,oneof=work break_time time_off"`
	Kind     string          `json:"kind" binding:"required,oneof=work break_time time_off"`
	Date     string          `json:"date" binding:"required,len=8,numeric"`
	Original IntervalPayload `json:"original" binding:"required"`
	Entry    IntervalPayload `json:"entry" binding:"required"`
}

type DeleteEntryRequest struct {
	Kind  string          `json:"kind" binding:"required,oneof=work break_time time_off"`
	Date  string          `json:"date" binding:"required,len=8,numeric"`
	Entry IntervalPayload `json:"entry" binding:"required"`
}

type StartEntryRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=work break_time time_off"`
	ProjectCode string `json:"project_code"`
}

type FinishEntryRequest struct {
	Kind string `json:"kind" binding:"required,oneof=work break_time time_off"`
}

// ensureManualEntryPermitted enforces the organization policy that can
// restrict hand-written entries to admins; start/finish stay open to all.
func ensureManualEntryPermitted(c *gin.Context, app App, scope *service.RequestScope) error {
	permitted, err := service.IsManualEntryPermitted(c.Request.Context(), app.Repos().Policies)
	if err != nil {
		return err
	}
	if permitted {
		return nil
	}
	admin, err := service.CanAccessAdminFeature(c.Request.Context(), app.Repos().AdminUsers, scope.User.ID)
	if err != nil {
		return err
	}
	if !admin {
		return internal.NewAppError(http.StatusForbidden, "Manual entry is restricted")
	}
	return nil
}

func PostEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid entry request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		if err := ensureManualEntryPermitted(c, app, scope); err != nil {
			HandleError(c, app.Logger(), err, "Manual entry not permitted")
			return
		}
		rec, err := service.AddEntry(c.Request.Context(), app.Repos().TimeEntries, scope, internal.EntryKind(req.Kind), req.Date, req.Entry.interval())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to add entry")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

func PutEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EditEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid edit request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		if err := ensureManualEntryPermitted(c, app, scope); err != nil {
			HandleError(c, app.Logger(), err, "Manual entry not permitted")
			return
		}
		rec, err := service.EditEntry(c.Request.Context(), app.Repos().TimeEntries, scope, req.Date,
			internal.EntryKind(req.FromKind), req.Original.interval(),
			internal.EntryKind(req.Kind), req.Entry.interval())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to edit entry")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

func DeleteEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req DeleteEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid delete request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		if err := ensureManualEntryPermitted(c, app, scope); err != nil {
			HandleError(c, app.Logger(), err, "Manual entry not permitted")
			return
		}
		rec, err := service.DeleteEntry(c.Request.Context(), app.Repos().TimeEntries, scope, req.Date, internal.EntryKind(req.Kind), req.Entry.interval())
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to delete entry")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

func StartEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid start request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		ctx := c.Request.Context()
		repo := app.Repos().TimeEntries
		var rec *internal.DayRecord
		switch internal.EntryKind(req.Kind) {
		case internal.KindWork:
			rec, err = service.StartWork(ctx, repo, scope, req.ProjectCode)
		case internal.KindBreakTime:
			rec, err = service.StartBreakTime(ctx, repo, scope)
		case internal.KindTimeOff:
			rec, err = service.StartTimeOff(ctx, repo, scope)
		}
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to start entry")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

func FinishEntry(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req FinishEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid finish request")
			return
		}
		scope, err := scopeFor(c, app)
		if err != nil {
			HandleError(c, app.Logger(), err, "Failed to resolve request scope")
			return
		}
		ctx := c.Request.Context()
		repo := app.Repos().TimeEntries
		var rec *internal.DayRecord
		switch internal.EntryKind(req.Kind) {
		case internal.KindWork:
			rec, err = service.FinishWork(ctx, repo, scope)
		case internal.KindBreakTime:
			rec, err = service.FinishBreakTime(ctx, repo, scope)
		case internal.KindTimeOff:
			rec, err = service.FinishTimeOff(ctx, repo, scope)
		}
		if err != nil {
			HandleError(c, app.Logger(), err, "No open entry to finish")
			return
		}
		HandleSuccess(c, app.Logger(), rec, nil)
	}
}

package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/storage"
)

func newTestScope(t *testing.T, repos *storage.Repositories) *RequestScope {
	t.Helper()
	return &RequestScope{
		User:        &internal.User{ID: "u1", Email: "u1@example.com"},
		Settings:    &internal.UserSettings{User: "u1", Language: "en", AppMode: internal.AppModeWorkAndLifelogs},
		Language:    "en",
		Offset:      0,
		holidayRepo: repos.Holidays,
		holidays:    map[string][]string{},
	}
}

func newTestRepos(t *testing.T) *storage.Repositories {
	t.Helper()
	repos, err := storage.NewFileRepositories(filepath.Join(t.TempDir(), "data.json"), &internal.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return repos
}

func TestAddEntry(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	rec, err := AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250110", internal.Interval{Start: "09:00", End: "12:00"})
	require.NoError(t, err)
	require.Len(t, rec.WorkEntries, 1)
	assert.Equal(t, "u1-20250110", rec.UserAndDate)

	// Conflicting submission is rejected with field errors
	_, err = AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250110", internal.Interval{Start: "10:00", End: "13:00"})
	require.Error(t, err)
	var appErr *internal.AppError
	require.ErrorAs(t, err, &appErr)
	assert.NotEmpty(t, appErr.Fields[FieldStart])

	// A break over the same span is fine
	rec, err = AddEntry(ctx, repos.TimeEntries, scope, internal.KindBreakTime, "20250110", internal.Interval{Start: "10:00", End: "11:00"})
	require.NoError(t, err)
	assert.Len(t, rec.BreakTimeEntries, 1)
}

func TestAddEntryDefaultsToToday(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	rec, err := AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "", internal.Interval{Start: "09:00", End: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, "u1-20250115", rec.UserAndDate)
}

func TestEditEntry(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	_, err := AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250110", internal.Interval{Start: "09:00", End: "12:00"})
	require.NoError(t, err)

	// Reschedule in place; overlap with itself must not count as a conflict
	rec, err := EditEntry(ctx, repos.TimeEntries, scope, "20250110",
		internal.KindWork, internal.Interval{Start: "09:00", End: "12:00"},
		internal.KindWork, internal.Interval{Start: "09:30", End: "12:30"})
	require.NoError(t, err)
	require.Len(t, rec.WorkEntries, 1)
	got := internal.DeserializeEntry(rec.WorkEntries[0])
	require.NotNil(t, got)
	assert.Equal(t, "09:30", got.Start)

	// Unknown original
	_, err = EditEntry(ctx, repos.TimeEntries, scope, "20250110",
		internal.KindWork, internal.Interval{Start: "07:00", End: "08:00"},
		internal.KindWork, internal.Interval{Start: "07:30", End: "08:30"})
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestEditEntryMovesBetweenKinds(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	_, err := AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250110", internal.Interval{Start: "12:00", End: "13:00"})
	require.NoError(t, err)

	rec, err := EditEntry(ctx, repos.TimeEntries, scope, "20250110",
		internal.KindWork, internal.Interval{Start: "12:00", End: "13:00"},
		internal.KindBreakTime, internal.Interval{Start: "12:00", End: "13:00"})
	require.NoError(t, err)
	assert.Empty(t, rec.WorkEntries)
	assert.Len(t, rec.BreakTimeEntries, 1)
}

func TestDeleteEntry(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	_, err := AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250110", internal.Interval{Start: "09:00", End: "12:00"})
	require.NoError(t, err)

	rec, err := DeleteEntry(ctx, repos.TimeEntries, scope, "20250110", internal.KindWork, internal.Interval{Start: "09:00", End: "12:00"})
	require.NoError(t, err)
	assert.Empty(t, rec.WorkEntries)

	_, err = DeleteEntry(ctx, repos.TimeEntries, scope, "20250110", internal.KindWork, internal.Interval{Start: "09:00", End: "12:00"})
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestStartAndFinishWork(t *testing.T) {
	fixNow(t) // 12:00 on 2025-01-15
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	rec, err := StartWork(ctx, repos.TimeEntries, scope, "alpha")
	require.NoError(t, err)
	require.Len(t, rec.WorkEntries, 1)
	open := internal.DeserializeEntry(rec.WorkEntries[0])
	require.NotNil(t, open)
	assert.Equal(t, "12:00", open.Start)
	assert.Equal(t, "", open.End)
	assert.Equal(t, "alpha", open.ProjectCode)

	rec, err = FinishWork(ctx, repos.TimeEntries, scope)
	require.NoError(t, err)
	closed := internal.DeserializeEntry(rec.WorkEntries[0])
	require.NotNil(t, closed)
	assert.Equal(t, "12:00", closed.End)

	// Nothing left open
	_, err = FinishWork(ctx, repos.TimeEntries, scope)
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestStartAndFinishBreakTime(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	_, err := StartBreakTime(ctx, repos.TimeEntries, scope)
	require.NoError(t, err)
	rec, err := FinishBreakTime(ctx, repos.TimeEntries, scope)
	require.NoError(t, err)
	require.Len(t, rec.BreakTimeEntries, 1)
}

func TestLifelogLifecycle(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	rec, err := StartLifelog(ctx, repos.Lifelogs, scope, "reading")
	require.NoError(t, err)
	require.Len(t, rec.Logs, 1)

	rec, err = FinishLifelog(ctx, repos.Lifelogs, scope)
	require.NoError(t, err)
	closed := internal.DeserializeEntry(rec.Logs[0])
	require.NotNil(t, closed)
	assert.Equal(t, "12:00", closed.End)
	assert.Equal(t, "reading", closed.WhatToDo)

	rec, err = EditLifelog(ctx, repos.Lifelogs, scope, scope.Today(),
		*closed, internal.Interval{Start: "11:00", End: "12:00", WhatToDo: "writing"})
	require.NoError(t, err)
	updated := internal.DeserializeEntry(rec.Logs[0])
	assert.Equal(t, "writing", updated.WhatToDo)

	rec, err = DeleteLifelog(ctx, repos.Lifelogs, scope, scope.Today(), *updated)
	require.NoError(t, err)
	assert.Empty(t, rec.Logs)
}

func TestMonthlyReportForUser(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	_, err := AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250106", internal.Interval{Start: "09:00", End: "17:00"})
	require.NoError(t, err)
	_, err = AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250107", internal.Interval{Start: "09:00", End: "12:00"})
	require.NoError(t, err)
	// A different month must not leak in
	_, err = AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250206", internal.Interval{Start: "09:00", End: "17:00"})
	require.NoError(t, err)

	report, err := MonthlyReportForUser(ctx, repos, scope, "202501", false)
	require.NoError(t, err)
	assert.Equal(t, "2025/01", report.Month)
	assert.Equal(t, 2, report.NumOfWorkingDays)
	assert.Equal(t, 480+180, report.WorkMinutes)
}

func TestDailyReportForUser(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)
	scope.Country = internal.CountryJapan

	_, err := AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250110", internal.Interval{Start: "09:00", End: "16:30"})
	require.NoError(t, err)

	report, warnings, err := DailyReportForUser(ctx, repos, scope, "20250110")
	require.NoError(t, err)
	assert.Equal(t, 450, report.WorkMinutes)
	require.Len(t, warnings, 1)

	_, _, err = DailyReportForUser(ctx, repos, scope, "20250111")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestAllMembersMonthlyReport(t *testing.T) {
	fixNow(t)
	ctx := context.Background()
	repos := newTestRepos(t)
	scope := newTestScope(t, repos)

	require.NoError(t, repos.TimeEntries.PutDayRecord(ctx, &internal.DayRecord{
		UserAndDate: "u1-20250106", WorkEntries: []string{entryJSON("09:00", "17:00")},
	}))
	require.NoError(t, repos.TimeEntries.PutDayRecord(ctx, &internal.DayRecord{
		UserAndDate: "u2-20250107", WorkEntries: []string{entryJSON("10:00", "12:00")},
	}))

	report, err := AllMembersMonthlyReport(ctx, repos, scope, "202501")
	require.NoError(t, err)
	assert.Equal(t, "2025/01", report.Month)
	require.Len(t, report.Reports, 2)
	assert.Equal(t, "u1", report.Reports[0].UserID)
	assert.Equal(t, "u2", report.Reports[1].UserID)
	assert.Equal(t, 480, report.Reports[0].WorkMinutes)
	assert.Equal(t, 120, report.Reports[1].WorkMinutes)
}

func TestCanAccessAdminFeature(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	// Empty admin list means everyone is an admin
	ok, err := CanAccessAdminFeature(ctx, repos.AdminUsers, "anyone")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repos.AdminUsers.PutAdminUser(ctx, "u1"))

	ok, err = CanAccessAdminFeature(ctx, repos.AdminUsers, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CanAccessAdminFeature(ctx, repos.AdminUsers, "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetSettingsDefaults(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	user := &internal.User{ID: "u9", Locale: "ja-JP", Offset: 32400}

	settings, err := GetSettings(ctx, repos, user, "en", "")
	require.NoError(t, err)
	assert.Equal(t, "ja", settings.Language)
	assert.Equal(t, internal.CountryJapan, settings.CountryID)
	assert.Equal(t, 32400, settings.Offset)
	assert.Equal(t, internal.AppModeWork, settings.AppMode)

	// Stored settings win, offset still refreshed from the identity provider
	require.NoError(t, SaveSettings(ctx, repos.UserSettings, user, &internal.UserSettings{Language: "en", CountryID: internal.CountryUnitedStates}))
	user.Offset = -18000
	settings, err = GetSettings(ctx, repos, user, "en", "")
	require.NoError(t, err)
	assert.Equal(t, "en", settings.Language)
	assert.Equal(t, internal.CountryUnitedStates, settings.CountryID)
	assert.Equal(t, -18000, settings.Offset)
}

func TestIsManualEntryPermitted(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)

	ok, err := IsManualEntryPermitted(ctx, repos.Policies)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repos.Policies.PutPolicy(ctx, internal.PolicyKeyManualEntryPermitted, internal.PolicyValueRestricted))
	ok, err = IsManualEntryPermitted(ctx, repos.Policies)
	require.NoError(t, err)
	assert.False(t, ok)
}

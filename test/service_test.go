package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/service"
	"github.com/yourname/timesheet/internal/storage"
)

// End-to-end month of a Japanese user through the service layer, without
// the HTTP surface: manual entries, a tracked live entry, holidays, and
// the monthly roll-up.
func TestMonthOfTracking(t *testing.T) {
	pinClock(t)
	ctx := context.Background()

	repos, err := storage.NewFileRepositories(filepath.Join(t.TempDir(), "data.json"), internal.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	require.NoError(t, repos.Holidays.PutHolidaySet(ctx, &internal.HolidaySet{
		CountryIDAndYear: "jp-2025",
		Holidays:         []string{"20250101", "20250113"},
	}))

	user := &internal.User{ID: "u1", Email: "u1@example.com", Locale: "ja-JP", Offset: 32400}
	scope, err := service.NewRequestScope(ctx, repos, user, "en", "")
	require.NoError(t, err)
	assert.Equal(t, "ja", scope.Language)
	assert.Equal(t, "jp", scope.Country)

	days := []struct {
		date       string
		start, end string
	}{
		{"20250106", "09:00", "18:00"},
		{"20250107", "09:00", "18:00"},
		{"20250108", "10:00", "19:00"},
	}
	for _, d := range days {
		_, err := service.AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, d.date,
			internal.Interval{Start: d.start, End: d.end, ProjectCode: "core"})
		require.NoError(t, err)
		_, err = service.AddEntry(ctx, repos.TimeEntries, scope, internal.KindBreakTime, d.date,
			internal.Interval{Start: "12:00", End: "13:00"})
		require.NoError(t, err)
	}

	// Day without enough break: the daily report carries an advisory.
	_, err = service.AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250109",
		internal.Interval{Start: "08:00", End: "17:30"})
	require.NoError(t, err)
	_, err = service.AddEntry(ctx, repos.TimeEntries, scope, internal.KindBreakTime, "20250109",
		internal.Interval{Start: "12:00", End: "12:30"})
	require.NoError(t, err)

	report, warnings, err := service.DailyReportForUser(ctx, repos, scope, "20250109")
	require.NoError(t, err)
	assert.Equal(t, 540, report.WorkMinutes)
	require.Len(t, warnings, 1)

	daily, warnings, err := service.DailyReportForUser(ctx, repos, scope, "20250106")
	require.NoError(t, err)
	assert.Equal(t, 480, daily.WorkMinutes)
	assert.Empty(t, warnings)
	require.Len(t, daily.Projects, 1)
	assert.Equal(t, "core", daily.Projects[0].ProjectCode)

	monthly, err := service.MonthlyReportForUser(ctx, repos, scope, "202501", false)
	require.NoError(t, err)
	assert.Equal(t, "2025/01", monthly.Month)
	assert.Equal(t, "u1@example.com", monthly.UserEmail)
	assert.Equal(t, 2, monthly.Holidays)
	assert.Equal(t, 4, monthly.NumOfWorkingDays)
	assert.Equal(t, 480*3+540, monthly.WorkMinutes)
	assert.Equal(t, 60*3+30, monthly.BreakTimeMinutes)
	require.NotNil(t, monthly.OvertimeWorkMinutes)
	assert.Equal(t, 60, *monthly.OvertimeWorkMinutes)
	require.Len(t, monthly.Projects, 1)
	assert.Equal(t, 480*3, monthly.Projects[0].WorkMinutes)
	require.Len(t, monthly.DailyReports, 4)
}

func TestEditMovesEntryAcrossKinds(t *testing.T) {
	pinClock(t)
	ctx := context.Background()

	repos, err := storage.NewFileRepositories(filepath.Join(t.TempDir(), "data.json"), internal.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	user := &internal.User{ID: "u1", Locale: "en-US"}
	scope, err := service.NewRequestScope(ctx, repos, user, "en", "")
	require.NoError(t, err)

	_, err = service.AddEntry(ctx, repos.TimeEntries, scope, internal.KindWork, "20250110",
		internal.Interval{Start: "09:00", End: "10:00"})
	require.NoError(t, err)

	rec, err := service.EditEntry(ctx, repos.TimeEntries, scope, "20250110",
		internal.KindWork, internal.Interval{Start: "09:00", End: "10:00"},
		internal.KindBreakTime, internal.Interval{Start: "09:00", End: "10:00"})
	require.NoError(t, err)
	assert.Empty(t, rec.WorkEntries)
	require.Len(t, rec.BreakTimeEntries, 1)
}

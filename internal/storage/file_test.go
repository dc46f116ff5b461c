package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/timesheet/internal"
)

func newTestFileStorage(t *testing.T) (*FileStorage, string) {
	t.Helper()
	dataFile := filepath.Join(t.TempDir(), "timesheet.json")
	s, err := NewFileStorage(dataFile, &internal.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, dataFile
}

func TestFileStorageDayRecords(t *testing.T) {
	s, _ := newTestFileStorage(t)
	ctx := context.Background()

	rec, err := s.GetDayRecord(ctx, "u1-20250115")
	require.NoError(t, err)
	assert.Nil(t, rec)

	put := &internal.DayRecord{
		UserAndDate: "u1-20250115",
		WorkEntries: []string{`{"start":"09:00","end":"18:00"}`},
	}
	require.NoError(t, s.PutDayRecord(ctx, put))

	rec, err = s.GetDayRecord(ctx, "u1-20250115")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, put.WorkEntries, rec.WorkEntries)

	// Returned record is a copy, mutations must not leak into the store
	rec.WorkEntries[0] = "garbage"
	again, err := s.GetDayRecord(ctx, "u1-20250115")
	require.NoError(t, err)
	assert.Equal(t, `{"start":"09:00","end":"18:00"}`, again.WorkEntries[0])

	require.NoError(t, s.DeleteDayRecord(ctx, "u1-20250115"))
	rec, err = s.GetDayRecord(ctx, "u1-20250115")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestFileStorageQueries(t *testing.T) {
	s, _ := newTestFileStorage(t)
	ctx := context.Background()

	for _, key := range []string{"u1-20250101", "u1-20250102", "u1-20250201", "u2-20250102"} {
		require.NoError(t, s.PutDayRecord(ctx, &internal.DayRecord{UserAndDate: key, WorkEntries: []string{`{"start":"09:00","end":"10:00"}`}}))
	}

	byPrefix, err := s.QueryDayRecordsByPrefix(ctx, "u1-202501")
	require.NoError(t, err)
	require.Len(t, byPrefix, 2)
	assert.Equal(t, "u1-20250101", byPrefix[0].UserAndDate)
	assert.Equal(t, "u1-20250102", byPrefix[1].UserAndDate)

	byContains, err := s.QueryDayRecordsByContains(ctx, "-202501")
	require.NoError(t, err)
	assert.Len(t, byContains, 3)
}

func TestFileStorageLifelogs(t *testing.T) {
	s, _ := newTestFileStorage(t)
	ctx := context.Background()

	rec, err := s.GetLifelogRecord(ctx, "u1-20250115")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, s.PutLifelogRecord(ctx, &internal.LifelogRecord{
		UserAndDate: "u1-20250115",
		Logs:        []string{`{"start":"20:00","end":"21:00","what_to_do":"reading"}`},
	}))

	recs, err := s.QueryLifelogRecordsByPrefix(ctx, "u1-202501")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "u1-20250115", recs[0].UserAndDate)
}

func TestFileStorageAdminUsers(t *testing.T) {
	s, _ := newTestFileStorage(t)
	ctx := context.Background()

	any, err := s.AnyAdminUsers(ctx)
	require.NoError(t, err)
	assert.False(t, any)

	require.NoError(t, s.PutAdminUser(ctx, "u1"))

	any, err = s.AnyAdminUsers(ctx)
	require.NoError(t, err)
	assert.True(t, any)

	ok, err := s.IsAdminUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsAdminUser(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoragePolicies(t *testing.T) {
	s, _ := newTestFileStorage(t)
	ctx := context.Background()

	value, err := s.GetPolicy(ctx, internal.PolicyKeyManualEntryPermitted)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, s.PutPolicy(ctx, internal.PolicyKeyManualEntryPermitted, internal.PolicyValueRestricted))

	value, err = s.GetPolicy(ctx, internal.PolicyKeyManualEntryPermitted)
	require.NoError(t, err)
	assert.Equal(t, internal.PolicyValueRestricted, value)
}

func TestFileStoragePersistsAcrossReopen(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "timesheet.json")
	ctx := context.Background()

	s, err := NewFileStorage(dataFile, &internal.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, s.PutDayRecord(ctx, &internal.DayRecord{UserAndDate: "u1-20250115", WorkEntries: []string{`{"start":"09:00","end":"18:00"}`}}))
	require.NoError(t, s.PutUserSettings(ctx, &internal.UserSettings{User: "u1", Language: "ja", CountryID: internal.CountryJapan}))
	require.NoError(t, s.PutHolidaySet(ctx, &internal.HolidaySet{CountryIDAndYear: "jp-2025", Holidays: []string{"20250101"}}))
	require.NoError(t, s.Close())

	reopened, err := NewFileStorage(dataFile, &internal.NopLogger{})
	require.NoError(t, err)
	defer reopened.Close()

	rec, err := reopened.GetDayRecord(ctx, "u1-20250115")
	require.NoError(t, err)
	require.NotNil(t, rec)

	settings, err := reopened.GetUserSettings(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, settings)
	assert.Equal(t, "ja", settings.Language)

	set, err := reopened.GetHolidaySet(ctx, internal.CountryJapan, "2025")
	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, []string{"20250101"}, set.Holidays)
}

func TestFileStorageActiveViews(t *testing.T) {
	s, _ := newTestFileStorage(t)
	ctx := context.Background()

	require.NoError(t, s.SaveActiveView(ctx, &internal.ActiveView{ViewID: "v2", UserID: "u1", CallbackID: "main", LastUpdatedAt: 200}))
	require.NoError(t, s.SaveActiveView(ctx, &internal.ActiveView{ViewID: "v1", UserID: "u2", CallbackID: "main", LastUpdatedAt: 100}))

	views, err := s.ListActiveViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "v1", views[0].ViewID)
	assert.Equal(t, "v2", views[1].ViewID)

	require.NoError(t, s.DeleteActiveView(ctx, "v1"))
	views, err = s.ListActiveViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 1)
}

package storage

import (
	"context"

	"github.com/yourname/timesheet/internal"
)

// TimeEntryRepository stores one DayRecord per "{user_id}-{YYYYMMDD}" key.
// Get returns (nil, nil) when no record exists for the key.
type TimeEntryRepository interface {
	GetDayRecord(ctx context.Context, userAndDate string) (*internal.DayRecord, error)
	PutDayRecord(ctx context.Context, rec *internal.DayRecord) error
	QueryDayRecordsByPrefix(ctx context.Context, prefix string) ([]internal.DayRecord, error)
	QueryDayRecordsByContains(ctx context.Context, substr string) ([]internal.DayRecord, error)
	DeleteDayRecord(ctx context.Context, userAndDate string) error
}

// LifelogRepository stores one LifelogRecord per "{user_id}-{YYYYMMDD}" key,
// independently from the time-entry record under the same key. Get returns
// (nil, nil) when no record exists.
type LifelogRepository interface {
	GetLifelogRecord(ctx context.Context, userAndDate string) (*internal.LifelogRecord, error)
	PutLifelogRecord(ctx context.Context, rec *internal.LifelogRecord) error
	QueryLifelogRecordsByPrefix(ctx context.Context, prefix string) ([]internal.LifelogRecord, error)
	DeleteLifelogRecord(ctx context.Context, userAndDate string) error
}

// UserSettingsRepository stores per-user configuration. Get returns (nil, nil)
// when the user has never saved settings.
type UserSettingsRepository interface {
	GetUserSettings(ctx context.Context, userID string) (*internal.UserSettings, error)
	PutUserSettings(ctx context.Context, settings *internal.UserSettings) error
}

type ProjectRepository interface {
	GetProject(ctx context.Context, code string) (*internal.Project, error)
	ListProjects(ctx context.Context) ([]internal.Project, error)
	PutProject(ctx context.Context, project *internal.Project) error
}

// HolidayRepository stores read-only holiday reference data keyed
// "{country_id}-{year}". Get returns (nil, nil) when no set is loaded for
// the country and year.
type HolidayRepository interface {
	GetHolidaySet(ctx context.Context, countryID, year string) (*internal.HolidaySet, error)
	PutHolidaySet(ctx context.Context, set *internal.HolidaySet) error
}

// AdminUserRepository stores the admin allow-list. An empty list means every
// user is treated as an admin.
type AdminUserRepository interface {
	AnyAdminUsers(ctx context.Context) (bool, error)
	IsAdminUser(ctx context.Context, userID string) (bool, error)
	PutAdminUser(ctx context.Context, userID string) error
}

// PolicyRepository stores organization-wide policy values by key. Get returns
// "" when the key has never been set.
type PolicyRepository interface {
	GetPolicy(ctx context.Context, key string) (string, error)
	PutPolicy(ctx context.Context, key, value string) error
}

// ActiveViewRepository tracks open report views for the background refresher.
type ActiveViewRepository interface {
	SaveActiveView(ctx context.Context, view *internal.ActiveView) error
	ListActiveViews(ctx context.Context) ([]internal.ActiveView, error)
	DeleteActiveView(ctx context.Context, viewID string) error
}

package storage

import (
	"fmt"
	"io"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/config"
)

// Repositories bundles every repository backed by one storage instance.
type Repositories struct {
	TimeEntries  TimeEntryRepository
	Lifelogs     LifelogRepository
	UserSettings UserSettingsRepository
	Projects     ProjectRepository
	Holidays     HolidayRepository
	AdminUsers   AdminUserRepository
	Policies     PolicyRepository
	ActiveViews  ActiveViewRepository

	closer io.Closer
}

func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

type backend interface {
	io.Closer
	TimeEntryRepository
	LifelogRepository
	UserSettingsRepository
	ProjectRepository
	HolidayRepository
	AdminUserRepository
	PolicyRepository
	ActiveViewRepository
}

func NewRepositories(cfg *config.Config, logger internal.Logger) (*Repositories, error) {
	var (
		b   backend
		err error
	)
	switch cfg.StorageBackend {
	case "postgres":
		b, err = NewPostgresStorage(cfg.PostgresDSN, logger)
	case "sqlite":
		b, err = NewSQLiteStorage(cfg.SQLitePath, logger)
	case "file":
		b, err = NewFileStorage(cfg.DataFile, logger)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}
	return bundle(b), nil
}

func bundle(b backend) *Repositories {
	return &Repositories{
		TimeEntries:  b,
		Lifelogs:     b,
		UserSettings: b,
		Projects:     b,
		Holidays:     b,
		AdminUsers:   b,
		Policies:     b,
		ActiveViews:  b,
		closer:       b,
	}
}

// NewFileRepositories builds the file-backed bundle directly; tests use it
// to avoid the config singleton.
func NewFileRepositories(dataFile string, logger internal.Logger) (*Repositories, error) {
	s, err := NewFileStorage(dataFile, logger)
	if err != nil {
		return nil, err
	}
	return bundle(s), nil
}

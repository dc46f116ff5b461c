package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/yourname/timesheet/internal"
)

const sqliteSchemaVersion = 1

type SQLiteStorage struct {
	db     *sql.DB
	logger internal.Logger
}

// NewSQLiteStorage opens (or creates) the database at dbPath and migrates the
// schema in place using PRAGMA user_version.
func NewSQLiteStorage(dbPath string, logger internal.Logger) (*SQLiteStorage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStorage{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= sqliteSchemaVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion))
	return err
}

func (s *SQLiteStorage) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS time_entries (
		user_and_date      TEXT PRIMARY KEY,
		work_entries       TEXT NOT NULL DEFAULT '[]',
		break_time_entries TEXT NOT NULL DEFAULT '[]',
		time_off_entries   TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS lifelogs (
		user_and_date TEXT PRIMARY KEY,
		logs          TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS user_settings (
		user_id    TEXT PRIMARY KEY,
		language   TEXT NOT NULL DEFAULT 'en',
		country_id TEXT NOT NULL DEFAULT '',
		app_mode   TEXT NOT NULL DEFAULT '',
		tz_offset  INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS projects (
		code        TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_active   INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS holidays (
		country_id_and_year TEXT PRIMARY KEY,
		holidays            TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS admin_users (
		user_id TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS organization_policies (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS active_views (
		view_id         TEXT PRIMARY KEY,
		user_id         TEXT NOT NULL,
		callback_id     TEXT NOT NULL,
		last_updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func marshalList(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalList(raw string, list *[]string) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), list)
}

// --- TimeEntryRepository ---
func (s *SQLiteStorage) GetDayRecord(ctx context.Context, userAndDate string) (*internal.DayRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_and_date, work_entries, break_time_entries, time_off_entries FROM time_entries WHERE user_and_date = ?`, userAndDate)
	rec, err := scanDayRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Errorf("failed to scan time entry record: %v", err)
		return nil, err
	}
	return rec, nil
}

func scanDayRecord(scan func(...any) error) (*internal.DayRecord, error) {
	var rec internal.DayRecord
	var work, breaks, timeOff string
	if err := scan(&rec.UserAndDate, &work, &breaks, &timeOff); err != nil {
		return nil, err
	}
	if err := unmarshalList(work, &rec.WorkEntries); err != nil {
		return nil, err
	}
	if err := unmarshalList(breaks, &rec.BreakTimeEntries); err != nil {
		return nil, err
	}
	if err := unmarshalList(timeOff, &rec.TimeOffEntries); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLiteStorage) PutDayRecord(ctx context.Context, rec *internal.DayRecord) error {
	work, err := marshalList(rec.WorkEntries)
	if err != nil {
		return err
	}
	breaks, err := marshalList(rec.BreakTimeEntries)
	if err != nil {
		return err
	}
	timeOff, err := marshalList(rec.TimeOffEntries)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO time_entries (user_and_date, work_entries, break_time_entries, time_off_entries) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_and_date) DO UPDATE SET work_entries = excluded.work_entries, break_time_entries = excluded.break_time_entries, time_off_entries = excluded.time_off_entries`,
		rec.UserAndDate, work, breaks, timeOff)
	if err != nil {
		s.logger.Errorf("failed to upsert time entry record: %v", err)
	}
	return err
}

func (s *SQLiteStorage) QueryDayRecordsByPrefix(ctx context.Context, prefix string) ([]internal.DayRecord, error) {
	return s.queryDayRecords(ctx, `SELECT user_and_date, work_entries, break_time_entries, time_off_entries FROM time_entries WHERE user_and_date LIKE ? || '%' ORDER BY user_and_date`, prefix)
}

func (s *SQLiteStorage) QueryDayRecordsByContains(ctx context.Context, substr string) ([]internal.DayRecord, error) {
	return s.queryDayRecords(ctx, `SELECT user_and_date, work_entries, break_time_entries, time_off_entries FROM time_entries WHERE user_and_date LIKE '%' || ? || '%' ORDER BY user_and_date`, substr)
}

func (s *SQLiteStorage) queryDayRecords(ctx context.Context, query, arg string) ([]internal.DayRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		s.logger.Errorf("failed to query time entry records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var recs []internal.DayRecord
	for rows.Next() {
		rec, err := scanDayRecord(rows.Scan)
		if err != nil {
			s.logger.Errorf("failed to scan time entry record: %v", err)
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStorage) DeleteDayRecord(ctx context.Context, userAndDate string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM time_entries WHERE user_and_date = ?`, userAndDate)
	if err != nil {
		s.logger.Errorf("failed to delete time entry record: %v", err)
	}
	return err
}

// --- LifelogRepository ---
func (s *SQLiteStorage) GetLifelogRecord(ctx context.Context, userAndDate string) (*internal.LifelogRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_and_date, logs FROM lifelogs WHERE user_and_date = ?`, userAndDate)
	var rec internal.LifelogRecord
	var logs string
	if err := row.Scan(&rec.UserAndDate, &logs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Errorf("failed to scan lifelog record: %v", err)
		return nil, err
	}
	if err := unmarshalList(logs, &rec.Logs); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLiteStorage) PutLifelogRecord(ctx context.Context, rec *internal.LifelogRecord) error {
	logs, err := marshalList(rec.Logs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO lifelogs (user_and_date, logs) VALUES (?, ?)
		ON CONFLICT (user_and_date) DO UPDATE SET logs = excluded.logs`, rec.UserAndDate, logs)
	if err != nil {
		s.logger.Errorf("failed to upsert lifelog record: %v", err)
	}
	return err
}

func (s *SQLiteStorage) QueryLifelogRecordsByPrefix(ctx context.Context, prefix string) ([]internal.LifelogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_and_date, logs FROM lifelogs WHERE user_and_date LIKE ? || '%' ORDER BY user_and_date`, prefix)
	if err != nil {
		s.logger.Errorf("failed to query lifelog records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var recs []internal.LifelogRecord
	for rows.Next() {
		var rec internal.LifelogRecord
		var logs string
		if err := rows.Scan(&rec.UserAndDate, &logs); err != nil {
			s.logger.Errorf("failed to scan lifelog record: %v", err)
			return nil, err
		}
		if err := unmarshalList(logs, &rec.Logs); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStorage) DeleteLifelogRecord(ctx context.Context, userAndDate string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lifelogs WHERE user_and_date = ?`, userAndDate)
	if err != nil {
		s.logger.Errorf("failed to delete lifelog record: %v", err)
	}
	return err
}

// --- UserSettingsRepository ---
func (s *SQLiteStorage) GetUserSettings(ctx context.Context, userID string) (*internal.UserSettings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id, language, country_id, app_mode, tz_offset FROM user_settings WHERE user_id = ?`, userID)
	var settings internal.UserSettings
	if err := row.Scan(&settings.User, &settings.Language, &settings.CountryID, &settings.AppMode, &settings.Offset); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Errorf("failed to scan user settings: %v", err)
		return nil, err
	}
	return &settings, nil
}

func (s *SQLiteStorage) PutUserSettings(ctx context.Context, settings *internal.UserSettings) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO user_settings (user_id, language, country_id, app_mode, tz_offset) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET language = excluded.language, country_id = excluded.country_id, app_mode = excluded.app_mode, tz_offset = excluded.tz_offset`,
		settings.User, settings.Language, settings.CountryID, settings.AppMode, settings.Offset)
	if err != nil {
		s.logger.Errorf("failed to upsert user settings: %v", err)
	}
	return err
}

// --- ProjectRepository ---
func (s *SQLiteStorage) GetProject(ctx context.Context, code string) (*internal.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT code, name, description, is_active FROM projects WHERE code = ?`, code)
	var proj internal.Project
	if err := row.Scan(&proj.Code, &proj.Name, &proj.Description, &proj.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Errorf("failed to scan project: %v", err)
		return nil, err
	}
	return &proj, nil
}

func (s *SQLiteStorage) ListProjects(ctx context.Context) ([]internal.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name, description, is_active FROM projects ORDER BY code`)
	if err != nil {
		s.logger.Errorf("failed to query projects: %v", err)
		return nil, err
	}
	defer rows.Close()

	var projects []internal.Project
	for rows.Next() {
		var proj internal.Project
		if err := rows.Scan(&proj.Code, &proj.Name, &proj.Description, &proj.IsActive); err != nil {
			s.logger.Errorf("failed to scan project: %v", err)
			return nil, err
		}
		projects = append(projects, proj)
	}
	return projects, rows.Err()
}

func (s *SQLiteStorage) PutProject(ctx context.Context, project *internal.Project) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO projects (code, name, description, is_active) VALUES (?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET name = excluded.name, description = excluded.description, is_active = excluded.is_active`,
		project.Code, project.Name, project.Description, project.IsActive)
	if err != nil {
		s.logger.Errorf("failed to upsert project: %v", err)
	}
	return err
}

// --- HolidayRepository ---
func (s *SQLiteStorage) GetHolidaySet(ctx context.Context, countryID, year string) (*internal.HolidaySet, error) {
	key := countryID + "-" + year
	row := s.db.QueryRowContext(ctx, `SELECT country_id_and_year, holidays FROM holidays WHERE country_id_and_year = ?`, key)
	var set internal.HolidaySet
	var days string
	if err := row.Scan(&set.CountryIDAndYear, &days); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Errorf("failed to scan holiday set: %v", err)
		return nil, err
	}
	if err := unmarshalList(days, &set.Holidays); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *SQLiteStorage) PutHolidaySet(ctx context.Context, set *internal.HolidaySet) error {
	days, err := marshalList(set.Holidays)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO holidays (country_id_and_year, holidays) VALUES (?, ?)
		ON CONFLICT (country_id_and_year) DO UPDATE SET holidays = excluded.holidays`, set.CountryIDAndYear, days)
	if err != nil {
		s.logger.Errorf("failed to upsert holiday set: %v", err)
	}
	return err
}

// --- AdminUserRepository ---
func (s *SQLiteStorage) AnyAdminUsers(ctx context.Context) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM admin_users)`)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		s.logger.Errorf("failed to check admin users: %v", err)
		return false, err
	}
	return exists, nil
}

func (s *SQLiteStorage) IsAdminUser(ctx context.Context, userID string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM admin_users WHERE user_id = ?)`, userID)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		s.logger.Errorf("failed to check admin user: %v", err)
		return false, err
	}
	return exists, nil
}

func (s *SQLiteStorage) PutAdminUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO admin_users (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		s.logger.Errorf("failed to insert admin user: %v", err)
	}
	return err
}

// --- PolicyRepository ---
func (s *SQLiteStorage) GetPolicy(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM organization_policies WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		s.logger.Errorf("failed to scan policy: %v", err)
		return "", err
	}
	return value, nil
}

func (s *SQLiteStorage) PutPolicy(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO organization_policies (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		s.logger.Errorf("failed to upsert policy: %v", err)
	}
	return err
}

// --- ActiveViewRepository ---
func (s *SQLiteStorage) SaveActiveView(ctx context.Context, view *internal.ActiveView) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO active_views (view_id, user_id, callback_id, last_updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (view_id) DO UPDATE SET user_id = excluded.user_id, callback_id = excluded.callback_id, last_updated_at = excluded.last_updated_at`,
		view.ViewID, view.UserID, view.CallbackID, view.LastUpdatedAt)
	if err != nil {
		s.logger.Errorf("failed to upsert active view: %v", err)
	}
	return err
}

func (s *SQLiteStorage) ListActiveViews(ctx context.Context) ([]internal.ActiveView, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT view_id, user_id, callback_id, last_updated_at FROM active_views ORDER BY last_updated_at`)
	if err != nil {
		s.logger.Errorf("failed to query active views: %v", err)
		return nil, err
	}
	defer rows.Close()

	var views []internal.ActiveView
	for rows.Next() {
		var v internal.ActiveView
		if err := rows.Scan(&v.ViewID, &v.UserID, &v.CallbackID, &v.LastUpdatedAt); err != nil {
			s.logger.Errorf("failed to scan active view: %v", err)
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (s *SQLiteStorage) DeleteActiveView(ctx context.Context, viewID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM active_views WHERE view_id = ?`, viewID)
	if err != nil {
		s.logger.Errorf("failed to delete active view: %v", err)
	}
	return err
}

// --- Compile-time assertions ---
var _ TimeEntryRepository = (*SQLiteStorage)(nil)
var _ LifelogRepository = (*SQLiteStorage)(nil)
var _ UserSettingsRepository = (*SQLiteStorage)(nil)
var _ ProjectRepository = (*SQLiteStorage)(nil)
var _ HolidayRepository = (*SQLiteStorage)(nil)
var _ AdminUserRepository = (*SQLiteStorage)(nil)
var _ PolicyRepository = (*SQLiteStorage)(nil)
var _ ActiveViewRepository = (*SQLiteStorage)(nil)

package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/storage/migrations"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	if err := runMigrations(ctx, dsn); err != nil {
		logger.Errorf("failed to run migrations: %v", err)
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

// runMigrations opens a short-lived database/sql connection for goose; the
// query path uses the pgx pool directly.
func runMigrations(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- TimeEntryRepository ---
func (p *PostgresStorage) GetDayRecord(ctx context.Context, userAndDate string) (*internal.DayRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT user_and_date, work_entries, break_time_entries, time_off_entries FROM time_entries WHERE user_and_date = $1`, userAndDate)
	var rec internal.DayRecord
	if err := row.Scan(&rec.UserAndDate, &rec.WorkEntries, &rec.BreakTimeEntries, &rec.TimeOffEntries); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to scan time entry record: %v", err)
		return nil, err
	}
	return &rec, nil
}

func (p *PostgresStorage) PutDayRecord(ctx context.Context, rec *internal.DayRecord) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO time_entries (user_and_date, work_entries, break_time_entries, time_off_entries) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_and_date) DO UPDATE SET work_entries = EXCLUDED.work_entries, break_time_entries = EXCLUDED.break_time_entries, time_off_entries = EXCLUDED.time_off_entries`,
		rec.UserAndDate, emptyList(rec.WorkEntries), emptyList(rec.BreakTimeEntries), emptyList(rec.TimeOffEntries))
	if err != nil {
		p.logger.Errorf("failed to upsert time entry record: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) QueryDayRecordsByPrefix(ctx context.Context, prefix string) ([]internal.DayRecord, error) {
	return p.queryDayRecords(ctx, `SELECT user_and_date, work_entries, break_time_entries, time_off_entries FROM time_entries WHERE user_and_date LIKE $1 || '%' ORDER BY user_and_date`, prefix)
}

func (p *PostgresStorage) QueryDayRecordsByContains(ctx context.Context, substr string) ([]internal.DayRecord, error) {
	return p.queryDayRecords(ctx, `SELECT user_and_date, work_entries, break_time_entries, time_off_entries FROM time_entries WHERE user_and_date LIKE '%' || $1 || '%' ORDER BY user_and_date`, substr)
}

func (p *PostgresStorage) queryDayRecords(ctx context.Context, query, arg string) ([]internal.DayRecord, error) {
	rows, err := p.pool.Query(ctx, query, arg)
	if err != nil {
		p.logger.Errorf("failed to query time entry records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var recs []internal.DayRecord
	for rows.Next() {
		var rec internal.DayRecord
		if err := rows.Scan(&rec.UserAndDate, &rec.WorkEntries, &rec.BreakTimeEntries, &rec.TimeOffEntries); err != nil {
			p.logger.Errorf("failed to scan time entry record: %v", err)
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (p *PostgresStorage) DeleteDayRecord(ctx context.Context, userAndDate string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM time_entries WHERE user_and_date = $1`, userAndDate)
	if err != nil {
		p.logger.Errorf("failed to delete time entry record: %v", err)
	}
	return err
}

// --- LifelogRepository ---
func (p *PostgresStorage) GetLifelogRecord(ctx context.Context, userAndDate string) (*internal.LifelogRecord, error) {
	row := p.pool.QueryRow(ctx, `SELECT user_and_date, logs FROM lifelogs WHERE user_and_date = $1`, userAndDate)
	var rec internal.LifelogRecord
	if err := row.Scan(&rec.UserAndDate, &rec.Logs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to scan lifelog record: %v", err)
		return nil, err
	}
	return &rec, nil
}

func (p *PostgresStorage) PutLifelogRecord(ctx context.Context, rec *internal.LifelogRecord) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO lifelogs (user_and_date, logs) VALUES ($1, $2)
		ON CONFLICT (user_and_date) DO UPDATE SET logs = EXCLUDED.logs`,
		rec.UserAndDate, emptyList(rec.Logs))
	if err != nil {
		p.logger.Errorf("failed to upsert lifelog record: %v", err)
	}
	return err
}

func (p *PostgresStorage) QueryLifelogRecordsByPrefix(ctx context.Context, prefix string) ([]internal.LifelogRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT user_and_date, logs FROM lifelogs WHERE user_and_date LIKE $1 || '%' ORDER BY user_and_date`, prefix)
	if err != nil {
		p.logger.Errorf("failed to query lifelog records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var recs []internal.LifelogRecord
	for rows.Next() {
		var rec internal.LifelogRecord
		if err := rows.Scan(&rec.UserAndDate, &rec.Logs); err != nil {
			p.logger.Errorf("failed to scan lifelog record: %v", err)
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (p *PostgresStorage) DeleteLifelogRecord(ctx context.Context, userAndDate string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM lifelogs WHERE user_and_date = $1`, userAndDate)
	if err != nil {
		p.logger.Errorf("failed to delete lifelog record: %v", err)
	}
	return err
}

// --- UserSettingsRepository ---
func (p *PostgresStorage) GetUserSettings(ctx context.Context, userID string) (*internal.UserSettings, error) {
	row := p.pool.QueryRow(ctx, `SELECT user_id, language, country_id, app_mode, tz_offset FROM user_settings WHERE user_id = $1`, userID)
	var s internal.UserSettings
	if err := row.Scan(&s.User, &s.Language, &s.CountryID, &s.AppMode, &s.Offset); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to scan user settings: %v", err)
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStorage) PutUserSettings(ctx context.Context, settings *internal.UserSettings) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO user_settings (user_id, language, country_id, app_mode, tz_offset) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language, country_id = EXCLUDED.country_id, app_mode = EXCLUDED.app_mode, tz_offset = EXCLUDED.tz_offset`,
		settings.User, settings.Language, settings.CountryID, settings.AppMode, settings.Offset)
	if err != nil {
		p.logger.Errorf("failed to upsert user settings: %v", err)
	}
	return err
}

// --- ProjectRepository ---
func (p *PostgresStorage) GetProject(ctx context.Context, code string) (*internal.Project, error) {
	row := p.pool.QueryRow(ctx, `SELECT code, name, description, is_active FROM projects WHERE code = $1`, code)
	var proj internal.Project
	if err := row.Scan(&proj.Code, &proj.Name, &proj.Description, &proj.IsActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to scan project: %v", err)
		return nil, err
	}
	return &proj, nil
}

func (p *PostgresStorage) ListProjects(ctx context.Context) ([]internal.Project, error) {
	rows, err := p.pool.Query(ctx, `SELECT code, name, description, is_active FROM projects ORDER BY code`)
	if err != nil {
		p.logger.Errorf("failed to query projects: %v", err)
		return nil, err
	}
	defer rows.Close()

	var projects []internal.Project
	for rows.Next() {
		var proj internal.Project
		if err := rows.Scan(&proj.Code, &proj.Name, &proj.Description, &proj.IsActive); err != nil {
			p.logger.Errorf("failed to scan project: %v", err)
			return nil, err
		}
		projects = append(projects, proj)
	}
	return projects, rows.Err()
}

func (p *PostgresStorage) PutProject(ctx context.Context, project *internal.Project) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO projects (code, name, description, is_active) VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, is_active = EXCLUDED.is_active`,
		project.Code, project.Name, project.Description, project.IsActive)
	if err != nil {
		p.logger.Errorf("failed to upsert project: %v", err)
	}
	return err
}

// --- HolidayRepository ---
func (p *PostgresStorage) GetHolidaySet(ctx context.Context, countryID, year string) (*internal.HolidaySet, error) {
	key := countryID + "-" + year
	row := p.pool.QueryRow(ctx, `SELECT country_id_and_year, holidays FROM holidays WHERE country_id_and_year = $1`, key)
	var set internal.HolidaySet
	if err := row.Scan(&set.CountryIDAndYear, &set.Holidays); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to scan holiday set: %v", err)
		return nil, err
	}
	return &set, nil
}

func (p *PostgresStorage) PutHolidaySet(ctx context.Context, set *internal.HolidaySet) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO holidays (country_id_and_year, holidays) VALUES ($1, $2)
		ON CONFLICT (country_id_and_year) DO UPDATE SET holidays = EXCLUDED.holidays`,
		set.CountryIDAndYear, emptyList(set.Holidays))
	if err != nil {
		p.logger.Errorf("failed to upsert holiday set: %v", err)
	}
	return err
}

// --- AdminUserRepository ---
func (p *PostgresStorage) AnyAdminUsers(ctx context.Context) (bool, error) {
	row := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admin_users)`)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		p.logger.Errorf("failed to check admin users: %v", err)
		return false, err
	}
	return exists, nil
}

func (p *PostgresStorage) IsAdminUser(ctx context.Context, userID string) (bool, error) {
	row := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admin_users WHERE user_id = $1)`, userID)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		p.logger.Errorf("failed to check admin user: %v", err)
		return false, err
	}
	return exists, nil
}

func (p *PostgresStorage) PutAdminUser(ctx context.Context, userID string) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO admin_users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		p.logger.Errorf("failed to insert admin user: %v", err)
	}
	return err
}

// --- PolicyRepository ---
func (p *PostgresStorage) GetPolicy(ctx context.Context, key string) (string, error) {
	row := p.pool.QueryRow(ctx, `SELECT value FROM organization_policies WHERE key = $1`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		p.logger.Errorf("failed to scan policy: %v", err)
		return "", err
	}
	return value, nil
}

func (p *PostgresStorage) PutPolicy(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO organization_policies (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		p.logger.Errorf("failed to upsert policy: %v", err)
	}
	return err
}

// --- ActiveViewRepository ---
func (p *PostgresStorage) SaveActiveView(ctx context.Context, view *internal.ActiveView) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO active_views (view_id, user_id, callback_id, last_updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (view_id) DO UPDATE SET user_id = EXCLUDED.user_id, callback_id = EXCLUDED.callback_id, last_updated_at = EXCLUDED.last_updated_at`,
		view.ViewID, view.UserID, view.CallbackID, view.LastUpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to upsert active view: %v", err)
	}
	return err
}

func (p *PostgresStorage) ListActiveViews(ctx context.Context) ([]internal.ActiveView, error) {
	rows, err := p.pool.Query(ctx, `SELECT view_id, user_id, callback_id, last_updated_at FROM active_views ORDER BY last_updated_at`)
	if err != nil {
		p.logger.Errorf("failed to query active views: %v", err)
		return nil, err
	}
	defer rows.Close()

	var views []internal.ActiveView
	for rows.Next() {
		var v internal.ActiveView
		if err := rows.Scan(&v.ViewID, &v.UserID, &v.CallbackID, &v.LastUpdatedAt); err != nil {
			p.logger.Errorf("failed to scan active view: %v", err)
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (p *PostgresStorage) DeleteActiveView(ctx context.Context, viewID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM active_views WHERE view_id = $1`, viewID)
	if err != nil {
		p.logger.Errorf("failed to delete active view: %v", err)
	}
	return err
}

// emptyList keeps nil slices serializing as [] in jsonb columns.
func emptyList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// --- Compile-time assertions ---
var _ TimeEntryRepository = (*PostgresStorage)(nil)
var _ LifelogRepository = (*PostgresStorage)(nil)
var _ UserSettingsRepository = (*PostgresStorage)(nil)
var _ ProjectRepository = (*PostgresStorage)(nil)
var _ HolidayRepository = (*PostgresStorage)(nil)
var _ AdminUserRepository = (*PostgresStorage)(nil)
var _ PolicyRepository = (*PostgresStorage)(nil)
var _ ActiveViewRepository = (*PostgresStorage)(nil)

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yourname/timesheet/internal"
)

// fileSnapshot is the on-disk shape of the file backend: every dataset in one
// JSON document, written atomically as a whole.
type fileSnapshot struct {
	TimeEntries  map[string]*internal.DayRecord     `json:"time_entries"`
	Lifelogs     map[string]*internal.LifelogRecord `json:"lifelogs"`
	UserSettings map[string]*internal.UserSettings  `json:"user_settings"`
	Projects     map[string]*internal.Project       `json:"projects"`
	Holidays     map[string]*internal.HolidaySet    `json:"holidays"`
	AdminUsers   []string                           `json:"admin_users"`
	Policies     map[string]string                  `json:"organization_policies"`
	ActiveViews  map[string]*internal.ActiveView    `json:"active_views"`
}

type FileStorage struct {
	timeEntries  map[string]*internal.DayRecord
	lifelogs     map[string]*internal.LifelogRecord
	userSettings map[string]*internal.UserSettings
	projects     map[string]*internal.Project
	holidays     map[string]*internal.HolidaySet
	adminUsers   map[string]bool
	policies     map[string]string
	activeViews  map[string]*internal.ActiveView
	mu           sync.RWMutex
	dataFile     string
	saveChan     chan struct{}
	shutdownChan chan struct{}
	saveDelay    time.Duration
	logger       internal.Logger
}

func NewFileStorage(dataFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		timeEntries:  make(map[string]*internal.DayRecord),
		lifelogs:     make(map[string]*internal.LifelogRecord),
		userSettings: make(map[string]*internal.UserSettings),
		projects:     make(map[string]*internal.Project),
		holidays:     make(map[string]*internal.HolidaySet),
		adminUsers:   make(map[string]bool),
		policies:     make(map[string]string),
		activeViews:  make(map[string]*internal.ActiveView),
		dataFile:     dataFile,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		saveDelay:    500 * time.Millisecond,
		logger:       logger,
	}

	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load data file: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func (s *FileStorage) load() error {
	file, err := os.Open(s.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var snap fileSnapshot
	if err := json.NewDecoder(file).Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range snap.TimeEntries {
		s.timeEntries[k] = v
	}
	for k, v := range snap.Lifelogs {
		s.lifelogs[k] = v
	}
	for k, v := range snap.UserSettings {
		s.userSettings[k] = v
	}
	for k, v := range snap.Projects {
		s.projects[k] = v
	}
	for k, v := range snap.Holidays {
		s.holidays[k] = v
	}
	for _, u := range snap.AdminUsers {
		s.adminUsers[u] = true
	}
	for k, v := range snap.Policies {
		s.policies[k] = v
	}
	for k, v := range snap.ActiveViews {
		s.activeViews[k] = v
	}
	return nil
}

func (s *FileStorage) snapshot() *fileSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &fileSnapshot{
		TimeEntries:  make(map[string]*internal.DayRecord, len(s.timeEntries)),
		Lifelogs:     make(map[string]*internal.LifelogRecord, len(s.lifelogs)),
		UserSettings: make(map[string]*internal.UserSettings, len(s.userSettings)),
		Projects:     make(map[string]*internal.Project, len(s.projects)),
		Holidays:     make(map[string]*internal.HolidaySet, len(s.holidays)),
		AdminUsers:   make([]string, 0, len(s.adminUsers)),
		Policies:     make(map[string]string, len(s.policies)),
		ActiveViews:  make(map[string]*internal.ActiveView, len(s.activeViews)),
	}
	for k, v := range s.timeEntries {
		snap.TimeEntries[k] = v
	}
	for k, v := range s.lifelogs {
		snap.Lifelogs[k] = v
	}
	for k, v := range s.userSettings {
		snap.UserSettings[k] = v
	}
	for k, v := range s.projects {
		snap.Projects[k] = v
	}
	for k, v := range s.holidays {
		snap.Holidays[k] = v
	}
	for u := range s.adminUsers {
		snap.AdminUsers = append(snap.AdminUsers, u)
	}
	sort.Strings(snap.AdminUsers)
	for k, v := range s.policies {
		snap.Policies[k] = v
	}
	for k, v := range s.activeViews {
		snap.ActiveViews[k] = v
	}
	return snap
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) save() error {
	return atomicWriteFileJSON(s.dataFile, s.snapshot())
}

func (s *FileStorage) saveWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving data file: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStorage) scheduleSave() {
	select {
	case s.saveChan <- struct{}{}:
	default:
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Save pending data synchronously on shutdown
	return s.save()
}

// --- TimeEntryRepository ---
func (s *FileStorage) GetDayRecord(ctx context.Context, userAndDate string) (*internal.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.timeEntries[userAndDate]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *FileStorage) PutDayRecord(ctx context.Context, rec *internal.DayRecord) error {
	s.mu.Lock()
	cp := *rec
	s.timeEntries[rec.UserAndDate] = &cp
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

func (s *FileStorage) QueryDayRecordsByPrefix(ctx context.Context, prefix string) ([]internal.DayRecord, error) {
	return s.queryDayRecords(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (s *FileStorage) QueryDayRecordsByContains(ctx context.Context, substr string) ([]internal.DayRecord, error) {
	return s.queryDayRecords(func(key string) bool {
		return strings.Contains(key, substr)
	})
}

func (s *FileStorage) queryDayRecords(match func(string) bool) ([]internal.DayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []internal.DayRecord
	for key, rec := range s.timeEntries {
		if match(key) {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].UserAndDate < recs[j].UserAndDate
	})
	return recs, nil
}

func (s *FileStorage) DeleteDayRecord(ctx context.Context, userAndDate string) error {
	s.mu.Lock()
	delete(s.timeEntries, userAndDate)
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// --- LifelogRepository ---
func (s *FileStorage) GetLifelogRecord(ctx context.Context, userAndDate string) (*internal.LifelogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.lifelogs[userAndDate]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *FileStorage) PutLifelogRecord(ctx context.Context, rec *internal.LifelogRecord) error {
	s.mu.Lock()
	cp := *rec
	s.lifelogs[rec.UserAndDate] = &cp
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

func (s *FileStorage) QueryLifelogRecordsByPrefix(ctx context.Context, prefix string) ([]internal.LifelogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []internal.LifelogRecord
	for key, rec := range s.lifelogs {
		if strings.HasPrefix(key, prefix) {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].UserAndDate < recs[j].UserAndDate
	})
	return recs, nil
}

func (s *FileStorage) DeleteLifelogRecord(ctx context.Context, userAndDate string) error {
	s.mu.Lock()
	delete(s.lifelogs, userAndDate)
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// --- UserSettingsRepository ---
func (s *FileStorage) GetUserSettings(ctx context.Context, userID string) (*internal.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings, ok := s.userSettings[userID]
	if !ok {
		return nil, nil
	}
	cp := *settings
	return &cp, nil
}

func (s *FileStorage) PutUserSettings(ctx context.Context, settings *internal.UserSettings) error {
	s.mu.Lock()
	cp := *settings
	s.userSettings[settings.User] = &cp
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// --- ProjectRepository ---
func (s *FileStorage) GetProject(ctx context.Context, code string) (*internal.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proj, ok := s.projects[code]
	if !ok {
		return nil, nil
	}
	cp := *proj
	return &cp, nil
}

func (s *FileStorage) ListProjects(ctx context.Context) ([]internal.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var projects []internal.Project
	for _, proj := range s.projects {
		projects = append(projects, *proj)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Code < projects[j].Code
	})
	return projects, nil
}

func (s *FileStorage) PutProject(ctx context.Context, project *internal.Project) error {
	s.mu.Lock()
	cp := *project
	s.projects[project.Code] = &cp
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// --- HolidayRepository ---
func (s *FileStorage) GetHolidaySet(ctx context.Context, countryID, year string) (*internal.HolidaySet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.holidays[countryID+"-"+year]
	if !ok {
		return nil, nil
	}
	cp := *set
	return &cp, nil
}

func (s *FileStorage) PutHolidaySet(ctx context.Context, set *internal.HolidaySet) error {
	s.mu.Lock()
	cp := *set
	s.holidays[set.CountryIDAndYear] = &cp
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// --- AdminUserRepository ---
func (s *FileStorage) AnyAdminUsers(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.adminUsers) > 0, nil
}

func (s *FileStorage) IsAdminUser(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminUsers[userID], nil
}

func (s *FileStorage) PutAdminUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.adminUsers[userID] = true
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// --- PolicyRepository ---
func (s *FileStorage) GetPolicy(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies[key], nil
}

func (s *FileStorage) PutPolicy(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.policies[key] = value
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// --- ActiveViewRepository ---
func (s *FileStorage) SaveActiveView(ctx context.Context, view *internal.ActiveView) error {
	s.mu.Lock()
	cp := *view
	s.activeViews[view.ViewID] = &cp
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

func (s *FileStorage) ListActiveViews(ctx context.Context) ([]internal.ActiveView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var views []internal.ActiveView
	for _, v := range s.activeViews {
		views = append(views, *v)
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].LastUpdatedAt < views[j].LastUpdatedAt
	})
	return views, nil
}

func (s *FileStorage) DeleteActiveView(ctx context.Context, viewID string) error {
	s.mu.Lock()
	delete(s.activeViews, viewID)
	s.mu.Unlock()
	s.scheduleSave()
	return nil
}

// --- Compile-time assertions ---
var _ TimeEntryRepository = (*FileStorage)(nil)
var _ LifelogRepository = (*FileStorage)(nil)
var _ UserSettingsRepository = (*FileStorage)(nil)
var _ ProjectRepository = (*FileStorage)(nil)
var _ HolidayRepository = (*FileStorage)(nil)
var _ AdminUserRepository = (*FileStorage)(nil)
var _ PolicyRepository = (*FileStorage)(nil)
var _ ActiveViewRepository = (*FileStorage)(nil)

package internal

// EntryKind tags an interval with the list it belongs to. The kind is never
// stored inside a serialized entry; it is implied by which list (or which
// datastore) the entry lives in.
type EntryKind string

const (
	KindWork      EntryKind = "work"
	KindBreakTime EntryKind = "break_time"
	KindTimeOff   EntryKind = "time_off"
	KindLifelog   EntryKind = "lifelog"
)

// Country codes used for labor-law keying and holiday lookups.
const (
	CountryJapan        = "jp"
	CountryUnitedStates = "us"
)

// App modes stored in user settings.
const (
	AppModeWork            = "work"
	AppModeWorkAndLifelogs = "work_and_lifelogs"
)

// Organization policy keys and values.
const (
	PolicyKeyManualEntryPermitted = "is_manual_entry_permitted"
	PolicyKeyCountry              = "country"

	PolicyValuePermitted  = "permitted"
	PolicyValueRestricted = "restricted"
)

// Emojis attached to report timeline entries.
const (
	EmojiWork      = ":briefcase:"
	EmojiBreakTime = ":knife_fork_plate:"
	EmojiTimeOff   = ":no_bell:"
	EmojiHoliday   = ":palm_tree:"
	EmojiLifelog   = ":ledger:"
	EmojiWarning   = ":warning:"
)

// Interval is the atomic time span: a start, an optional end (empty while
// the interval is still open), and kind-specific extras. Start/End are
// 24-hour "HH:MM" strings.
type Interval struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	ProjectCode string `json:"project_code,omitempty"`
	WhatToDo    string `json:"what_to_do,omitempty"`
	// Kind can be used only in app code, never in the datastore.
	Kind EntryKind `json:"-"`
}

// DayRecord holds one user's serialized work/break/time-off entries for one
// calendar date. The key format is "{user_id}-{YYYYMMDD}".
type DayRecord struct {
	UserAndDate      string   `json:"user_and_date"`
	WorkEntries      []string `json:"work_entries"`
	BreakTimeEntries []string `json:"break_time_entries,omitempty"`
	TimeOffEntries   []string `json:"time_off_entries,omitempty"`
}

// LifelogRecord holds one user's serialized lifelog entries for one calendar
// date, stored independently from the time-entry record under the same
// "{user_id}-{YYYYMMDD}" key format.
type LifelogRecord struct {
	UserAndDate string   `json:"user_and_date"`
	Logs        []string `json:"logs"`
}

// UserSettings is per-user configuration. Offset is the user's UTC offset in
// seconds, cached from the identity service on each request.
type UserSettings struct {
	User      string `json:"user"`
	Language  string `json:"language"`
	CountryID string `json:"country_id,omitempty"`
	AppMode   string `json:"app_mode,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

type Project struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type Country struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// HolidaySet is read-only reference data: the public holidays for one
// country and year, keyed "{country_id}-{year}", each day as YYYYMMDD.
type HolidaySet struct {
	CountryIDAndYear string   `json:"country_id_and_year"`
	Holidays         []string `json:"holidays"`
}

type OrganizationPolicy struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ActiveView tracks an open main view that the background refresher keeps
// up to date.
type ActiveView struct {
	ViewID        string `json:"view_id"`
	UserID        string `json:"user_id"`
	CallbackID    string `json:"callback_id"`
	LastUpdatedAt int64  `json:"last_updated_at"`
}

// User is the authenticated caller as resolved by the identity provider.
// Offset is the UTC offset in seconds, Locale a tag like "ja-JP".
type User struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Locale string `json:"locale,omitempty"`
	Offset int    `json:"tz_offset"`
}

// ReportTimeEntry is a timeline-positioned, display-ready interval inside a
// daily report. It may be synthesized rather than copied 1:1 from storage
// when the merge pass splits an ongoing work interval around a break.
type ReportTimeEntry struct {
	Type        EntryKind `json:"type"`
	TypeLabel   string    `json:"type_label"`
	TypeEmoji   string    `json:"type_emoji"`
	Start       string    `json:"start"`
	End         string    `json:"end"`
	Minutes     int       `json:"minutes"`
	ProjectCode string    `json:"project_code,omitempty"`
	WhatToDo    string    `json:"what_to_do,omitempty"`
}

// ProjectWork is the per-project work breakdown of a report.
type ProjectWork struct {
	ProjectCode string  `json:"project_code"`
	WorkHours   float64 `json:"work_hours"`
	WorkMinutes int     `json:"work_minutes"`
}

// LifelogSummary is the per-activity breakdown of lifelog time.
type LifelogSummary struct {
	WhatToDo     string  `json:"what_to_do"`
	SpentHours   float64 `json:"spent_hours"`
	SpentMinutes int     `json:"spent_minutes"`
}

// DailyReport is a derived view, recomputed on every request and never
// persisted. All *_hours figures use the one-decimal floor conversion
// (minutes/6 floored, divided by 10).
type DailyReport struct {
	Date                  string            `json:"date"`
	WorkHours             float64           `json:"work_hours"`
	OvertimeWorkHours     *float64          `json:"overtime_work_hours,omitempty"`
	NightShiftWorkHours   *float64          `json:"night_shift_work_hours,omitempty"`
	BreakTimeHours        float64           `json:"break_time_hours"`
	TimeOffHours          float64           `json:"time_off_hours"`
	WorkMinutes           int               `json:"work_minutes"`
	OvertimeWorkMinutes   *int              `json:"overtime_work_minutes,omitempty"`
	NightShiftWorkMinutes *int              `json:"night_shift_work_minutes,omitempty"`
	BreakTimeMinutes      int               `json:"break_time_minutes"`
	TimeOffMinutes        int               `json:"time_off_minutes"`
	Entries               []ReportTimeEntry `json:"entries"`
	Projects              []ProjectWork     `json:"projects,omitempty"`
	Lifelogs              []LifelogSummary  `json:"lifelogs,omitempty"`
}

// MonthlyReport folds a month of daily reports for one user.
type MonthlyReport struct {
	Month                 string           `json:"month"`
	UserID                string           `json:"user_id"`
	UserEmail             string           `json:"user_email"`
	Holidays              int              `json:"holidays"`
	NumOfWorkingDays      int              `json:"num_of_working_days"`
	EntryHours            float64          `json:"entry_hours"`
	WorkHours             float64          `json:"work_hours"`
	OvertimeWorkHours     *float64         `json:"overtime_work_hours,omitempty"`
	NightShiftWorkHours   *float64         `json:"night_shift_work_hours,omitempty"`
	BreakTimeHours        float64          `json:"break_time_hours"`
	TimeOffHours          float64          `json:"time_off_hours"`
	EntryMinutes          int              `json:"entry_minutes"`
	WorkMinutes           int              `json:"work_minutes"`
	OvertimeWorkMinutes   *int             `json:"overtime_work_minutes,omitempty"`
	NightShiftWorkMinutes *int             `json:"night_shift_work_minutes,omitempty"`
	BreakTimeMinutes      int              `json:"break_time_minutes"`
	TimeOffMinutes        int              `json:"time_off_minutes"`
	DailyReports          []DailyReport    `json:"daily_reports"`
	Projects              []ProjectWork    `json:"projects,omitempty"`
	Lifelogs              []LifelogSummary `json:"lifelogs,omitempty"`
}

// AdminMonthlyReport bundles every member's monthly report for admins.
type AdminMonthlyReport struct {
	Month       string          `json:"month"`
	Reports     []MonthlyReport `json:"reports"`
	GeneratedAt string          `json:"generated_at"`
}

// Package i18n is the string table for user-facing labels and messages.
// Labels are keyed by their English text; missing translations fall back
// to the key itself.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Labels and messages. The English text doubles as the lookup key.
const (
	AppName        = "Timesheet"
	Work           = "Work"
	OvertimeWork   = "Overtime Work"
	NightShiftWork = "Night Shift Work"
	BreakTime      = "Break time"
	TimeOff        = "Time off"
	Holiday        = "Holiday"
	Lifelog        = "Lifelog"

	NumOfWorkingDays = "# of Working Days"
	MonthlyReport    = "Monthly Report"
	ProjectSummary   = "Projects"
	LifelogSummary   = "Lifelogs"

	Days    = "days"
	Hours   = "hours"
	Minutes = "minutes"
	Day     = "day"
	Hour    = "hour"
	Minute  = "minute"

	HereIsTheReportYouRequested = "Here is the monthly report you requested!"

	// Error messages
	InvalidStartAndEnd   = "The combination of start and end seems to be incorrect"
	ConflictErrorMessage = "There may be a conflict with existing entries"
	TooLongInput         = "Too long input"
	CodeAlreadyExists    = "The code already exists"
	ProjectCodeFormat    = "A project code can consist of alphanumeric characters, dashes (-), and underscores (_)."
)

// Labor-law advisories.
const (
	LaborLawOfJapanBreakTimeFor6WorkHours = "Under the Labor Laws of Japan, you are entitled to a 45-minute break if your working time exceeds 6 hours."
	LaborLawOfJapanBreakTimeFor8WorkHours = "Under the Labor Laws of Japan, you are entitled to a 1-hour break if your working time exceeds 8 hours."
)

var labels = map[string]map[string]string{
	AppName:          {"ja": "タイムシート"},
	Work:             {"ja": "勤務"},
	OvertimeWork:     {"ja": "時間外"},
	NightShiftWork:   {"ja": "深夜"},
	BreakTime:        {"ja": "休憩"},
	TimeOff:          {"ja": "休暇"},
	Holiday:          {"ja": "祝日"},
	Lifelog:          {"ja": "ライフログ"},
	NumOfWorkingDays: {"ja": "出勤日数"},
	MonthlyReport:    {"ja": "月次レポート"},
	ProjectSummary:   {"ja": "プロジェクト"},
	LifelogSummary:   {"ja": "ライフログ"},
	Days:             {"ja": "日"},
	Hours:            {"ja": "時間"},
	Minutes:          {"ja": "分"},
	Day:              {"ja": "日"},
	Hour:             {"ja": "時間"},
	Minute:           {"ja": "分"},

	HereIsTheReportYouRequested: {"ja": "こちらがご希望の月次レポートです！"},

	InvalidStartAndEnd:   {"ja": "開始と終了の時刻の組み合わせが不正です"},
	ConflictErrorMessage: {"ja": "入力済の時間帯と重複しています"},
	TooLongInput:         {"ja": "入力が長すぎます"},
	CodeAlreadyExists:    {"ja": "このコードはすでに存在しています"},
	ProjectCodeFormat:    {"ja": "コードには英数字か '-', '_' のみを使用できます"},

	LaborLawOfJapanBreakTimeFor6WorkHours: {"ja": "労働時間が 6 時間を超える場合 45 分間の休憩をとることができます。"},
	LaborLawOfJapanBreakTimeFor8WorkHours: {"ja": "労働時間が 8 時間を超える場合 1 時間の休憩をとることができます。"},
}

// Translate returns the label in the requested language, falling back to
// the English key when no translation exists.
func Translate(label, lang string) string {
	if entry, ok := labels[label]; ok {
		if found, ok := entry[lang]; ok {
			return found
		}
	}
	return label
}

// SplitLocale derives a language code and a lowercase country code from a
// BCP 47 tag like "ja-JP". Unparseable tags fall back to English with no
// country.
func SplitLocale(locale string) (lang, country string) {
	if locale == "" {
		return "en", ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return "en", ""
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	// Only trust a region that was spelled out in the tag; x/text will
	// happily guess one for bare language tags like "en".
	if conf != language.Exact {
		return base.String(), ""
	}
	return base.String(), strings.ToLower(region.String())
}

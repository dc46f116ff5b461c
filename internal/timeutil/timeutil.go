// Package timeutil holds the clock-string arithmetic shared by validation
// and reporting: "HH:MM" ordering, minute deltas, and user-offset dates.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourname/timesheet/internal/i18n"
)

// Now is the clock source; tests may replace it.
var Now = time.Now

// TimeToNumber strips the colon from an "HH:MM" string and parses the rest
// as an integer ("09:30" becomes 930). The result is ONLY comparable for
// ordering; it has no arithmetic meaning ("10:00" minus "09:30" is not 70).
// Use MinutesBetween for distances.
func TimeToNumber(hhmm string) int {
	n, err := strconv.Atoi(strings.Replace(hhmm, ":", "", 1))
	if err != nil {
		return 0
	}
	return n
}

// MinutesBetween returns the true time-of-day delta in minutes between two
// "HH:MM" bounds. Either bound being empty yields 0.
func MinutesBetween(start, end string) int {
	if start == "" || end == "" {
		return 0
	}
	sh, sm, ok := splitClock(start)
	if !ok {
		return 0
	}
	eh, em, ok := splitClock(end)
	if !ok {
		return 0
	}
	return (eh*60 + em) - (sh*60 + sm)
}

func splitClock(hhmm string) (hour, minute int, ok bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}

// IsClock reports whether the string is a parseable 24-hour "HH:MM" value.
func IsClock(hhmm string) bool {
	h, m, ok := splitClock(hhmm)
	return ok && h >= 0 && h <= 24 && m >= 0 && m <= 59
}

// TodayYYYYMMDD returns "today" for a user whose UTC offset is the given
// number of seconds. The offset is a raw numeric shift, not a named zone.
func TodayYYYYMMDD(offsetSeconds int) string {
	return strings.ReplaceAll(ToDateFormat(offsetSeconds, ""), "/", "")
}

// NowHHMM returns the current wall clock as "HH:MM" in the user's offset.
func NowHHMM(offsetSeconds int) string {
	d := Now().UTC().Add(time.Duration(offsetSeconds) * time.Second)
	return fmt.Sprintf("%02d:%02d", d.Hour(), d.Minute())
}

// ToDateFormat renders a YYYYMMDD string as "YYYY/MM/DD". With an empty
// yyyymmdd it renders the current date shifted by the offset.
func ToDateFormat(offsetSeconds int, yyyymmdd string) string {
	var d time.Time
	if yyyymmdd == "" {
		d = Now().UTC().Add(time.Duration(offsetSeconds) * time.Second)
	} else {
		parsed, err := time.Parse("20060102", yyyymmdd)
		if err != nil {
			return ""
		}
		d = parsed
	}
	return d.Format("2006/01/02")
}

// ClockEmoji picks the :clockN: emoji closest to the given "HH:MM".
func ClockEmoji(hhmm string) string {
	h, _, ok := splitClock(hhmm)
	if !ok {
		return ""
	}
	if h == 0 {
		h = 12
	} else if h > 12 {
		h -= 12
	}
	return fmt.Sprintf(":clock%d:", h)
}

// DayDuration renders a whole-day count with a localized unit, or "" for
// anything below one day.
func DayDuration(days float64, language string) string {
	if days < 1 {
		return ""
	}
	label := i18n.Day
	if days >= 2 {
		label = i18n.Days
	}
	return fmt.Sprintf("%d %s", int(days), i18n.Translate(label, language))
}

// HourDuration renders a whole-hour count with a localized unit, or "" for
// anything below one hour.
func HourDuration(hours float64, language string) string {
	if hours < 1 {
		return ""
	}
	label := i18n.Hour
	if hours >= 2 {
		label = i18n.Hours
	}
	return fmt.Sprintf("%d %s", int(hours), i18n.Translate(label, language))
}

// MinuteDuration renders the sub-hour remainder of a minute count with a
// localized unit, omitting an exact-hour zero.
func MinuteDuration(minutes int, language string) string {
	m := minutes % 60
	if m == 0 {
		return ""
	}
	label := i18n.Minute
	if m >= 2 {
		label = i18n.Minutes
	}
	return fmt.Sprintf("%d %s", m, i18n.Translate(label, language))
}

// FormatDuration joins the hour and minute parts of a duration, e.g.
// "8 hours 30 minutes", omitting zero-valued components.
func FormatDuration(hours float64, minutes int, language string) string {
	parts := make([]string, 0, 2)
	if h := HourDuration(hours, language); h != "" {
		parts = append(parts, h)
	}
	if m := MinuteDuration(minutes, language); m != "" {
		parts = append(parts, m)
	}
	return strings.Join(parts, " ")
}

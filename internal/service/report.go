package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/i18n"
	"github.com/yourname/timesheet/internal/timeutil"
)

// floorHours converts minutes to hours with one decimal, always rounding
// down ("365 minutes" is 6.0 hours, not 6.1).
func floorHours(minutes int) float64 {
	return math.Floor(float64(minutes)/6) / 10
}

const regularWorkdayMinutes = 8 * 60

// GenerateDailyReport derives one day's report from the stored record and
// lifelog. Either may be nil; when both are, the result is nil. A stored
// entry that fails to deserialize aborts the whole report.
func GenerateDailyReport(rec *internal.DayRecord, lifelog *internal.LifelogRecord, offset int, country, language string) (*internal.DailyReport, error) {
	if (rec == nil || rec.UserAndDate == "") && (lifelog == nil || lifelog.UserAndDate == "") {
		return nil, nil
	}
	key := ""
	if rec != nil {
		key = rec.UserAndDate
	}
	isToday := key != "" && strings.HasSuffix(key, timeutil.TodayYYYYMMDD(offset))

	workLabel := i18n.Translate(i18n.Work, language)
	breakTimeLabel := i18n.Translate(i18n.BreakTime, language)
	timeOffLabel := i18n.Translate(i18n.TimeOff, language)
	lifelogLabel := i18n.Translate(i18n.Lifelog, language)

	var rawEntries []internal.ReportTimeEntry
	if rec != nil {
		lists := []struct {
			values []string
			kind   internal.EntryKind
			label  string
			emoji  string
		}{
			{rec.WorkEntries, internal.KindWork, workLabel, internal.EmojiWork},
			{rec.BreakTimeEntries, internal.KindBreakTime, breakTimeLabel, internal.EmojiBreakTime},
			{rec.TimeOffEntries, internal.KindTimeOff, timeOffLabel, internal.EmojiTimeOff},
		}
		for _, list := range lists {
			for _, raw := range list.values {
				entry := internal.DeserializeEntry(raw)
				if entry == nil {
					return nil, fmt.Errorf("%w (entry: %s, record: %s)", internal.ErrMalformedEntry, raw, key)
				}
				if entry.End == "" && isToday {
					// For real-time updates on open views
					entry.End = timeutil.NowHHMM(offset)
				}
				rawEntries = append(rawEntries, internal.ReportTimeEntry{
					Type:        list.kind,
					TypeLabel:   list.label,
					TypeEmoji:   list.emoji,
					Start:       entry.Start,
					End:         entry.End,
					Minutes:     timeutil.MinutesBetween(entry.Start, entry.End),
					ProjectCode: entry.ProjectCode,
				})
			}
		}
	}
	sortByStart(rawEntries)

	// Merge pass: when a break or time-off starts inside an ongoing work
	// interval, the work entry is truncated at the interruption and a
	// continuation entry is synthesized after it.
	entries := make([]internal.ReportTimeEntry, 0, len(rawEntries))
	ongoingWork := -1
	ongoingWorkEnd := ""
	haveOngoingEnd := false
	for i := range rawEntries {
		e := rawEntries[i]
		if !haveOngoingEnd {
			entries = append(entries, e)
			if e.Type == internal.KindWork {
				ongoingWork = len(entries) - 1
				ongoingWorkEnd = e.End
				haveOngoingEnd = true
			}
			continue
		}
		if ongoingWork < 0 {
			continue
		}
		switch {
		case e.Type != internal.KindWork && timeutil.TimeToNumber(ongoingWorkEnd) > timeutil.TimeToNumber(e.Start):
			entries[ongoingWork].End = e.Start
			entries[ongoingWork].Minutes = timeutil.MinutesBetween(entries[ongoingWork].Start, e.Start)
			entries = append(entries, e)
			if e.End != ongoingWorkEnd {
				continuation := internal.ReportTimeEntry{
					Type:        internal.KindWork,
					TypeLabel:   workLabel,
					TypeEmoji:   internal.EmojiWork,
					Start:       e.End,
					End:         ongoingWorkEnd,
					Minutes:     timeutil.MinutesBetween(e.End, ongoingWorkEnd),
					ProjectCode: entries[ongoingWork].ProjectCode,
				}
				entries = append(entries, continuation)
				ongoingWork = len(entries) - 1
			}
		case e.Type == internal.KindWork:
			entries = append(entries, e)
			ongoingWork = len(entries) - 1
			ongoingWorkEnd = e.End
		default:
			ongoingWork = -1
			haveOngoingEnd = false
			entries = append(entries, e)
		}
	}

	if lifelog != nil {
		for _, raw := range lifelog.Logs {
			entry := internal.DeserializeEntry(raw)
			if entry == nil {
				return nil, fmt.Errorf("%w (entry: %s, record: %s)", internal.ErrMalformedEntry, raw, lifelog.UserAndDate)
			}
			if entry.End == "" && isToday {
				entry.End = timeutil.NowHHMM(offset)
			}
			entries = append(entries, internal.ReportTimeEntry{
				Type:      internal.KindLifelog,
				TypeLabel: lifelogLabel,
				TypeEmoji: internal.EmojiLifelog,
				Start:     entry.Start,
				End:       entry.End,
				Minutes:   timeutil.MinutesBetween(entry.Start, entry.End),
				WhatToDo:  entry.WhatToDo,
			})
		}
	}
	sortByStart(entries)

	projectMinutes := map[string]int{}
	projectOrder := []string{}
	lifelogMinutes := map[string]int{}
	lifelogOrder := []string{}
	for _, e := range entries {
		if e.Type == internal.KindWork && e.ProjectCode != "" {
			if _, ok := projectMinutes[e.ProjectCode]; !ok {
				projectOrder = append(projectOrder, e.ProjectCode)
			}
			projectMinutes[e.ProjectCode] += e.Minutes
		}
		if e.Type == internal.KindLifelog && e.WhatToDo != "" {
			if _, ok := lifelogMinutes[e.WhatToDo]; !ok {
				lifelogOrder = append(lifelogOrder, e.WhatToDo)
			}
			lifelogMinutes[e.WhatToDo] += e.Minutes
		}
	}

	var overtimeWorkMinutes, nightShiftWorkMinutes *int
	workMinutes := 0
	breakTimeMinutes := 0
	timeOffMinutes := 0
	for _, e := range entries {
		if e.End == "" {
			continue
		}
		minutes := timeutil.MinutesBetween(e.Start, e.End)
		switch e.Type {
		case internal.KindWork:
			workMinutes += minutes
			if country == internal.CountryJapan {
				if timeutil.TimeToNumber(e.End) > 2200 {
					nightShiftWorkMinutes = addMinutes(nightShiftWorkMinutes, timeutil.MinutesBetween("22:00", e.End))
				}
				if timeutil.TimeToNumber(e.Start) < 500 {
					now := timeutil.NowHHMM(offset)
					end := "05:00"
					if timeutil.TimeToNumber(now) < timeutil.TimeToNumber("05:00") {
						end = now
					}
					if timeutil.TimeToNumber(e.End) <= timeutil.TimeToNumber(end) {
						end = e.End
					}
					nightShiftWorkMinutes = addMinutes(nightShiftWorkMinutes, timeutil.MinutesBetween(e.Start, end))
				}
			}
		case internal.KindBreakTime:
			breakTimeMinutes += minutes
		case internal.KindTimeOff:
			timeOffMinutes += minutes
		}
	}
	if workMinutes > regularWorkdayMinutes {
		overtimeWorkMinutes = addMinutes(overtimeWorkMinutes, workMinutes-regularWorkdayMinutes)
	}

	if key == "" {
		key = lifelog.UserAndDate
	}
	yyyymmdd := key[strings.LastIndex(key, "-")+1:]
	date := timeutil.ToDateFormat(offset, yyyymmdd)

	var projects []internal.ProjectWork
	for _, code := range projectOrder {
		projects = append(projects, internal.ProjectWork{
			ProjectCode: code,
			WorkMinutes: projectMinutes[code],
			WorkHours:   floorHours(projectMinutes[code]),
		})
	}
	sortProjectsByMinutes(projects)

	var lifelogs []internal.LifelogSummary
	for _, what := range lifelogOrder {
		lifelogs = append(lifelogs, internal.LifelogSummary{
			WhatToDo:     what,
			SpentMinutes: lifelogMinutes[what],
			SpentHours:   floorHours(lifelogMinutes[what]),
		})
	}
	sortLifelogsByMinutes(lifelogs)

	report := &internal.DailyReport{
		Date:             date,
		WorkMinutes:      workMinutes,
		BreakTimeMinutes: breakTimeMinutes,
		TimeOffMinutes:   timeOffMinutes,
		WorkHours:        floorHours(workMinutes),
		BreakTimeHours:   floorHours(breakTimeMinutes),
		TimeOffHours:     floorHours(timeOffMinutes),
		Entries:          entries,
		Projects:         projects,
		Lifelogs:         lifelogs,
	}
	if overtimeWorkMinutes != nil {
		report.OvertimeWorkMinutes = overtimeWorkMinutes
		hours := floorHours(*overtimeWorkMinutes)
		report.OvertimeWorkHours = &hours
	}
	if nightShiftWorkMinutes != nil {
		report.NightShiftWorkMinutes = nightShiftWorkMinutes
		hours := floorHours(*nightShiftWorkMinutes)
		report.NightShiftWorkHours = &hours
	}
	return report, nil
}

func addMinutes(total *int, minutes int) *int {
	if total == nil {
		total = new(int)
	}
	*total += minutes
	return total
}

func sortByStart(entries []internal.ReportTimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return timeutil.TimeToNumber(entries[i].Start) < timeutil.TimeToNumber(entries[j].Start)
	})
}

func sortProjectsByMinutes(projects []internal.ProjectWork) {
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].WorkMinutes > projects[j].WorkMinutes
	})
}

func sortLifelogsByMinutes(lifelogs []internal.LifelogSummary) {
	sort.SliceStable(lifelogs, func(i, j int) bool {
		return lifelogs[i].SpentMinutes > lifelogs[j].SpentMinutes
	})
}

package service

import (
	"math"
	"strings"

	"github.com/yourname/timesheet/internal"
)

// MonthlyReportArgs carries the inputs for one user's monthly report.
// Month is "YYYY/MM"; Entries and Lifelogs are the user's records for the
// month; Holidays is the full holiday list for the user's country and year.
type MonthlyReportArgs struct {
	UserID   string
	Email    string
	Month    string
	Entries  []internal.DayRecord
	Lifelogs []internal.LifelogRecord
	Offset   int
	Language string
	Country  string
	Holidays []string
}

// GenerateMonthlyReport folds one month of daily reports. Totals use the
// same one-decimal floor conversion as daily figures, and per-project and
// per-activity breakdowns merge across days by key.
func GenerateMonthlyReport(args MonthlyReportArgs) (*internal.MonthlyReport, error) {
	yyyymm := strings.ReplaceAll(args.Month, "/", "")
	numOfHolidays := 0
	for _, h := range args.Holidays {
		if strings.HasPrefix(h, yyyymm) {
			numOfHolidays++
		}
	}

	report := &internal.MonthlyReport{
		Month:        args.Month,
		UserID:       args.UserID,
		UserEmail:    args.Email,
		Holidays:     numOfHolidays,
		DailyReports: []internal.DailyReport{},
	}

	lifelogsByKey := make(map[string]*internal.LifelogRecord, len(args.Lifelogs))
	for i := range args.Lifelogs {
		lifelogsByKey[args.Lifelogs[i].UserAndDate] = &args.Lifelogs[i]
	}

	for i := range args.Entries {
		entry := &args.Entries[i]
		daily, err := GenerateDailyReport(entry, lifelogsByKey[entry.UserAndDate], args.Offset, args.Country, args.Language)
		if err != nil {
			return nil, err
		}
		if daily == nil {
			continue
		}
		if daily.WorkMinutes > 0 {
			report.NumOfWorkingDays++
		}
		report.DailyReports = append(report.DailyReports, *daily)
		report.WorkMinutes += daily.WorkMinutes
		if daily.OvertimeWorkMinutes != nil && *daily.OvertimeWorkMinutes != 0 {
			report.OvertimeWorkMinutes = addMinutes(report.OvertimeWorkMinutes, *daily.OvertimeWorkMinutes)
		}
		if daily.NightShiftWorkMinutes != nil && *daily.NightShiftWorkMinutes != 0 {
			report.NightShiftWorkMinutes = addMinutes(report.NightShiftWorkMinutes, *daily.NightShiftWorkMinutes)
		}
		report.BreakTimeMinutes += daily.BreakTimeMinutes
		report.TimeOffMinutes += daily.TimeOffMinutes
		report.EntryMinutes = report.WorkMinutes + report.BreakTimeMinutes + report.TimeOffMinutes

		for _, d := range daily.Projects {
			merged := false
			for j := range report.Projects {
				if report.Projects[j].ProjectCode == d.ProjectCode {
					report.Projects[j].WorkMinutes += d.WorkMinutes
					merged = true
					break
				}
			}
			if !merged {
				report.Projects = append(report.Projects, d)
			}
		}
		for _, d := range daily.Lifelogs {
			merged := false
			for j := range report.Lifelogs {
				if report.Lifelogs[j].WhatToDo == d.WhatToDo {
					report.Lifelogs[j].SpentMinutes += d.SpentMinutes
					merged = true
					break
				}
			}
			if !merged {
				report.Lifelogs = append(report.Lifelogs, d)
			}
		}
	}

	report.WorkHours = floorHours(report.WorkMinutes)
	if report.OvertimeWorkMinutes != nil {
		hours := floorHours(*report.OvertimeWorkMinutes)
		report.OvertimeWorkHours = &hours
	}
	if report.NightShiftWorkMinutes != nil {
		hours := floorHours(*report.NightShiftWorkMinutes)
		report.NightShiftWorkHours = &hours
	}
	report.BreakTimeHours = floorHours(report.BreakTimeMinutes)
	report.TimeOffHours = floorHours(report.TimeOffMinutes)
	report.EntryHours = (math.Floor(float64(report.WorkMinutes)/6) +
		math.Floor(float64(report.BreakTimeMinutes)/6) +
		math.Floor(float64(report.TimeOffMinutes)/6)) / 10

	for i := range report.Projects {
		report.Projects[i].WorkHours = floorHours(report.Projects[i].WorkMinutes)
	}
	sortProjectsByMinutes(report.Projects)
	for i := range report.Lifelogs {
		report.Lifelogs[i].SpentHours = floorHours(report.Lifelogs[i].SpentMinutes)
	}
	sortLifelogsByMinutes(report.Lifelogs)

	return report, nil
}

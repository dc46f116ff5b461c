package service

import (
	"context"
	"sort"
	"strings"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/storage"
	"github.com/yourname/timesheet/internal/timeutil"
)

// FormatMonth renders a YYYYMM string as "YYYY/MM".
func FormatMonth(yyyymm string) string {
	if len(yyyymm) != 6 {
		return yyyymm
	}
	return yyyymm[:4] + "/" + yyyymm[4:]
}

// MonthlyReportForUser assembles the caller's report for one YYYYMM month.
// Lifelogs are folded in only when the caller's app mode enables them and
// includeLifelogs is set.
func MonthlyReportForUser(ctx context.Context, repos *storage.Repositories, scope *RequestScope, yyyymm string, includeLifelogs bool) (*internal.MonthlyReport, error) {
	prefix := EntryKey(scope.User.ID, yyyymm)
	entries, err := repos.TimeEntries.QueryDayRecordsByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var lifelogs []internal.LifelogRecord
	if includeLifelogs && scope.Settings.AppMode == internal.AppModeWorkAndLifelogs {
		lifelogs, err = repos.Lifelogs.QueryLifelogRecordsByPrefix(ctx, prefix)
		if err != nil {
			return nil, err
		}
	}
	holidays, err := scope.Holidays(ctx, yyyymm[:4])
	if err != nil {
		return nil, err
	}
	return GenerateMonthlyReport(MonthlyReportArgs{
		UserID:   scope.User.ID,
		Email:    scope.User.Email,
		Month:    FormatMonth(yyyymm),
		Entries:  entries,
		Lifelogs: lifelogs,
		Offset:   scope.Offset,
		Language: scope.Language,
		Country:  scope.Country,
		Holidays: holidays,
	})
}

// DailyReportForUser builds a single day's report plus its labor-law
// warnings in the caller's language.
func DailyReportForUser(ctx context.Context, repos *storage.Repositories, scope *RequestScope, yyyymmdd string) (*internal.DailyReport, []string, error) {
	key := EntryKey(scope.User.ID, yyyymmdd)
	rec, err := repos.TimeEntries.GetDayRecord(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	var lifelog *internal.LifelogRecord
	if scope.Settings.AppMode == internal.AppModeWorkAndLifelogs {
		lifelog, err = repos.Lifelogs.GetLifelogRecord(ctx, key)
		if err != nil {
			return nil, nil, err
		}
	}
	report, err := GenerateDailyReport(rec, lifelog, scope.Offset, scope.Country, scope.Language)
	if err != nil {
		return nil, nil, err
	}
	if report == nil {
		return nil, nil, internal.ErrNotFound
	}
	warnings := NewLaborLawValidator(scope.Country).ValidateDailyReport(report, scope.Language)
	return report, warnings, nil
}

// AllMembersMonthlyReport builds every member's monthly report for admins.
// Members are discovered from the month's stored records; each member's own
// settings decide their offset and country, while labels follow the
// requesting admin's language.
func AllMembersMonthlyReport(ctx context.Context, repos *storage.Repositories, scope *RequestScope, yyyymm string) (*internal.AdminMonthlyReport, error) {
	records, err := repos.TimeEntries.QueryDayRecordsByContains(ctx, "-"+yyyymm)
	if err != nil {
		return nil, err
	}

	byUser := map[string][]internal.DayRecord{}
	var users []string
	for _, rec := range records {
		userID := rec.UserAndDate[:strings.LastIndex(rec.UserAndDate, "-")]
		if _, ok := byUser[userID]; !ok {
			users = append(users, userID)
		}
		byUser[userID] = append(byUser[userID], rec)
	}
	sort.Strings(users)

	holidayCache := map[string][]string{}
	report := &internal.AdminMonthlyReport{
		Month:       FormatMonth(yyyymm),
		Reports:     []internal.MonthlyReport{},
		GeneratedAt: timeutil.ToDateFormat(scope.Offset, "") + " " + timeutil.NowHHMM(scope.Offset),
	}
	for _, userID := range users {
		offset := 0
		country := scope.Country
		email := ""
		settings, err := repos.UserSettings.GetUserSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		if settings != nil {
			offset = settings.Offset
			if settings.CountryID != "" {
				country = settings.CountryID
			}
		}
		if userID == scope.User.ID {
			email = scope.User.Email
			offset = scope.Offset
		}

		var holidays []string
		if country != "" {
			cacheKey := country + "-" + yyyymm[:4]
			if cached, ok := holidayCache[cacheKey]; ok {
				holidays = cached
			} else {
				set, err := repos.Holidays.GetHolidaySet(ctx, country, yyyymm[:4])
				if err != nil {
					return nil, err
				}
				if set != nil {
					holidays = set.Holidays
				}
				holidayCache[cacheKey] = holidays
			}
		}

		userReport, err := GenerateMonthlyReport(MonthlyReportArgs{
			UserID:   userID,
			Email:    email,
			Month:    FormatMonth(yyyymm),
			Entries:  byUser[userID],
			Offset:   offset,
			Language: scope.Language,
			Country:  country,
			Holidays: holidays,
		})
		if err != nil {
			return nil, err
		}
		report.Reports = append(report.Reports, *userReport)
	}
	return report, nil
}

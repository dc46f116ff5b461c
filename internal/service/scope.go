package service

import (
	"context"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/storage"
	"github.com/yourname/timesheet/internal/timeutil"
)

// RequestScope carries the per-request user context every operation needs:
// resolved settings, language, country, offset, and a populate-once holiday
// cache so one request never fetches the same holiday set twice.
type RequestScope struct {
	User     *internal.User
	Settings *internal.UserSettings
	Language string
	Country  string
	Offset   int

	holidayRepo storage.HolidayRepository
	holidays    map[string][]string
}

// NewRequestScope resolves the caller's settings and locale defaults. The
// stored settings win; absent those, language and country fall back to the
// user's locale and then to the organization-wide configuration.
func NewRequestScope(ctx context.Context, repos *storage.Repositories, user *internal.User, defaultLanguage, defaultCountry string) (*RequestScope, error) {
	settings, err := GetSettings(ctx, repos, user, defaultLanguage, defaultCountry)
	if err != nil {
		return nil, err
	}
	country := settings.CountryID
	if country == "" {
		country, err = OrganizationCountry(ctx, repos.Policies)
		if err != nil {
			return nil, err
		}
	}
	return &RequestScope{
		User:        user,
		Settings:    settings,
		Language:    settings.Language,
		Country:     country,
		Offset:      settings.Offset,
		holidayRepo: repos.Holidays,
		holidays:    map[string][]string{},
	}, nil
}

// Today returns the current date as YYYYMMDD in the user's offset.
func (s *RequestScope) Today() string {
	return timeutil.TodayYYYYMMDD(s.Offset)
}

// Holidays returns the holiday list for the scope's country and the given
// year, fetching it at most once per scope. No country means no holidays.
func (s *RequestScope) Holidays(ctx context.Context, year string) ([]string, error) {
	if s.Country == "" {
		return nil, nil
	}
	if days, ok := s.holidays[year]; ok {
		return days, nil
	}
	set, err := s.holidayRepo.GetHolidaySet(ctx, s.Country, year)
	if err != nil {
		return nil, err
	}
	var days []string
	if set != nil {
		days = set.Holidays
	}
	s.holidays[year] = days
	return days, nil
}

package service

import (
	"context"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/i18n"
	"github.com/yourname/timesheet/internal/storage"
)

// GetSettings loads the caller's stored settings, deriving defaults from
// the user's locale when nothing is stored. The UTC offset always comes
// from the identity provider, never from the stored row.
func GetSettings(ctx context.Context, repos *storage.Repositories, user *internal.User, defaultLanguage, defaultCountry string) (*internal.UserSettings, error) {
	settings, err := repos.UserSettings.GetUserSettings(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		language, country := i18n.SplitLocale(user.Locale)
		if language == "" {
			language = defaultLanguage
		}
		if country == "" {
			country = defaultCountry
		}
		settings = &internal.UserSettings{
			User:      user.ID,
			Language:  language,
			CountryID: country,
			AppMode:   internal.AppModeWork,
		}
	}
	settings.Offset = user.Offset
	return settings, nil
}

// SaveSettings persists the caller's settings. The offset is cached from
// the identity provider so reporting can run without a live identity call.
func SaveSettings(ctx context.Context, repo storage.UserSettingsRepository, user *internal.User, settings *internal.UserSettings) error {
	settings.User = user.ID
	settings.Offset = user.Offset
	if settings.AppMode == "" {
		settings.AppMode = internal.AppModeWork
	}
	return repo.PutUserSettings(ctx, settings)
}

// IsManualEntryPermitted reports whether members may type entries in by
// hand. Absence of the policy means permitted.
func IsManualEntryPermitted(ctx context.Context, repo storage.PolicyRepository) (bool, error) {
	value, err := repo.GetPolicy(ctx, internal.PolicyKeyManualEntryPermitted)
	if err != nil {
		return false, err
	}
	return value != internal.PolicyValueRestricted, nil
}

// OrganizationCountry returns the org-wide country policy, or "" when unset.
func OrganizationCountry(ctx context.Context, repo storage.PolicyRepository) (string, error) {
	return repo.GetPolicy(ctx, internal.PolicyKeyCountry)
}

// CanAccessAdminFeature implements the admin predicate: an empty admin list
// grants everyone access, otherwise membership decides.
func CanAccessAdminFeature(ctx context.Context, repo storage.AdminUserRepository, userID string) (bool, error) {
	any, err := repo.AnyAdminUsers(ctx)
	if err != nil {
		return false, err
	}
	if !any {
		return true, nil
	}
	return repo.IsAdminUser(ctx, userID)
}

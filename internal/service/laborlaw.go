package service

import (
	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/i18n"
)

// LaborLawValidator produces advisory compliance warnings for a country's
// labor regulations. Warnings never block saving an entry.
type LaborLawValidator struct {
	country string
}

func NewLaborLawValidator(country string) *LaborLawValidator {
	return &LaborLawValidator{country: country}
}

// ValidateDailyReport checks the day's break time against the worked hours.
// The Japanese thresholds are mutually exclusive: the 8-hour rule wins when
// both would apply.
func (v *LaborLawValidator) ValidateDailyReport(report *internal.DailyReport, language string) []string {
	var warnings []string
	if v.country == internal.CountryJapan {
		if report.WorkMinutes > 8*60 && report.BreakTimeMinutes < 60 {
			warnings = append(warnings, i18n.Translate(i18n.LaborLawOfJapanBreakTimeFor8WorkHours, language))
		} else if report.WorkMinutes > 6*60 && report.BreakTimeMinutes < 45 {
			warnings = append(warnings, i18n.Translate(i18n.LaborLawOfJapanBreakTimeFor6WorkHours, language))
		}
	}
	return warnings
}

// ValidateMonthlyReport has no rules yet for any supported country.
func (v *LaborLawValidator) ValidateMonthlyReport(report *internal.MonthlyReport, language string) []string {
	return nil
}

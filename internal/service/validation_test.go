package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/i18n"
	"github.com/yourname/timesheet/internal/storage"
)

func dayRecordWithWork(entries ...string) *internal.DayRecord {
	return &internal.DayRecord{UserAndDate: "u1-20250110", WorkEntries: entries}
}

func TestValidateTimeEntryRejectsInvertedBounds(t *testing.T) {
	errs := ValidateTimeEntry(internal.KindWork, "18:00", "09:00", nil, nil, "en")
	require.Len(t, errs, 1)
	assert.Equal(t, i18n.InvalidStartAndEnd, errs[FieldEnd])

	errs = ValidateTimeEntry(internal.KindWork, "09:00", "09:00", nil, nil, "en")
	require.Len(t, errs, 1)
	assert.Equal(t, i18n.InvalidStartAndEnd, errs[FieldEnd])
}

func TestValidateTimeEntryConflictBoundaries(t *testing.T) {
	rec := dayRecordWithWork(entryJSON("09:00", "12:00"))

	// start inside the stored interval
	errs := ValidateTimeEntry(internal.KindWork, "10:00", "13:00", nil, rec, "en")
	assert.Equal(t, i18n.ConflictErrorMessage, errs[FieldStart])

	// end inside the stored interval
	errs = ValidateTimeEntry(internal.KindWork, "08:00", "10:00", nil, rec, "en")
	assert.Equal(t, i18n.ConflictErrorMessage, errs[FieldEnd])
	assert.Empty(t, errs[FieldStart])

	// start exactly at the stored end is allowed
	errs = ValidateTimeEntry(internal.KindWork, "12:00", "13:00", nil, rec, "en")
	assert.Empty(t, errs)

	// end exactly at the stored start is allowed
	errs = ValidateTimeEntry(internal.KindWork, "08:00", "09:00", nil, rec, "en")
	assert.Empty(t, errs)

	// start exactly at the stored start conflicts
	errs = ValidateTimeEntry(internal.KindWork, "09:00", "09:30", nil, rec, "en")
	assert.Equal(t, i18n.ConflictErrorMessage, errs[FieldStart])

	// end exactly at the stored end conflicts
	errs = ValidateTimeEntry(internal.KindWork, "08:00", "12:00", nil, rec, "en")
	assert.Equal(t, i18n.ConflictErrorMessage, errs[FieldEnd])
}

func TestValidateTimeEntryOpenEndSkipsConflictScan(t *testing.T) {
	rec := dayRecordWithWork(entryJSON("09:00", "12:00"))
	errs := ValidateTimeEntry(internal.KindWork, "10:00", "", nil, rec, "en")
	assert.Empty(t, errs)
}

func TestValidateTimeEntryKindsDoNotCrossCheck(t *testing.T) {
	rec := dayRecordWithWork(entryJSON("09:00", "12:00"))
	errs := ValidateTimeEntry(internal.KindBreakTime, "10:00", "11:00", nil, rec, "en")
	assert.Empty(t, errs)
}

func TestValidateTimeEntryExcludesEditTarget(t *testing.T) {
	rec := dayRecordWithWork(entryJSON("09:00", "12:00"))
	target := &internal.Interval{Start: "09:00", End: "12:00", Kind: internal.KindWork}

	// Rescheduling the same entry overlaps only itself
	errs := ValidateTimeEntry(internal.KindWork, "09:30", "12:30", target, rec, "en")
	assert.Empty(t, errs)
}

func TestValidateTimeEntryEditTargetMatchesLegacyFormat(t *testing.T) {
	rec := dayRecordWithWork("09:00,12:00")
	target := &internal.Interval{Start: "09:00", End: "12:00", Kind: internal.KindWork}
	errs := ValidateTimeEntry(internal.KindWork, "09:30", "12:30", target, rec, "en")
	assert.Empty(t, errs)
}

func TestValidateTimeEntryFirstConflictStops(t *testing.T) {
	rec := dayRecordWithWork(entryJSON("09:00", "10:00"), entryJSON("11:00", "12:00"))
	errs := ValidateTimeEntry(internal.KindWork, "09:30", "11:30", nil, rec, "en")
	require.Len(t, errs, 1)
	assert.Equal(t, i18n.ConflictErrorMessage, errs[FieldStart])
}

func TestValidateLifelog(t *testing.T) {
	assert.Empty(t, ValidateLifelog("09:00", "10:00", "reading", "en"))
	assert.Empty(t, ValidateLifelog("09:00", "", "reading", "en"))

	errs := ValidateLifelog("10:00", "09:00", "reading", "en")
	assert.Equal(t, i18n.InvalidStartAndEnd, errs[FieldEnd])

	long := make([]rune, 51)
	for i := range long {
		long[i] = 'x'
	}
	errs = ValidateLifelog("09:00", "10:00", string(long), "en")
	assert.Equal(t, i18n.TooLongInput, errs[FieldWhatToDo])
}

func TestValidateProject(t *testing.T) {
	ctx := context.Background()
	repos, err := storage.NewFileRepositories(filepath.Join(t.TempDir(), "data.json"), &internal.NopLogger{})
	require.NoError(t, err)
	defer repos.Close()
	require.NoError(t, repos.Projects.PutProject(ctx, &internal.Project{Code: "alpha", Name: "Alpha", IsActive: true}))

	errs, err := ValidateProject(ctx, repos.Projects, "beta", "Beta", "", true, "en")
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = ValidateProject(ctx, repos.Projects, "alpha", "Alpha", "", true, "en")
	require.NoError(t, err)
	assert.Equal(t, i18n.CodeAlreadyExists, errs[FieldProjectCode])

	// Editing an existing project does not trip the duplicate check
	errs, err = ValidateProject(ctx, repos.Projects, "alpha", "Alpha renamed", "", false, "en")
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = ValidateProject(ctx, repos.Projects, "bad code!", "Name", "", true, "en")
	require.NoError(t, err)
	assert.Equal(t, i18n.ProjectCodeFormat, errs[FieldProjectCode])
}

func TestLaborLawValidatorJapan(t *testing.T) {
	v := NewLaborLawValidator(internal.CountryJapan)

	// 6-hour rule
	warnings := v.ValidateDailyReport(&internal.DailyReport{WorkMinutes: 361, BreakTimeMinutes: 44}, "en")
	require.Len(t, warnings, 1)
	assert.Equal(t, i18n.LaborLawOfJapanBreakTimeFor6WorkHours, warnings[0])

	// 8-hour rule wins over the 6-hour rule
	warnings = v.ValidateDailyReport(&internal.DailyReport{WorkMinutes: 481, BreakTimeMinutes: 59}, "en")
	require.Len(t, warnings, 1)
	assert.Equal(t, i18n.LaborLawOfJapanBreakTimeFor8WorkHours, warnings[0])

	// Enough break, no warnings
	assert.Empty(t, v.ValidateDailyReport(&internal.DailyReport{WorkMinutes: 481, BreakTimeMinutes: 60}, "en"))
	assert.Empty(t, v.ValidateDailyReport(&internal.DailyReport{WorkMinutes: 360, BreakTimeMinutes: 0}, "en"))
}

func TestLaborLawValidatorOtherCountry(t *testing.T) {
	v := NewLaborLawValidator(internal.CountryUnitedStates)
	assert.Empty(t, v.ValidateDailyReport(&internal.DailyReport{WorkMinutes: 600, BreakTimeMinutes: 0}, "en"))

	vJP := NewLaborLawValidator(internal.CountryJapan)
	assert.Nil(t, vJP.ValidateMonthlyReport(&internal.MonthlyReport{}, "en"))
}

package service

import (
	"context"
	"regexp"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/i18n"
	"github.com/yourname/timesheet/internal/storage"
	"github.com/yourname/timesheet/internal/timeutil"
)

// Field keys used in validation error maps.
const (
	FieldStart              = "start"
	FieldEnd                = "end"
	FieldWhatToDo           = "what_to_do"
	FieldProjectCode        = "project_code"
	FieldProjectName        = "project_name"
	FieldProjectDescription = "project_description"
)

// ValidateTimeEntry checks a submitted interval against the already stored
// entries of the same kind. The first conflict stops the scan; an entry
// being edited is excluded from it. An empty map means the submission is
// acceptable.
func ValidateTimeEntry(kind internal.EntryKind, start, end string, editTarget *internal.Interval, rec *internal.DayRecord, language string) map[string]string {
	errors := map[string]string{}
	startNum := timeutil.TimeToNumber(start)
	hasEnd := end != ""
	endNum := 0
	if hasEnd {
		endNum = timeutil.TimeToNumber(end)
	}
	if hasEnd && startNum >= endNum {
		errors[FieldEnd] = i18n.Translate(i18n.InvalidStartAndEnd, language)
		return errors
	}
	if !hasEnd || rec == nil {
		return errors
	}

	editKey := ""
	if editTarget != nil {
		editKey = internal.ToComparable(editTarget)
	}
	var stored []string
	switch kind {
	case internal.KindWork:
		stored = rec.WorkEntries
	case internal.KindBreakTime:
		stored = rec.BreakTimeEntries
	case internal.KindTimeOff:
		stored = rec.TimeOffEntries
	}
	for _, raw := range stored {
		existing := internal.DeserializeEntry(raw)
		if existing == nil {
			continue
		}
		if editKey != "" {
			cp := *existing
			cp.Kind = kind
			if internal.ToComparable(&cp) == editKey {
				continue
			}
		}
		if conflict := detectConflict(existing, startNum, endNum, language); len(conflict) > 0 {
			return conflict
		}
	}
	return errors
}

func detectConflict(existing *internal.Interval, start, end int, language string) map[string]string {
	errors := map[string]string{}
	s := timeutil.TimeToNumber(existing.Start)
	e := timeutil.TimeToNumber(existing.End)
	if start >= s && start < e {
		errors[FieldStart] = i18n.Translate(i18n.ConflictErrorMessage, language)
	}
	if end > s && end <= e {
		errors[FieldEnd] = i18n.Translate(i18n.ConflictErrorMessage, language)
	}
	return errors
}

// ValidateLifelog checks a submitted lifelog interval. Lifelogs may overlap
// anything, so only the bounds and the activity length are verified.
func ValidateLifelog(start, end, whatToDo, language string) map[string]string {
	errors := map[string]string{}
	startNum := timeutil.TimeToNumber(start)
	if end != "" && startNum >= timeutil.TimeToNumber(end) {
		errors[FieldEnd] = i18n.Translate(i18n.InvalidStartAndEnd, language)
		return errors
	}
	if len([]rune(whatToDo)) > 50 {
		errors[FieldWhatToDo] = i18n.Translate(i18n.TooLongInput, language)
	}
	return errors
}

var projectCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)

// ValidateProject checks a project submission. isNew guards the duplicate
// code check so that edits of an existing project pass.
func ValidateProject(ctx context.Context, repo storage.ProjectRepository, code, name, description string, isNew bool, language string) (map[string]string, error) {
	errors := map[string]string{}
	if len(code) > 20 {
		errors[FieldProjectCode] = i18n.Translate(i18n.TooLongInput, language)
	} else if !projectCodePattern.MatchString(code) {
		errors[FieldProjectCode] = i18n.Translate(i18n.ProjectCodeFormat, language)
	} else if isNew && code != "" {
		existing, err := repo.GetProject(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			errors[FieldProjectCode] = i18n.Translate(i18n.CodeAlreadyExists, language)
		}
	}
	if len([]rune(name)) > 50 {
		errors[FieldProjectName] = i18n.Translate(i18n.TooLongInput, language)
	}
	if len([]rune(description)) > 500 {
		errors[FieldProjectDescription] = i18n.Translate(i18n.TooLongInput, language)
	}
	return errors, nil
}

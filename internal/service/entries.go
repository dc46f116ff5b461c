package service

import (
	"context"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/storage"
	"github.com/yourname/timesheet/internal/timeutil"
)

// EntryKey builds the "{user_id}-{YYYYMMDD}" datastore key.
func EntryKey(userID, date string) string {
	return userID + "-" + date
}

func listFor(rec *internal.DayRecord, kind internal.EntryKind) *[]string {
	switch kind {
	case internal.KindBreakTime:
		return &rec.BreakTimeEntries
	case internal.KindTimeOff:
		return &rec.TimeOffEntries
	default:
		return &rec.WorkEntries
	}
}

// matchIndex finds the stored entry equal to target by comparable key, or -1.
func matchIndex(list []string, kind internal.EntryKind, target *internal.Interval) int {
	cp := *target
	cp.Kind = kind
	key := internal.ToComparable(&cp)
	for i, raw := range list {
		stored := internal.DeserializeEntry(raw)
		if stored == nil {
			continue
		}
		stored.Kind = kind
		if internal.ToComparable(stored) == key {
			return i
		}
	}
	return -1
}

// AddEntry validates and appends a new interval to the given day. An empty
// date means "today" in the caller's offset. The write is a plain
// read-modify-write; concurrent writers follow last-write-wins.
func AddEntry(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope, kind internal.EntryKind, date string, entry internal.Interval) (*internal.DayRecord, error) {
	if date == "" {
		date = scope.Today()
	}
	key := EntryKey(scope.User.ID, date)
	rec, err := repo.GetDayRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &internal.DayRecord{UserAndDate: key}
	}
	if errs := ValidateTimeEntry(kind, entry.Start, entry.End, nil, rec, scope.Language); len(errs) > 0 {
		return nil, internal.NewValidationError(errs)
	}
	list := listFor(rec, kind)
	*list = append(*list, internal.SerializeEntry(entry))
	if err := repo.PutDayRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// EditEntry replaces a stored interval, possibly moving it between kinds.
// The original is matched by comparable key and excluded from conflict
// detection when the kind stays the same.
func EditEntry(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope, date string, fromKind internal.EntryKind, original internal.Interval, toKind internal.EntryKind, updated internal.Interval) (*internal.DayRecord, error) {
	if date == "" {
		date = scope.Today()
	}
	key := EntryKey(scope.User.ID, date)
	rec, err := repo.GetDayRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.ErrNotFound
	}
	from := listFor(rec, fromKind)
	idx := matchIndex(*from, fromKind, &original)
	if idx < 0 {
		return nil, internal.ErrNotFound
	}
	var editTarget *internal.Interval
	if fromKind == toKind {
		cp := original
		cp.Kind = toKind
		editTarget = &cp
	}
	if errs := ValidateTimeEntry(toKind, updated.Start, updated.End, editTarget, rec, scope.Language); len(errs) > 0 {
		return nil, internal.NewValidationError(errs)
	}
	*from = append((*from)[:idx], (*from)[idx+1:]...)
	to := listFor(rec, toKind)
	*to = append(*to, internal.SerializeEntry(updated))
	if err := repo.PutDayRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteEntry removes a stored interval matched by comparable key.
func DeleteEntry(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope, date string, kind internal.EntryKind, target internal.Interval) (*internal.DayRecord, error) {
	if date == "" {
		date = scope.Today()
	}
	key := EntryKey(scope.User.ID, date)
	rec, err := repo.GetDayRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.ErrNotFound
	}
	list := listFor(rec, kind)
	idx := matchIndex(*list, kind, &target)
	if idx < 0 {
		return nil, internal.ErrNotFound
	}
	*list = append((*list)[:idx], (*list)[idx+1:]...)
	if err := repo.PutDayRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// StartWork opens a work interval for today at the current time. More than
// one interval may be open at once; finishing closes the most recent.
func StartWork(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope, projectCode string) (*internal.DayRecord, error) {
	return startEntry(ctx, repo, scope, internal.KindWork, projectCode)
}

func FinishWork(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope) (*internal.DayRecord, error) {
	return finishEntry(ctx, repo, scope, internal.KindWork)
}

func StartBreakTime(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope) (*internal.DayRecord, error) {
	return startEntry(ctx, repo, scope, internal.KindBreakTime)
}

func FinishBreakTime(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope) (*internal.DayRecord, error) {
	return finishEntry(ctx, repo, scope, internal.KindBreakTime)
}

func StartTimeOff(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope) (*internal.DayRecord, error) {
	return startEntry(ctx, repo, scope, internal.KindTimeOff)
}

func FinishTimeOff(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope) (*internal.DayRecord, error) {
	return finishEntry(ctx, repo, scope, internal.KindTimeOff)
}

func startEntry(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope, kind internal.EntryKind, projectCode ...string) (*internal.DayRecord, error) {
	key := EntryKey(scope.User.ID, scope.Today())
	rec, err := repo.GetDayRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &internal.DayRecord{UserAndDate: key}
	}
	entry := internal.Interval{Start: timeutil.NowHHMM(scope.Offset)}
	if len(projectCode) > 0 {
		entry.ProjectCode = projectCode[0]
	}
	list := listFor(rec, kind)
	*list = append(*list, internal.SerializeEntry(entry))
	if err := repo.PutDayRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func finishEntry(ctx context.Context, repo storage.TimeEntryRepository, scope *RequestScope, kind internal.EntryKind) (*internal.DayRecord, error) {
	key := EntryKey(scope.User.ID, scope.Today())
	rec, err := repo.GetDayRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.ErrNotFound
	}
	list := listFor(rec, kind)
	for i := len(*list) - 1; i >= 0; i-- {
		entry := internal.DeserializeEntry((*list)[i])
		if entry == nil || entry.End != "" {
			continue
		}
		entry.End = timeutil.NowHHMM(scope.Offset)
		(*list)[i] = internal.SerializeEntry(*entry)
		if err := repo.PutDayRecord(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, internal.ErrNotFound
}

// AddLifelog validates and appends a lifelog to the given day. Lifelogs are
// free-form and may overlap work, breaks, or each other.
func AddLifelog(ctx context.Context, repo storage.LifelogRepository, scope *RequestScope, date string, entry internal.Interval) (*internal.LifelogRecord, error) {
	if date == "" {
		date = scope.Today()
	}
	if errs := ValidateLifelog(entry.Start, entry.End, entry.WhatToDo, scope.Language); len(errs) > 0 {
		return nil, internal.NewValidationError(errs)
	}
	key := EntryKey(scope.User.ID, date)
	rec, err := repo.GetLifelogRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = &internal.LifelogRecord{UserAndDate: key}
	}
	rec.Logs = append(rec.Logs, internal.SerializeEntry(entry))
	if err := repo.PutLifelogRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func EditLifelog(ctx context.Context, repo storage.LifelogRepository, scope *RequestScope, date string, original, updated internal.Interval) (*internal.LifelogRecord, error) {
	if date == "" {
		date = scope.Today()
	}
	if errs := ValidateLifelog(updated.Start, updated.End, updated.WhatToDo, scope.Language); len(errs) > 0 {
		return nil, internal.NewValidationError(errs)
	}
	key := EntryKey(scope.User.ID, date)
	rec, err := repo.GetLifelogRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.ErrNotFound
	}
	idx := matchIndex(rec.Logs, internal.KindLifelog, &original)
	if idx < 0 {
		return nil, internal.ErrNotFound
	}
	rec.Logs[idx] = internal.SerializeEntry(updated)
	if err := repo.PutLifelogRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func DeleteLifelog(ctx context.Context, repo storage.LifelogRepository, scope *RequestScope, date string, target internal.Interval) (*internal.LifelogRecord, error) {
	if date == "" {
		date = scope.Today()
	}
	key := EntryKey(scope.User.ID, date)
	rec, err := repo.GetLifelogRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.ErrNotFound
	}
	idx := matchIndex(rec.Logs, internal.KindLifelog, &target)
	if idx < 0 {
		return nil, internal.ErrNotFound
	}
	rec.Logs = append(rec.Logs[:idx], rec.Logs[idx+1:]...)
	if err := repo.PutLifelogRecord(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// StartLifelog opens a lifelog for the given activity at the current time.
func StartLifelog(ctx context.Context, repo storage.LifelogRepository, scope *RequestScope, whatToDo string) (*internal.LifelogRecord, error) {
	return AddLifelog(ctx, repo, scope, "", internal.Interval{
		Start:    timeutil.NowHHMM(scope.Offset),
		WhatToDo: whatToDo,
	})
}

// FinishLifelog closes the most recent open lifelog of the day.
func FinishLifelog(ctx context.Context, repo storage.LifelogRepository, scope *RequestScope) (*internal.LifelogRecord, error) {
	key := EntryKey(scope.User.ID, scope.Today())
	rec, err := repo.GetLifelogRecord(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, internal.ErrNotFound
	}
	for i := len(rec.Logs) - 1; i >= 0; i-- {
		entry := internal.DeserializeEntry(rec.Logs[i])
		if entry == nil || entry.End != "" {
			continue
		}
		entry.End = timeutil.NowHHMM(scope.Offset)
		rec.Logs[i] = internal.SerializeEntry(*entry)
		if err := repo.PutLifelogRecord(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, internal.ErrNotFound
}

package internal

import (
	"encoding/json"
	"net/url"
	"strings"
)

// SerializeEntry renders an interval into its canonical durable form: a JSON
// object with start, end, and the optional project_code / what_to_do fields.
// The kind tag is deliberately stripped; it is implied by the list the
// string is stored in.
func SerializeEntry(entry Interval) string {
	b, err := json.Marshal(entry)
	if err != nil {
		// Interval contains only strings; Marshal cannot fail on it.
		return ""
	}
	return string(b)
}

// DeserializeEntry decodes a stored entry string. Canonical entries are JSON
// objects; anything else is treated as the legacy comma-separated grammar
// with 2 ("start,end"), 3 ("start,end,project_code"), or 4
// ("start,end,project_code,kind") tokens. A nil result means the value is
// malformed; callers decide whether that is fatal.
func DeserializeEntry(value string) *Interval {
	if value == "" {
		return nil
	}
	if strings.HasPrefix(value, "{") {
		var entry Interval
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			return nil
		}
		return &entry
	}
	elems := strings.Split(value, ",")
	switch len(elems) {
	case 2:
		return &Interval{Start: elems[0], End: elems[1]}
	case 3:
		return &Interval{Start: elems[0], End: elems[1], ProjectCode: elems[2]}
	case 4:
		return &Interval{
			Start:       elems[0],
			End:         elems[1],
			ProjectCode: elems[2],
			Kind:        EntryKind(elems[3]),
		}
	default:
		return nil
	}
}

// NormalizeEntry re-serializes a stored entry string into the canonical
// form, upgrading legacy comma-separated values. Returns "" for malformed
// input.
func NormalizeEntry(value string) string {
	entry := DeserializeEntry(value)
	if entry == nil {
		return ""
	}
	return SerializeEntry(*entry)
}

// ToComparable builds a normalized tab-joined key for an interval. Matching
// an edit target against stored strings by direct equality breaks across
// serialization-format migrations; comparing these keys does not.
func ToComparable(entry *Interval) string {
	if entry == nil {
		return ""
	}
	projectCode := ""
	if entry.ProjectCode != "" {
		projectCode = url.QueryEscape(entry.ProjectCode)
	}
	whatToDo := ""
	if entry.WhatToDo != "" {
		whatToDo = url.QueryEscape(entry.WhatToDo)
	}
	return strings.Join([]string{
		"type:" + string(entry.Kind),
		"start:" + entry.Start,
		"end:" + entry.End,
		"project_code:" + projectCode,
		"what_to_do:" + whatToDo,
	}, "\t")
}

package model

import "strings"

// NormalizeDate reduces "2025-03-04T16:00:00.000Z" or "2025-03-04" to
// "2025-03-04". Applying it twice changes nothing.
func NormalizeDate(s string) string {
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return prefix(s[:i], 10)
	}
	return prefix(s, 10)
}

// NormalizeTime reduces "1899-12-30T14:00:00.000Z" or "14:00:00" to "14:00".
func NormalizeTime(s string) string {
	if s == "" {
		return ""
	}
	if i := strings.LastIndexByte(s, 'T'); i >= 0 {
		return prefix(s[i+1:], 5)
	}
	return prefix(s, 5)
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Normalize prepares a record fetched from the store for editing or review:
// dates and times are cut to bare values, skills carry the default keys and
// nil lists become empty ones.
func Normalize(r MemberRecord) MemberRecord {
	r = r.Clone()
	r.DOB = NormalizeDate(r.DOB)
	r.Skills = MergeSkills(r.Skills)
	if r.SchoolName == "" {
		r.SchoolName = DefaultSchoolName
	}
	if r.Schedule == nil {
		r.Schedule = []ScheduleEntry{}
	}
	if r.Achievements == nil {
		r.Achievements = []Achievement{}
	}
	if r.Logs == nil {
		r.Logs = []WeeklyLog{}
	}
	for i := range r.Logs {
		r.Logs[i].Date = NormalizeDate(r.Logs[i].Date)
		r.Logs[i].Time = NormalizeTime(r.Logs[i].Time)
	}
	return r
}

// Package dashboard derives the teacher and admin overviews. Rows are built
// once on the server; grouping, search and the analytics are pure transforms
// over an already fetched batch.
package dashboard

import (
	"math"
	"sort"
	"strings"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

const (
	NoClass    = "Tiada Kelas"
	OtherClass = "Lain-lain"

	// TargetLogs is the number of weekly logs that counts as complete.
	TargetLogs = 12
)

// StudentRow derives one member's dashboard row.
func StudentRow(acc model.Account, rec model.MemberRecord) model.DashboardStudent {
	name := acc.Name
	if name == "" {
		name = rec.StudentName
	}
	form := acc.Form
	if form == "" {
		form = rec.Form
	}
	return model.DashboardStudent{
		Name:         name,
		Email:        acc.Email,
		IC:           acc.IC,
		Form:         form,
		Club:         acc.Club,
		LogCount:     len(rec.Logs),
		Completeness: rec.Completeness(),
		Teacher:      strings.ToLower(rec.Teacher),
		IsReviewed:   rec.IsReviewed(),
	}
}

// TeacherRow derives one teacher's directory row. p is nil when the teacher
// never saved a profile.
func TeacherRow(acc model.Account, p *model.TeacherProfile) model.DashboardTeacher {
	row := model.DashboardTeacher{Name: acc.Name, Email: acc.Email, Role: acc.Role, Club: acc.Club}
	if p != nil {
		row.ProfileCompleteness = p.Completeness()
		row.Rank = p.RankKRS
		row.School = p.School
		if p.Name != "" {
			row.Name = p.Name
		}
	}
	return row
}

type ClassGroup struct {
	Name     string
	Students []model.DashboardStudent
}

// GroupByClass buckets students by form, classes in natural order. Students
// without a form land in NoClass.
func GroupByClass(students []model.DashboardStudent) []ClassGroup {
	idx := map[string]int{}
	var groups []ClassGroup
	for _, s := range students {
		name := s.Form
		if name == "" {
			name = NoClass
		}
		i, ok := idx[name]
		if !ok {
			i = len(groups)
			idx[name] = i
			groups = append(groups, ClassGroup{Name: name})
		}
		groups[i].Students = append(groups[i].Students, s)
	}
	sort.SliceStable(groups, func(a, b int) bool { return naturalLess(groups[a].Name, groups[b].Name) })
	return groups
}

// Search keeps students whose name contains term, ignoring case, or whose
// IC contains it.
func Search(students []model.DashboardStudent, term string) []model.DashboardStudent {
	if term == "" {
		return append([]model.DashboardStudent(nil), students...)
	}
	lower := strings.ToLower(term)
	var out []model.DashboardStudent
	for _, s := range students {
		if strings.Contains(strings.ToLower(s.Name), lower) || strings.Contains(s.IC, term) {
			out = append(out, s)
		}
	}
	return out
}

func SearchTeachers(teachers []model.DashboardTeacher, term string) []model.DashboardTeacher {
	lower := strings.ToLower(term)
	var out []model.DashboardTeacher
	for _, t := range teachers {
		if strings.Contains(strings.ToLower(t.Name), lower) || strings.Contains(strings.ToLower(t.Email), lower) {
			out = append(out, t)
		}
	}
	return out
}

// LogProgress is a log count as a percentage of TargetLogs, capped at 100.
func LogProgress(logCount int) int {
	return min(100, round(float64(logCount)/TargetLogs*100))
}

type ClassStat struct {
	Name     string `json:"name"`
	Count    int    `json:"count"`
	AvgLog   int    `json:"avgLog"`
	AvgWajib int    `json:"avgWajib"`
}

// ClassStats averages log progress and required-field completeness per
// class. Students without a form are counted under OtherClass.
func ClassStats(students []model.DashboardStudent) []ClassStat {
	type acc struct{ log, wajib, n int }
	sums := map[string]*acc{}
	for _, s := range students {
		name := s.Form
		if name == "" {
			name = OtherClass
		}
		a := sums[name]
		if a == nil {
			a = &acc{}
			sums[name] = a
		}
		a.log += LogProgress(s.LogCount)
		a.wajib += s.Completeness
		a.n++
	}
	out := make([]ClassStat, 0, len(sums))
	for name, a := range sums {
		out = append(out, ClassStat{
			Name:     name,
			Count:    a.n,
			AvgLog:   round(float64(a.log) / float64(a.n)),
			AvgWajib: round(float64(a.wajib) / float64(a.n)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return naturalLess(out[i].Name, out[j].Name) })
	return out
}

func TeacherProfileAverage(teachers []model.DashboardTeacher) int {
	if len(teachers) == 0 {
		return 0
	}
	sum := 0
	for _, t := range teachers {
		sum += t.ProfileCompleteness
	}
	return round(float64(sum) / float64(len(teachers)))
}

// ReviewerPercentage is the share of assigned teachers who have signed at
// least one of their members' logbooks. With no assigned teachers the
// denominator is 1, giving 0.
func ReviewerPercentage(students []model.DashboardStudent) int {
	reviewed := map[string]bool{}
	for _, s := range students {
		if s.Teacher == "" {
			continue
		}
		t := strings.ToLower(s.Teacher)
		reviewed[t] = reviewed[t] || s.IsReviewed
	}
	active := 0
	for _, ok := range reviewed {
		if ok {
			active++
		}
	}
	total := max(len(reviewed), 1)
	return round(float64(active) / float64(total) * 100)
}

type Summary struct {
	Classes               []ClassStat `json:"classes"`
	TeacherProfileAverage int         `json:"teacherProfileAverage"`
	ReviewerPercentage    int         `json:"reviewerPercentage"`
}

// Summarize computes the three admin analytics.
func Summarize(d model.AdminData) Summary {
	return Summary{
		Classes:               ClassStats(d.Students),
		TeacherProfileAverage: TeacherProfileAverage(d.Teachers),
		ReviewerPercentage:    ReviewerPercentage(d.Students),
	}
}

func round(f float64) int { return int(math.Round(f)) }

// naturalLess orders "2 Arif" before "10 Arif": digit runs compare by value.
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		if da && db {
			na, ra := digitRun(a)
			nb, rb := digitRun(b)
			if na != nb {
				if len(na) != len(nb) {
					return len(na) < len(nb)
				}
				return na < nb
			}
			a, b = ra, rb
			continue
		}
		ca, cb := strings.ToLower(a[:1]), strings.ToLower(b[:1])
		if ca != cb {
			return ca < cb
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// digitRun splits off the leading digits of s, without leading zeros.
func digitRun(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	n := strings.TrimLeft(s[:i], "0")
	if n == "" {
		n = "0"
	}
	return n, s[i:]
}

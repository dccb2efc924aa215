// Package composer turns a member record into the ordered pages of the
// printed logbook.
package composer

import (
	"slices"
	"sort"
	"strings"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/club"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

// Preview caps. Storage keeps every entry; a page only has room for these.
const (
	MaxRuleGroups    = 4
	MaxRuleItems     = 3
	MaxScheduleRows  = 8
	MaxSkills        = 10
	MaxAchievements  = 5
	NoAchievements   = "Tiada rekod."
	NoLogs           = "Tiada laporan mingguan direkodkan buat masa ini."
	DefaultAttending = "HADIR"
)

type Kind int

const (
	KindCover Kind = iota
	KindBiodata
	KindEmblems
	KindOrganization
	KindRules
	KindLog
	KindClosing
)

func (k Kind) String() string {
	return [...]string{"cover", "biodata", "emblems", "organization", "rules", "log", "closing"}[k]
}

// Page is one printed sheet. Exactly one body pointer is set, matching Kind;
// a log page with a nil Log is the placeholder for an empty logbook.
type Page struct {
	Kind    Kind
	Cover   *Cover
	Biodata *Biodata
	Emblems *Emblems
	Org     *OrgChart
	Rules   *RulesSchedule
	Log     *LogPage
	Closing *Closing
}

func (p Page) IsLog() bool { return p.Kind == KindLog }

type Cover struct {
	SchoolLogo  string
	SchoolName  string
	ClubLogo    string
	ClubName    string
	StudentName string
	Form        string
	Year        int
	MemberID    string
}

type Biodata struct {
	StudentName  string
	IC           string
	DOB          string
	Phone        string
	Guardian     string
	Address      string
	ProfileImage string
	TeacherName  string
	Visi         string
	Misi         string
}

type Emblems struct {
	Logo   string
	Flag   string
	Moto   string
	Song   string
	Pledge string
}

// OrgChart is a fixed hierarchy: patron, advisor, chairman, then secretary
// and treasurer side by side.
type OrgChart struct {
	Patron    string
	Advisor   string
	Chairman  string
	Secretary string
	Treasurer string
	Committee string
}

type RulesSchedule struct {
	Rules    []model.RuleGroup
	Schedule []model.ScheduleEntry
}

type LogPage struct {
	Number int
	First  bool
	model.WeeklyLog
}

type Skill struct {
	Name string
	On   bool
}

type Closing struct {
	Skills           []Skill
	Achievements     []model.Achievement
	StudentSummary   string
	TeacherComment   string
	TeacherSignature string
	StudentName      string
	TeacherName      string
}

// Compose lays out rec. Overrides win when non-blank, then the club's
// defaults, then the generic content. rec is not modified. teachers resolve
// the assigned teacher's email to a name.
func Compose(rec model.MemberRecord, d club.Defaults, teachers ...model.TeacherListItem) []Page {
	teacherName := rec.Teacher
	for _, t := range teachers {
		if strings.EqualFold(t.Email, rec.Teacher) && t.Name != "" {
			teacherName = t.Name
			break
		}
	}

	pages := []Page{
		{Kind: KindCover, Cover: &Cover{
			SchoolLogo:  club.SchoolLogo,
			SchoolName:  rec.SchoolName,
			ClubLogo:    pick(rec.CustomLogo, d.Logo, club.GenericLogo),
			ClubName:    rec.ClubName,
			StudentName: rec.StudentName,
			Form:        rec.Form,
			Year:        rec.Year,
			MemberID:    rec.MemberID,
		}},
		{Kind: KindBiodata, Biodata: &Biodata{
			StudentName:  rec.StudentName,
			IC:           rec.IC,
			DOB:          model.NormalizeDate(rec.DOB),
			Phone:        rec.Phone,
			Guardian:     rec.Guardian,
			Address:      rec.Address,
			ProfileImage: rec.ProfileImage,
			TeacherName:  teacherName,
			Visi:         pick(rec.CustomVisi, d.Visi, club.DefaultVisi),
			Misi:         pick(rec.CustomMisi, d.Misi, club.DefaultMisi),
		}},
		{Kind: KindEmblems, Emblems: &Emblems{
			Logo:   pick(rec.CustomLogo, d.Logo, club.GenericLogo),
			Flag:   pick(rec.CustomFlag, d.Flag, ""),
			Moto:   pick(rec.CustomMoto, d.Moto, club.DefaultMoto),
			Song:   pick(rec.CustomSong, d.Song, club.DefaultSong),
			Pledge: club.Pledge(rec.ClubName),
		}},
		{Kind: KindOrganization, Org: &OrgChart{
			Patron:    rec.Principal,
			Advisor:   rec.TeacherAdvisor,
			Chairman:  rec.Chairman,
			Secretary: rec.Secretary,
			Treasurer: rec.Treasurer,
			Committee: rec.Committee,
		}},
		{Kind: KindRules, Rules: &RulesSchedule{
			Rules:    rules(rec.CustomRules, d.Rules),
			Schedule: head(rec.Schedule, MaxScheduleRows),
		}},
	}

	if len(rec.Logs) == 0 {
		pages = append(pages, Page{Kind: KindLog})
	}
	for i, l := range rec.Logs {
		l.Date = model.NormalizeDate(l.Date)
		l.Time = model.NormalizeTime(l.Time)
		if strings.TrimSpace(l.Attendance) == "" {
			l.Attendance = DefaultAttending
		}
		pages = append(pages, Page{Kind: KindLog, Log: &LogPage{Number: i + 1, First: i == 0, WeeklyLog: l}})
	}

	return append(pages, Page{Kind: KindClosing, Closing: &Closing{
		Skills:           skills(rec.Skills),
		Achievements:     head(rec.Achievements, MaxAchievements),
		StudentSummary:   rec.StudentSummary,
		TeacherComment:   rec.TeacherComment,
		TeacherSignature: rec.TeacherSignature,
		StudentName:      rec.StudentName,
		TeacherName:      teacherName,
	}})
}

func pick(override, clubValue, generic string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if strings.TrimSpace(clubValue) != "" {
		return clubValue
	}
	return generic
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return append([]T(nil), s...)
}

func rules(custom []model.RuleGroup, clubRules []club.RuleGroup) []model.RuleGroup {
	src := custom
	if len(src) == 0 {
		from := clubRules
		if len(from) == 0 {
			from = club.DefaultRules
		}
		for _, g := range from {
			src = append(src, model.RuleGroup{Title: g.Title, Items: g.Items})
		}
	}
	out := make([]model.RuleGroup, 0, MaxRuleGroups)
	for _, g := range head(src, MaxRuleGroups) {
		out = append(out, model.RuleGroup{Title: g.Title, Items: head(g.Items, MaxRuleItems)})
	}
	return out
}

// skills lists the default keys in their fixed order, then any extra keys
// alphabetically.
func skills(m map[string]bool) []Skill {
	merged := model.MergeSkills(m)
	out := make([]Skill, 0, len(merged))
	for _, k := range model.DefaultSkills {
		out = append(out, Skill{Name: k, On: merged[k]})
	}
	var extra []string
	for k := range merged {
		if !slices.Contains(model.DefaultSkills, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, Skill{Name: k, On: merged[k]})
	}
	return head(out, MaxSkills)
}

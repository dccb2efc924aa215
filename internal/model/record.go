package model

import (
	"time"
)

const DefaultSchoolName = "SMA ULU JEMPOL"

var (
	ClassList          = []string{"1 Arif", "2 Arif", "3 Arif", "4 Arif", "5 Arif"}
	AchievementLevels  = []string{"Sekolah", "Daerah", "Negeri", "Kebangsaan", "Antarabangsa"}
	AchievementResults = []string{"Johan", "Naib Johan", "Tempat Ketiga", "Tempat Keempat", "Tempat Kelima", "Saguhati", "Penyertaan"}

	// ImageTypes are the upload formats accepted. Vector formats are left
	// out because they can carry script.
	ImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

	// DefaultSkills is the fixed key set every skills map carries.
	DefaultSkills = []string{
		"Komunikasi", "Kepimpinan", "Kerjasama", "Pemikiran Kritif", "Keusahawanan",
		"ICT & Multimedia", "Pengurusan Projek", "Pengucapan Awam", "Kebudayaan", "Kesukarelawan",
	}
)

type ScheduleEntry struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Activity string `json:"activity"`
	Place    string `json:"place"`
}

// WeeklyLog is one activity report. ID is assigned once on creation and is
// the key a teacher review is merged on.
type WeeklyLog struct {
	ID               int64  `json:"id"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Place            string `json:"place"`
	Type             string `json:"type"`
	Objective        string `json:"objective"`
	Content          string `json:"content"`
	Reflection       string `json:"reflection"`
	TeacherNote      string `json:"teacherNote,omitempty"`
	TeacherSignature string `json:"teacherSignature,omitempty"`
	Img1             string `json:"img1,omitempty"`
	Img2             string `json:"img2,omitempty"`
	Attendance       string `json:"attendance,omitempty"`
}

type Achievement struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Level  string `json:"level"`
	Result string `json:"result"`
}

type RuleGroup struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// Profile is every part of a member's record except the weekly logs. It
// travels as the "profile" object of saveData/login/getStudentData.
type Profile struct {
	// cover
	SchoolName  string `json:"schoolName"`
	StudentName string `json:"studentName"`
	IC          string `json:"ic"`
	Form        string `json:"form"`
	MemberID    string `json:"memberId"`
	Year        int    `json:"year"`

	// club context, blank means "use the club default"
	ClubName    string      `json:"clubName"`
	CustomLogo  string      `json:"customLogo,omitempty"`
	CustomFlag  string      `json:"customFlag,omitempty"`
	CustomMisi  string      `json:"customMisi,omitempty"`
	CustomVisi  string      `json:"customVisi,omitempty"`
	CustomSong  string      `json:"customSong,omitempty"`
	CustomMoto  string      `json:"customMoto,omitempty"`
	CustomRules []RuleGroup `json:"customRules,omitempty"`

	// biodata
	DOB          string `json:"dob"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	Guardian     string `json:"guardian"`
	Teacher      string `json:"teacher"`
	ProfileImage string `json:"profileImage"`

	// organization
	Principal      string `json:"principal"`
	TeacherAdvisor string `json:"teacherAdvisor"`
	Chairman       string `json:"chairman"`
	Secretary      string `json:"secretary"`
	Treasurer      string `json:"treasurer"`
	Committee      string `json:"committee"`

	Schedule     []ScheduleEntry `json:"schedule"`
	Skills       map[string]bool `json:"skills"`
	SkillsNotes  string          `json:"skillsNotes"`
	Achievements []Achievement   `json:"achievements"`

	// closing; the teacher owns the last two
	StudentSummary   string `json:"studentSummary"`
	TeacherComment   string `json:"teacherComment"`
	TeacherSignature string `json:"teacherSignature,omitempty"`
}

// MemberRecord is a member's whole logbook.
type MemberRecord struct {
	Profile
	Logs []WeeklyLog `json:"logs"`
}

// NewRecord returns the blank record a fresh member starts from.
func NewRecord() MemberRecord {
	return MemberRecord{
		Profile: Profile{
			SchoolName:   DefaultSchoolName,
			Year:         time.Now().Year(),
			Schedule:     []ScheduleEntry{},
			Skills:       MergeSkills(nil),
			Achievements: []Achievement{},
		},
		Logs: []WeeklyLog{},
	}
}

// MergeSkills overlays stored values on the default key set. Default keys are
// never dropped; keys only present in stored are kept.
func MergeSkills(stored map[string]bool) map[string]bool {
	merged := make(map[string]bool, len(DefaultSkills)+len(stored))
	for _, k := range DefaultSkills {
		merged[k] = false
	}
	for k, v := range stored {
		merged[k] = v
	}
	return merged
}

// Clone returns a deep copy sharing no slices or maps with r.
func (r MemberRecord) Clone() MemberRecord {
	c := r
	c.Profile = r.Profile.Clone()
	c.Logs = append([]WeeklyLog(nil), r.Logs...)
	if r.Logs != nil && c.Logs == nil {
		c.Logs = []WeeklyLog{}
	}
	return c
}

func (p Profile) Clone() Profile {
	c := p
	if p.CustomRules != nil {
		c.CustomRules = make([]RuleGroup, len(p.CustomRules))
		for i, g := range p.CustomRules {
			c.CustomRules[i] = RuleGroup{Title: g.Title, Items: append([]string(nil), g.Items...)}
		}
	}
	if p.Schedule != nil {
		c.Schedule = append(make([]ScheduleEntry, 0, len(p.Schedule)), p.Schedule...)
	}
	if p.Achievements != nil {
		c.Achievements = append(make([]Achievement, 0, len(p.Achievements)), p.Achievements...)
	}
	if p.Skills != nil {
		c.Skills = make(map[string]bool, len(p.Skills))
		for k, v := range p.Skills {
			c.Skills[k] = v
		}
	}
	return c
}

// FindLog returns the index of the log with id, or -1.
func (r MemberRecord) FindLog(id int64) int {
	for i, l := range r.Logs {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// IsReviewed reports whether a teacher has signed any log or the closing page.
func (r MemberRecord) IsReviewed() bool {
	if r.TeacherSignature != "" {
		return true
	}
	for _, l := range r.Logs {
		if l.TeacherSignature != "" {
			return true
		}
	}
	return false
}

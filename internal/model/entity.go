package model

import "time"

// Roles as they travel on the wire.
const (
	RoleMember  = "murid"
	RoleTeacher = "guru"
	RoleAdmin   = "admin"
)

func ValidRole(role string) bool {
	return role == RoleMember || role == RoleTeacher || role == RoleAdmin
}

// Account is the login identity behind every record.
type Account struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	Email     string    `gorm:"uniqueIndex;size:191" json:"email"`
	Name      string    `json:"name"`
	IC        string    `gorm:"size:32" json:"ic"`
	Form      string    `json:"form"`
	Role      string    `gorm:"size:16" json:"role"`
	Club      string    `json:"club"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberRow stores a MemberRecord. TeacherEmail mirrors Profile.Teacher so a
// teacher's list can be queried without decoding every profile.
type MemberRow struct {
	Email        string      `gorm:"primaryKey;size:191"`
	TeacherEmail string      `gorm:"index;size:191"`
	Profile      Profile     `gorm:"serializer:json;type:longtext"`
	Logs         []WeeklyLog `gorm:"serializer:json;type:longtext"`
	UpdatedAt    time.Time
}

type TeacherProfileRow struct {
	Email     string         `gorm:"primaryKey;size:191"`
	Profile   TeacherProfile `gorm:"serializer:json;type:longtext"`
	UpdatedAt time.Time
}

func (Account) TableName() string           { return "accounts" }
func (MemberRow) TableName() string         { return "member_records" }
func (TeacherProfileRow) TableName() string { return "teacher_profiles" }

func (r MemberRow) Record() MemberRecord {
	return MemberRecord{Profile: r.Profile, Logs: r.Logs}
}

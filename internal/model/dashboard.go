package model

// DashboardStudent is one row of a teacher's or admin's member list.
type DashboardStudent struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	IC           string `json:"ic"`
	Form         string `json:"form"`
	Club         string `json:"club"`
	LogCount     int    `json:"logCount"`
	Completeness int    `json:"completeness"`
	Teacher      string `json:"teacher"`
	IsReviewed   bool   `json:"isReviewed"`
}

type DashboardTeacher struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Role                string `json:"role"`
	Club                string `json:"club"`
	ProfileCompleteness int    `json:"profileCompleteness"`
	Rank                string `json:"rank,omitempty"`
	School              string `json:"school,omitempty"`
}

// RequiredFields are the "wajib" parts of a record that count towards
// completeness.
func (r MemberRecord) RequiredFields() []string {
	return []string{
		r.StudentName, r.IC, r.Form, r.DOB, r.Address,
		r.Phone, r.Guardian, r.Teacher, r.ProfileImage, r.StudentSummary,
	}
}

// Completeness is the percentage of required fields that are filled.
func (r MemberRecord) Completeness() int {
	fs := r.RequiredFields()
	return percent(countFilled(fs), len(fs))
}

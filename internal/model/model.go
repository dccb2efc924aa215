package model

// Gateway actions.
const (
	ActionLogin              = "login"
	ActionRegister           = "register"
	ActionGetTeacherList     = "getTeacherList"
	ActionGetTeacherStudents = "getTeacherStudents"
	ActionGetAdminData       = "getAdminData"
	ActionSaveData           = "saveData"
	ActionUploadImage        = "uploadImage"
	ActionGetStudentData     = "getStudentData"
	ActionSaveTeacherReview  = "saveTeacherReview"
	ActionSaveLogReview      = "saveLogReview"
	ActionGetTeacherProfile  = "getTeacherProfile"
	ActionSaveTeacherProfile = "saveTeacherProfile"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	IC    string `json:"ic" validate:"required"`
}

type RegisterRequest struct {
	Email string `json:"email" validate:"required,email"`
	IC    string `json:"ic" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Form  string `json:"form,omitempty"`
	Role  string `json:"role" validate:"required,oneof=murid guru admin"`
	Club  string `json:"club" validate:"required"`
}

// LoginResponse carries the identity and, for members, the stored record.
type LoginResponse struct {
	Email   string      `json:"email"`
	Name    string      `json:"name"`
	IC      string      `json:"ic"`
	Form    string      `json:"form"`
	Role    string      `json:"role"`
	Club    string      `json:"club"`
	Profile *Profile    `json:"profile,omitempty"`
	Logs    []WeeklyLog `json:"logs"`
	Token   string      `json:"token,omitempty"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type SaveDataRequest struct {
	Email   string      `json:"email" validate:"required,email"`
	Profile Profile     `json:"profile"`
	Logs    []WeeklyLog `json:"logs"`
}

type StudentData struct {
	Name    string      `json:"name"`
	IC      string      `json:"ic"`
	Form    string      `json:"form"`
	Profile *Profile    `json:"profile,omitempty"`
	Logs    []WeeklyLog `json:"logs"`
}

// Record rebuilds the member record from a fetch response. Identity fields
// from the account take precedence over what the profile carries.
func (d StudentData) Record() MemberRecord {
	r := MemberRecord{Logs: d.Logs}
	if d.Profile != nil {
		r.Profile = *d.Profile
	}
	if d.Name != "" {
		r.StudentName = d.Name
	}
	if d.IC != "" {
		r.IC = d.IC
	}
	if d.Form != "" {
		r.Form = d.Form
	}
	return Normalize(r)
}

// TeacherReviewRequest touches only the closing section.
type TeacherReviewRequest struct {
	Email            string `json:"email" validate:"required,email"`
	TeacherComment   string `json:"teacherComment"`
	TeacherSignature string `json:"teacherSignature"`
}

// LogReviewRequest touches only one log entry.
type LogReviewRequest struct {
	Email            string `json:"email" validate:"required,email"`
	LogID            int64  `json:"logId" validate:"required"`
	TeacherNote      string `json:"teacherNote"`
	TeacherSignature string `json:"teacherSignature"`
}

type UploadRequest struct {
	MimeType string `json:"mimeType"`
	Filename string `json:"filename" validate:"required"`
	Base64   string `json:"base64" validate:"required"`
}

type TeacherListItem struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AdminData struct {
	Students []DashboardStudent `json:"students"`
	Teachers []DashboardTeacher `json:"teachers"`
}

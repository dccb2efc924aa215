package draft

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrReadOnlyField = errors.New("field cannot be edited by a member")
)

// textFields maps a profile field's JSON name to its storage.
var textFields = map[string]func(p *model.Profile) *string{
	"schoolName":     func(p *model.Profile) *string { return &p.SchoolName },
	"studentName":    func(p *model.Profile) *string { return &p.StudentName },
	"form":           func(p *model.Profile) *string { return &p.Form },
	"memberId":       func(p *model.Profile) *string { return &p.MemberID },
	"customLogo":     func(p *model.Profile) *string { return &p.CustomLogo },
	"customFlag":     func(p *model.Profile) *string { return &p.CustomFlag },
	"customMisi":     func(p *model.Profile) *string { return &p.CustomMisi },
	"customVisi":     func(p *model.Profile) *string { return &p.CustomVisi },
	"customSong":     func(p *model.Profile) *string { return &p.CustomSong },
	"customMoto":     func(p *model.Profile) *string { return &p.CustomMoto },
	"dob":            func(p *model.Profile) *string { return &p.DOB },
	"address":        func(p *model.Profile) *string { return &p.Address },
	"phone":          func(p *model.Profile) *string { return &p.Phone },
	"guardian":       func(p *model.Profile) *string { return &p.Guardian },
	"teacher":        func(p *model.Profile) *string { return &p.Teacher },
	"profileImage":   func(p *model.Profile) *string { return &p.ProfileImage },
	"principal":      func(p *model.Profile) *string { return &p.Principal },
	"teacherAdvisor": func(p *model.Profile) *string { return &p.TeacherAdvisor },
	"chairman":       func(p *model.Profile) *string { return &p.Chairman },
	"secretary":      func(p *model.Profile) *string { return &p.Secretary },
	"treasurer":      func(p *model.Profile) *string { return &p.Treasurer },
	"committee":      func(p *model.Profile) *string { return &p.Committee },
	"skillsNotes":    func(p *model.Profile) *string { return &p.SkillsNotes },
	"studentSummary": func(p *model.Profile) *string { return &p.StudentSummary },
}

// Identity comes from the account and the closing review belongs to the
// teacher.
var readOnly = map[string]bool{
	"ic":               true,
	"clubName":         true,
	"teacherComment":   true,
	"teacherSignature": true,
}

// FieldNames lists the profile fields SetField accepts.
func FieldNames() []string {
	names := make([]string, 0, len(textFields)+1)
	for k := range textFields {
		names = append(names, k)
	}
	return append(names, "year")
}

func applyField(p *model.Profile, name, value string) error {
	if readOnly[name] {
		return fmt.Errorf("%w: %s", ErrReadOnlyField, name)
	}
	switch name {
	case "year":
		y, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return validate.New(fmt.Errorf("year: %w", err), validate.FieldError{Field: "year", Error: "must be a number"})
		}
		p.Year = y
		return nil
	case "dob":
		p.DOB = model.NormalizeDate(value)
		return nil
	}
	ptr, ok := textFields[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	*ptr(p) = value
	return nil
}

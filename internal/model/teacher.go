package model

import (
	"math"
	"strings"
)

type TeacherProfile struct {
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage"`
	Name         string `json:"name" validate:"required"`
	IC           string `json:"ic"`
	DOB          string `json:"dob"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`

	PositionKRS   string `json:"positionKRS"`
	RankKRS       string `json:"rankKRS"`
	CommissionNo  string `json:"commissionNo"`
	School        string `json:"school"`
	DistrictState string `json:"districtState"`

	HighestEdu string `json:"highestEdu"`
	Option     string `json:"option"`

	BasicCourse   string `json:"basicCourse"`
	AdvCourse     string `json:"advCourse"`
	CourseDetails string `json:"courseDetails"`
	Experience    string `json:"experience"`

	HeldPositions string `json:"heldPositions"`
	Contributions string `json:"contributions"`
}

func (p TeacherProfile) fields() []string {
	return []string{
		p.ProfileImage, p.Name, p.IC, p.DOB, p.Address, p.Phone,
		p.PositionKRS, p.RankKRS, p.CommissionNo, p.School, p.DistrictState,
		p.HighestEdu, p.Option,
		p.BasicCourse, p.AdvCourse, p.CourseDetails, p.Experience,
		p.HeldPositions, p.Contributions,
	}
}

// Completeness is the percentage of filled profile fields. Email is the key,
// not content, and does not count.
func (p TeacherProfile) Completeness() int {
	fs := p.fields()
	return percent(countFilled(fs), len(fs))
}

func countFilled(fs []string) int {
	n := 0
	for _, f := range fs {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	return n
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/dashboard"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/store"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

// TeacherService serves the teacher directory, teacher profiles and the
// dashboard batches.
type TeacherService struct{ store store.Store }

func NewTeacherService(s store.Store) *TeacherService { return &TeacherService{store: s} }

// List is the public directory members pick their teacher from.
func (s *TeacherService) List(ctx context.Context) ([]model.TeacherListItem, error) {
	accs, err := s.store.ListAccounts(ctx, model.RoleTeacher)
	if err != nil {
		return nil, err
	}
	out := make([]model.TeacherListItem, 0, len(accs))
	for _, a := range accs {
		out = append(out, model.TeacherListItem{Name: a.Name, Email: a.Email})
	}
	return out, nil
}

func (s *TeacherService) Students(ctx context.Context, teacherEmail string) ([]model.DashboardStudent, error) {
	teacherEmail = validate.CleanEmail(teacherEmail)
	if err := validate.Struct(model.EmailRequest{Email: teacherEmail}); err != nil {
		return nil, err
	}
	rows, err := s.store.ListRecords(ctx, teacherEmail)
	if err != nil {
		return nil, err
	}
	out := make([]model.DashboardStudent, 0, len(rows))
	for _, row := range rows {
		acc, err := s.store.GetAccount(ctx, row.Email)
		if err != nil {
			acc = model.Account{Email: row.Email}
		}
		out = append(out, dashboard.StudentRow(acc, row.Record()))
	}
	return out, nil
}

// Profile returns the stored profile, or an empty one carrying only the
// email for a teacher who never saved.
func (s *TeacherService) Profile(ctx context.Context, email string) (model.TeacherProfile, error) {
	email = validate.CleanEmail(email)
	p, err := s.store.GetTeacherProfile(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		p = model.TeacherProfile{Email: email}
		if acc, err := s.store.GetAccount(ctx, email); err == nil {
			p.Name = acc.Name
		}
		return p, nil
	}
	if err != nil {
		return model.TeacherProfile{}, fmt.Errorf("load teacher profile: %w", err)
	}
	p.DOB = model.NormalizeDate(p.DOB)
	return p, nil
}

func (s *TeacherService) SaveProfile(ctx context.Context, p model.TeacherProfile) error {
	p.Email = validate.CleanEmail(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	if err := validate.Struct(p); err != nil {
		return err
	}
	return s.store.SaveTeacherProfile(ctx, p)
}

// AdminData builds every member row and every staff row.
func (s *TeacherService) AdminData(ctx context.Context) (*model.AdminData, error) {
	accs, err := s.store.ListAccounts(ctx, "")
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListRecords(ctx, "")
	if err != nil {
		return nil, err
	}
	profiles, err := s.store.ListTeacherProfiles(ctx)
	if err != nil {
		return nil, err
	}
	records := make(map[string]model.MemberRecord, len(rows))
	for _, r := range rows {
		records[r.Email] = r.Record()
	}

	out := &model.AdminData{Students: []model.DashboardStudent{}, Teachers: []model.DashboardTeacher{}}
	for _, a := range accs {
		switch a.Role {
		case model.RoleMember:
			out.Students = append(out.Students, dashboard.StudentRow(a, records[a.Email]))
		default:
			var p *model.TeacherProfile
			if tp, ok := profiles[a.Email]; ok {
				p = &tp
			}
			out.Teachers = append(out.Teachers, dashboard.TeacherRow(a, p))
		}
	}
	return out, nil
}

func (s *TeacherService) ExportXLSX(ctx context.Context, w io.Writer) error {
	data, err := s.AdminData(ctx)
	if err != nil {
		return err
	}
	return dashboard.ExportXLSX(w, *data)
}

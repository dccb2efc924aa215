package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/store"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

var (
	ErrMemberNotFound = errors.New("Murid tidak dijumpai")
	ErrLogNotFound    = errors.New("Log mingguan tidak dijumpai")
)

// RecordService owns member records. The member's save and the two review
// writes each touch only their own side's fields.
type RecordService struct{ store store.Store }

func NewRecordService(s store.Store) *RecordService { return &RecordService{store: s} }

func (s *RecordService) member(ctx context.Context, email string) (model.Account, error) {
	acc, err := s.store.GetAccount(ctx, email)
	if errors.Is(err, store.ErrNotFound) || (err == nil && acc.Role != model.RoleMember) {
		return model.Account{}, ErrMemberNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("load account: %w", err)
	}
	return acc, nil
}

// GetStudentData returns a member's identity and record as stored. Callers
// normalize.
func (s *RecordService) GetStudentData(ctx context.Context, email string) (*model.StudentData, error) {
	if err := validate.Struct(model.EmailRequest{Email: email}); err != nil {
		return nil, err
	}
	acc, err := s.member(ctx, email)
	if err != nil {
		return nil, err
	}
	out := &model.StudentData{Name: acc.Name, IC: acc.IC, Form: acc.Form, Logs: []model.WeeklyLog{}}
	rec, err := s.store.GetRecord(ctx, acc.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load record: %w", err)
	default:
		out.Profile = &rec.Profile
		if rec.Logs != nil {
			out.Logs = rec.Logs
		}
	}
	return out, nil
}

// Record is the stored record with the account's identity laid over it, as
// the print view shows it.
func (s *RecordService) Record(ctx context.Context, email string) (model.MemberRecord, error) {
	data, err := s.GetStudentData(ctx, email)
	if err != nil {
		return model.MemberRecord{}, err
	}
	rec := data.Record()
	if rec.ClubName == "" {
		if acc, err := s.store.GetAccount(ctx, email); err == nil {
			rec.ClubName = acc.Club
		}
	}
	return rec, nil
}

// SaveData replaces the member's side of the record. The teacher's closing
// comment and signature, and each log's note and signature, are carried
// over from the stored copy by log id, so a stale draft never erases a
// review. The assigned teacher index follows Profile.Teacher.
func (s *RecordService) SaveData(ctx context.Context, req model.SaveDataRequest) error {
	req.Email = validate.CleanEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	acc, err := s.member(ctx, req.Email)
	if err != nil {
		return err
	}
	incoming := model.MemberRecord{Profile: req.Profile, Logs: req.Logs}
	err = s.store.UpdateRecord(ctx, acc.Email, func(r *model.MemberRecord) error {
		*r = keepReview(incoming, *r)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		err = s.store.SaveRecord(ctx, acc.Email, keepReview(incoming, model.MemberRecord{}))
	}
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// keepReview returns member with every teacher-owned field taken from
// stored. A log stored has never seen carries no review.
func keepReview(member, stored model.MemberRecord) model.MemberRecord {
	out := member.Clone()
	out.TeacherComment = stored.TeacherComment
	out.TeacherSignature = stored.TeacherSignature
	for i := range out.Logs {
		note, sig := "", ""
		if j := stored.FindLog(out.Logs[i].ID); j >= 0 {
			note, sig = stored.Logs[j].TeacherNote, stored.Logs[j].TeacherSignature
		}
		out.Logs[i].TeacherNote = note
		out.Logs[i].TeacherSignature = sig
	}
	return out
}

// SaveTeacherReview writes the closing comment and signature and nothing
// else.
func (s *RecordService) SaveTeacherReview(ctx context.Context, req model.TeacherReviewRequest) error {
	req.Email = validate.CleanEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	err := s.store.UpdateRecord(ctx, req.Email, func(r *model.MemberRecord) error {
		r.TeacherComment = req.TeacherComment
		r.TeacherSignature = req.TeacherSignature
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrMemberNotFound
	}
	return err
}

// SaveLogReview merges a note and signature into the one log with the
// given id. Every other log is written back untouched.
func (s *RecordService) SaveLogReview(ctx context.Context, req model.LogReviewRequest) error {
	req.Email = validate.CleanEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return err
	}
	err := s.store.UpdateRecord(ctx, req.Email, func(r *model.MemberRecord) error {
		i := r.FindLog(req.LogID)
		if i < 0 {
			return ErrLogNotFound
		}
		r.Logs[i].TeacherNote = req.TeacherNote
		r.Logs[i].TeacherSignature = req.TeacherSignature
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrMemberNotFound
	}
	return err
}

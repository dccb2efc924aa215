// Package review is the teacher's side of a logbook: the closing comment and
// signature, and per-log notes. Both are addressed by the member's email and
// only ever send the fields they own.
//
// Two teachers reviewing the same member race; the last save wins.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

var (
	ErrNoSelection = errors.New("select a log entry first")
	ErrNoLog       = errors.New("log entry not found")
)

// signature returns what a save should store: a newly drawn signature when
// there is one, otherwise the one already on record.
func signature(pad Pad, existing string) (string, error) {
	if pad == nil || pad.State() == PadEmpty {
		return existing, nil
	}
	pad.Up()
	ref, err := pad.ImageRef()
	if err != nil {
		return "", err
	}
	if ref == "" {
		return existing, nil
	}
	return ref, nil
}

func fetch(ctx context.Context, api *gateway.API, memberEmail string) (model.MemberRecord, error) {
	if err := validate.Struct(model.EmailRequest{Email: memberEmail}); err != nil {
		return model.MemberRecord{}, err
	}
	data, err := api.GetStudentData(ctx, memberEmail)
	if err != nil {
		return model.MemberRecord{}, fmt.Errorf("fetch %s: %w", memberEmail, err)
	}
	return data.Record(), nil
}

// Closing reviews the closing section of one member's logbook.
type Closing struct {
	api     *gateway.API
	email   string
	rec     model.MemberRecord
	comment string
	pad     Pad
}

// OpenClosing fetches the member's record. The record is a read-only
// projection; only the comment and the pad are editable.
func OpenClosing(ctx context.Context, api *gateway.API, memberEmail string, pad Pad) (*Closing, error) {
	rec, err := fetch(ctx, api, memberEmail)
	if err != nil {
		return nil, err
	}
	return &Closing{api: api, email: memberEmail, rec: rec, comment: rec.TeacherComment, pad: pad}, nil
}

func (c *Closing) Record() model.MemberRecord { return c.rec.Clone() }

func (c *Closing) Comment() string { return c.comment }

func (c *Closing) SetComment(s string) { c.comment = s }

func (c *Closing) Pad() Pad { return c.pad }

// Save stores the comment and signature. An empty pad keeps the signature
// already on record.
func (c *Closing) Save(ctx context.Context) error {
	sig, err := signature(c.pad, c.rec.TeacherSignature)
	if err != nil {
		return err
	}
	req := model.TeacherReviewRequest{Email: c.email, TeacherComment: c.comment, TeacherSignature: sig}
	if err := c.api.SaveTeacherReview(ctx, req); err != nil {
		logger.Warn("review.closing_failed", "member", c.email, "err", err)
		return err
	}
	c.rec.TeacherComment, c.rec.TeacherSignature = c.comment, sig
	if c.pad != nil {
		c.pad.Clear()
	}
	logger.Info("review.closing_saved", "member", c.email, "signed", sig != "")
	return nil
}

// Logs reviews one member's weekly logs, one entry at a time.
type Logs struct {
	api      *gateway.API
	email    string
	logs     []model.WeeklyLog
	selected int64
	note     string
	pad      Pad
}

func OpenLogs(ctx context.Context, api *gateway.API, memberEmail string, pad Pad) (*Logs, error) {
	rec, err := fetch(ctx, api, memberEmail)
	if err != nil {
		return nil, err
	}
	return &Logs{api: api, email: memberEmail, logs: rec.Logs, pad: pad}, nil
}

func (l *Logs) Entries() []model.WeeklyLog {
	return append([]model.WeeklyLog(nil), l.logs...)
}

func (l *Logs) find(id int64) int {
	for i, e := range l.logs {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Select makes id the entry being reviewed and starts from its stored note
// with a blank pad.
func (l *Logs) Select(id int64) error {
	i := l.find(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrNoLog, id)
	}
	l.selected = id
	l.note = l.logs[i].TeacherNote
	if l.pad != nil {
		l.pad.Clear()
	}
	return nil
}

func (l *Logs) Selected() (model.WeeklyLog, bool) {
	if i := l.find(l.selected); l.selected != 0 && i >= 0 {
		return l.logs[i], true
	}
	return model.WeeklyLog{}, false
}

func (l *Logs) SetNote(s string) { l.note = s }

func (l *Logs) Note() string { return l.note }

func (l *Logs) Pad() Pad { return l.pad }

// Save stores the note and signature of the selected entry and updates the
// local copy once the server has accepted them.
func (l *Logs) Save(ctx context.Context) error {
	cur, ok := l.Selected()
	if !ok {
		return ErrNoSelection
	}
	sig, err := signature(l.pad, cur.TeacherSignature)
	if err != nil {
		return err
	}
	req := model.LogReviewRequest{Email: l.email, LogID: cur.ID, TeacherNote: l.note, TeacherSignature: sig}
	if err := l.api.SaveLogReview(ctx, req); err != nil {
		logger.Warn("review.log_failed", "member", l.email, "log", cur.ID, "err", err)
		return err
	}
	logs := append([]model.WeeklyLog(nil), l.logs...)
	i := l.find(cur.ID)
	logs[i].TeacherNote, logs[i].TeacherSignature = l.note, sig
	l.logs = logs
	if l.pad != nil {
		l.pad.Clear()
	}
	logger.Info("review.log_saved", "member", l.email, "log", cur.ID)
	return nil
}

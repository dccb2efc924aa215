// Package draft holds a member's in-memory logbook and keeps the stored copy
// in step with it.
//
// Every mutation replaces the draft with an edited clone, so a record handed
// out by Record (or captured by a persist in flight) never changes under its
// holder. Mutations schedule a debounced persist; a persist always sends the
// draft as it is when the timer fires. At most one persist is in flight. A
// persist requested meanwhile takes the single pending slot and is sent as
// soon as the in-flight one returns, so the stored copy converges on the
// last edit.
package draft

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/session"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

const (
	DefaultFieldDelay = 2000 * time.Millisecond
	DefaultListDelay  = 500 * time.Millisecond

	// savedLinger is how long Saved shows before the status drops to Idle.
	savedLinger = 2 * time.Second
)

var (
	ErrNoMember = errors.New("no member is signed in")
	ErrNotFound = errors.New("entry not found")
)

type Status int

const (
	Idle Status = iota
	Saving
	Saved
	Failed
)

func (s Status) String() string {
	switch s {
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case Failed:
		return "error"
	}
	return "idle"
}

type Options struct {
	// FieldDelay debounces text edits; ListDelay debounces list and
	// checkbox edits.
	FieldDelay time.Duration
	ListDelay  time.Duration
	Clock      Clock
}

type Editor struct {
	api        *gateway.API
	clock      Clock
	fieldDelay time.Duration
	listDelay  time.Duration

	mu        sync.Mutex
	idle      *sync.Cond
	email     string
	rec       model.MemberRecord
	status    Status
	lastErr   error
	timer     Timer
	gen       uint64
	statusGen uint64
	inFlight  bool
	pending   bool
	lastID    int64
}

func NewEditor(api *gateway.API, opts Options) *Editor {
	if opts.FieldDelay <= 0 {
		opts.FieldDelay = DefaultFieldDelay
	}
	if opts.ListDelay <= 0 {
		opts.ListDelay = DefaultListDelay
	}
	if opts.Clock == nil {
		opts.Clock = RealClock
	}
	e := &Editor{
		api:        api,
		clock:      opts.Clock,
		fieldDelay: opts.FieldDelay,
		listDelay:  opts.ListDelay,
		rec:        model.NewRecord(),
	}
	e.idle = sync.NewCond(&e.mu)
	return e
}

// Follow binds the editor to a session manager: a signed-in member's stored
// record is loaded, any other session empties the draft.
func (e *Editor) Follow(m *session.Manager) {
	e.onSession(m.Current())
	m.OnChange(e.onSession)
}

func (e *Editor) onSession(s session.Session) {
	email := s.MemberEmail()
	if email == "" || s.Login == nil {
		e.Reset()
		return
	}
	l := s.Login
	rec := model.StudentData{Name: l.Name, IC: l.IC, Form: l.Form, Profile: l.Profile, Logs: l.Logs}.Record()
	rec.ClubName = s.Club
	e.Load(email, rec)
}

// Load replaces the draft with rec, owned by email. Pending autosaves for
// the previous draft are dropped.
func (e *Editor) Load(email string, rec model.MemberRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.email = email
	e.rec = model.Normalize(rec)
	e.status, e.lastErr = Idle, nil
}

// Reset empties the draft and disables autosave.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked()
	e.email = ""
	e.rec = model.NewRecord()
	e.status, e.lastErr = Idle, nil
}

// Close stops any pending autosave without sending it.
func (e *Editor) Close() {
	e.mu.Lock()
	e.cancelLocked()
	e.mu.Unlock()
}

func (e *Editor) Record() model.MemberRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec.Clone()
}

// Status reports the autosave indicator and the error behind Failed.
func (e *Editor) Status() (Status, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.lastErr
}

func (e *Editor) SetField(name, value string) error {
	return e.mutate(e.fieldDelay, func(r *model.MemberRecord) error {
		return applyField(&r.Profile, name, value)
	})
}

func (e *Editor) SetSkill(key string, on bool) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return validate.New(errors.New("skill: empty key"), validate.FieldError{Field: "skills", Error: "this field is required"})
	}
	return e.mutate(e.listDelay, func(r *model.MemberRecord) error {
		r.Skills[key] = on
		return nil
	})
}

// UpsertLog adds l when its ID is zero and replaces the log with the same ID
// otherwise. The stored entry is returned with its ID.
func (e *Editor) UpsertLog(l model.WeeklyLog) (model.WeeklyLog, error) {
	if strings.TrimSpace(l.Date) == "" {
		return l, validate.New(errors.New("log date is required"), validate.FieldError{Field: "date", Error: "this field is required"})
	}
	l.Date = model.NormalizeDate(l.Date)
	l.Time = model.NormalizeTime(l.Time)
	err := e.mutate(e.listDelay, func(r *model.MemberRecord) error {
		if l.ID == 0 {
			l.ID = e.nextIDLocked()
			r.Logs = append(r.Logs, l)
			return nil
		}
		i := r.FindLog(l.ID)
		if i < 0 {
			return fmt.Errorf("log %d: %w", l.ID, ErrNotFound)
		}
		// the teacher's review travels with the entry
		l.TeacherNote, l.TeacherSignature = r.Logs[i].TeacherNote, r.Logs[i].TeacherSignature
		r.Logs[i] = l
		return nil
	})
	return l, err
}

func (e *Editor) DeleteLog(id int64) error {
	return e.mutate(e.listDelay, func(r *model.MemberRecord) error {
		i := r.FindLog(id)
		if i < 0 {
			return fmt.Errorf("log %d: %w", id, ErrNotFound)
		}
		r.Logs = append(r.Logs[:i], r.Logs[i+1:]...)
		return nil
	})
}

func (e *Editor) AddSchedule(s model.ScheduleEntry) (model.ScheduleEntry, error) {
	if strings.TrimSpace(s.Activity) == "" {
		return s, validate.New(errors.New("activity is required"), validate.FieldError{Field: "activity", Error: "this field is required"})
	}
	s.Date = model.NormalizeDate(s.Date)
	err := e.mutate(e.listDelay, func(r *model.MemberRecord) error {
		s.ID = e.nextIDLocked()
		r.Schedule = append(r.Schedule, s)
		return nil
	})
	return s, err
}

func (e *Editor) DeleteSchedule(id int64) error {
	return e.mutate(e.listDelay, func(r *model.MemberRecord) error {
		for i, s := range r.Schedule {
			if s.ID == id {
				r.Schedule = append(r.Schedule[:i], r.Schedule[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("schedule %d: %w", id, ErrNotFound)
	})
}

func (e *Editor) AddAchievement(a model.Achievement) (model.Achievement, error) {
	if strings.TrimSpace(a.Name) == "" {
		return a, validate.New(errors.New("achievement name is required"), validate.FieldError{Field: "name", Error: "this field is required"})
	}
	if a.Level == "" {
		a.Level = model.AchievementLevels[0]
	}
	if a.Result == "" {
		a.Result = model.AchievementResults[0]
	}
	err := e.mutate(e.listDelay, func(r *model.MemberRecord) error {
		a.ID = e.nextIDLocked()
		r.Achievements = append(r.Achievements, a)
		return nil
	})
	return a, err
}

func (e *Editor) DeleteAchievement(id int64) error {
	return e.mutate(e.listDelay, func(r *model.MemberRecord) error {
		for i, a := range r.Achievements {
			if a.ID == id {
				r.Achievements = append(r.Achievements[:i], r.Achievements[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("achievement %d: %w", id, ErrNotFound)
	})
}

// SetRules replaces the member's club rules. An empty list restores the
// club's own rules.
func (e *Editor) SetRules(groups []model.RuleGroup) error {
	return e.mutate(e.fieldDelay, func(r *model.MemberRecord) error {
		r.CustomRules = nil
		for _, g := range groups {
			r.CustomRules = append(r.CustomRules, model.RuleGroup{Title: g.Title, Items: append([]string(nil), g.Items...)})
		}
		return nil
	})
}

// Upload targets. Field targets write the returned URL into the draft; log
// targets only return it for the caller's log entry.
const (
	TargetProfile = "profile"
	TargetLogo    = "custom_logo"
	TargetFlag    = "custom_flag"
	TargetLog1    = "log1"
	TargetLog2    = "log2"
)

var targetFields = map[string]string{
	TargetProfile: "profileImage",
	TargetLogo:    "customLogo",
	TargetFlag:    "customFlag",
}

// AttachImage uploads data and returns its URL. The draft is only touched
// once the upload has succeeded.
func (e *Editor) AttachImage(ctx context.Context, target string, data []byte) (string, error) {
	field, isField := targetFields[target]
	if !isField && target != TargetLog1 && target != TargetLog2 {
		return "", fmt.Errorf("%w: upload target %q", ErrUnknownField, target)
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), model.ImageTypes...) {
		return "", validate.New(fmt.Errorf("%s is not an image", mt.String()), validate.FieldError{Field: "file", Error: "must be an image"})
	}
	url, err := e.api.UploadImage(ctx, model.UploadRequest{
		MimeType: mt.String(),
		Filename: fmt.Sprintf("%s_%d", target, e.clock.Now().UnixMilli()),
		Base64:   base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		logger.Warn("upload.failed", "target", target, "err", err)
		return "", err
	}
	if isField {
		if err := e.SetField(field, url); err != nil {
			return "", err
		}
	}
	return url, nil
}

// Save persists the draft now and reports the outcome. It waits for an
// autosave in flight instead of overlapping it.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	e.cancelLocked()
	e.mu.Unlock()
	return e.persist(ctx, true)
}

func (e *Editor) mutate(delay time.Duration, fn func(r *model.MemberRecord) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.rec.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	e.rec = next
	e.scheduleLocked(delay)
	return nil
}

func (e *Editor) nextIDLocked() int64 {
	id := e.clock.Now().UnixMilli()
	if id <= e.lastID {
		id = e.lastID + 1
	}
	e.lastID = id
	return id
}

func (e *Editor) cancelLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

// scheduleLocked restarts the debounce window. Without a member nothing is
// ever scheduled.
func (e *Editor) scheduleLocked(delay time.Duration) {
	if e.email == "" {
		return
	}
	e.cancelLocked()
	g := e.gen
	e.timer = e.clock.AfterFunc(delay, func() { e.fire(g) })
}

func (e *Editor) fire(g uint64) {
	e.mu.Lock()
	if g != e.gen {
		e.mu.Unlock()
		return
	}
	e.timer = nil
	e.mu.Unlock()
	e.persist(context.Background(), false)
}

func (e *Editor) persist(ctx context.Context, manual bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.email == "" {
		if manual {
			return ErrNoMember
		}
		return nil
	}
	if e.inFlight {
		if !manual {
			e.pending = true
			return nil
		}
		for e.inFlight {
			e.idle.Wait()
		}
		if e.email == "" {
			return ErrNoMember
		}
	}

	e.inFlight = true
	var err error
	for {
		e.pending = false
		email, rec := e.email, e.rec
		e.status = Saving
		e.mu.Unlock()
		err = e.api.SaveData(ctx, email, rec)
		e.mu.Lock()
		if email != e.email {
			// the session changed underneath; the result belongs to nobody
			break
		}
		e.settleLocked(err, manual)
		if !e.pending || e.email == "" {
			break
		}
	}
	e.inFlight = false
	e.idle.Broadcast()
	return err
}

func (e *Editor) settleLocked(err error, manual bool) {
	e.statusGen++
	if err != nil {
		e.status, e.lastErr = Failed, err
		logger.Warn("save.failed", "email", e.email, "manual", manual, "err", err)
		return
	}
	e.status, e.lastErr = Saved, nil
	logger.Debug("save.ok", "email", e.email, "manual", manual, "logs", len(e.rec.Logs))
	sg := e.statusGen
	e.clock.AfterFunc(savedLinger, func() {
		e.mu.Lock()
		if e.statusGen == sg && e.status == Saved {
			e.status = Idle
		}
		e.mu.Unlock()
	})
}

package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway/gatewaytest"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/session"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

type fakeTimer struct {
	c  *fakeClock
	at time.Time
	f  func()
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	for i, o := range t.c.timers {
		if o == t {
			t.c.timers = append(t.c.timers[:i], t.c.timers[i+1:]...)
			return true
		}
	}
	return false
}

// fakeClock fires due timers synchronously inside Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{c: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at.Before(c.timers[j].at) })
		if len(c.timers) == 0 || c.timers[0].at.After(target) {
			if target.After(c.now) {
				c.now = target
			}
			c.mu.Unlock()
			return
		}
		t := c.timers[0]
		c.timers = c.timers[1:]
		if t.at.After(c.now) {
			c.now = t.at
		}
		c.mu.Unlock()
		t.f()
	}
}

type saved struct {
	at  time.Time
	req model.SaveDataRequest
}

type harness struct {
	clock *fakeClock
	fake  *gatewaytest.Fake
	ed    *Editor

	mu    sync.Mutex
	saves []saved
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{clock: newFakeClock(), fake: gatewaytest.New()}
	h.fake.On(model.ActionSaveData, func(payload json.RawMessage) (*gateway.Response, error) {
		var req model.SaveDataRequest
		require.NoError(t, json.Unmarshal(payload, &req))
		h.mu.Lock()
		h.saves = append(h.saves, saved{at: h.clock.Now(), req: req})
		h.mu.Unlock()
		return gatewaytest.OK(nil), nil
	})
	h.ed = NewEditor(gateway.NewAPI(h.fake), Options{Clock: h.clock})
	return h
}

func (h *harness) saveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.saves)
}

func (h *harness) lastSave() saved {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.saves[len(h.saves)-1]
}

func TestDebounceCollapsesToLastState(t *testing.T) {
	h := newHarness(t)
	h.ed.Load("ali@moe-dl.edu.my", model.NewRecord())
	start := h.clock.Now()

	require.NoError(t, h.ed.SetField("studentName", "A"))
	h.clock.Advance(100 * time.Millisecond)
	require.NoError(t, h.ed.SetField("studentName", "Al"))
	h.clock.Advance(200 * time.Millisecond)
	require.NoError(t, h.ed.SetField("studentName", "Ali"))

	h.clock.Advance(1999 * time.Millisecond)
	assert.Zero(t, h.saveCount())

	h.clock.Advance(time.Millisecond)
	require.Equal(t, 1, h.saveCount())
	got := h.lastSave()
	assert.Equal(t, 2300*time.Millisecond, got.at.Sub(start))
	assert.Equal(t, "ali@moe-dl.edu.my", got.req.Email)
	assert.Equal(t, "Ali", got.req.Profile.StudentName)

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, 1, h.saveCount())
}

func TestListEditsUseShortDelay(t *testing.T) {
	h := newHarness(t)
	h.ed.Load("ali@moe-dl.edu.my", model.NewRecord())

	_, err := h.ed.UpsertLog(model.WeeklyLog{Date: "2025-03-01T00:00:00.000Z", Time: "1899-12-30T14:30:00.000Z", Place: "Dewan"})
	require.NoError(t, err)
	h.clock.Advance(499 * time.Millisecond)
	assert.Zero(t, h.saveCount())
	h.clock.Advance(time.Millisecond)
	require.Equal(t, 1, h.saveCount())

	logs := h.lastSave().req.Logs
	require.Len(t, logs, 1)
	assert.Equal(t, "2025-03-01", logs[0].Date)
	assert.Equal(t, "14:30", logs[0].Time)
	assert.Equal(t, h.clock.Now().Add(-500*time.Millisecond).UnixMilli(), logs[0].ID)
}

func TestAutosaveSuppressedWithoutMember(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.ed.SetField("studentName", "Ali"))
	_, err := h.ed.UpsertLog(model.WeeklyLog{Date: "2025-03-01"})
	require.NoError(t, err)
	h.clock.Advance(time.Minute)

	assert.Zero(t, h.fake.CallCount())
	assert.ErrorIs(t, h.ed.Save(context.Background()), ErrNoMember)
	assert.Equal(t, "Ali", h.ed.Record().StudentName)
}

func TestPendingPersistFiresAfterInFlight(t *testing.T) {
	clock := newFakeClock()
	fake := gatewaytest.New()
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	var mu sync.Mutex
	var names []string
	fake.On(model.ActionSaveData, func(payload json.RawMessage) (*gateway.Response, error) {
		var req model.SaveDataRequest
		json.Unmarshal(payload, &req)
		mu.Lock()
		names = append(names, req.Profile.StudentName)
		first := len(names) == 1
		mu.Unlock()
		started <- struct{}{}
		if first {
			<-release
		}
		return gatewaytest.OK(nil), nil
	})
	ed := NewEditor(gateway.NewAPI(fake), Options{Clock: clock})
	ed.Load("ali@moe-dl.edu.my", model.NewRecord())

	require.NoError(t, ed.SetField("studentName", "first"))
	done := make(chan struct{})
	go func() {
		clock.Advance(2 * time.Second)
		close(done)
	}()
	<-started

	st, _ := ed.Status()
	assert.Equal(t, Saving, st)

	// two more windows elapse while the first request hangs
	require.NoError(t, ed.SetField("studentName", "second"))
	clock.Advance(2 * time.Second)
	require.NoError(t, ed.SetField("studentName", "third"))
	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, fake.CallCount(), "no overlapping persist")

	close(release)
	<-done
	<-started

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "third"}, names)
	st, err := ed.Status()
	assert.Equal(t, Saved, st)
	assert.NoError(t, err)
}

func TestManualSaveReportsErrorsAutosaveDoesNot(t *testing.T) {
	clock := newFakeClock()
	fake := gatewaytest.New().On(model.ActionSaveData, gatewaytest.Reply(gateway.Failure("Sheet penuh")))
	ed := NewEditor(gateway.NewAPI(fake), Options{Clock: clock})
	ed.Load("ali@moe-dl.edu.my", model.NewRecord())

	require.NoError(t, ed.SetField("address", "Kg. Ulu"))
	clock.Advance(2 * time.Second)
	st, err := ed.Status()
	assert.Equal(t, Failed, st)
	assert.True(t, gateway.IsApplication(err))

	err = ed.Save(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sheet penuh")
	assert.Equal(t, 2, fake.CallCount())
}

func TestManualSaveCancelsPendingAutosave(t *testing.T) {
	h := newHarness(t)
	h.ed.Load("ali@moe-dl.edu.my", model.NewRecord())

	require.NoError(t, h.ed.SetField("phone", "012"))
	require.NoError(t, h.ed.Save(context.Background()))
	assert.Equal(t, 1, h.saveCount())
	st, _ := h.ed.Status()
	assert.Equal(t, Saved, st)

	h.clock.Advance(5 * time.Second)
	assert.Equal(t, 1, h.saveCount())
	st, _ = h.ed.Status()
	assert.Equal(t, Idle, st)
}

func TestCopyOnWrite(t *testing.T) {
	h := newHarness(t)
	h.ed.Load("ali@moe-dl.edu.my", model.NewRecord())

	before := h.ed.Record()
	require.NoError(t, h.ed.SetSkill("Komunikasi", true))
	_, err := h.ed.AddAchievement(model.Achievement{Name: "Badminton MSSD"})
	require.NoError(t, err)

	assert.False(t, before.Skills["Komunikasi"])
	assert.Empty(t, before.Achievements)

	after := h.ed.Record()
	assert.True(t, after.Skills["Komunikasi"])
	require.Len(t, after.Achievements, 1)
	assert.Equal(t, "Sekolah", after.Achievements[0].Level)
	assert.Equal(t, "Johan", after.Achievements[0].Result)

	after.Skills["Kepimpinan"] = true
	assert.False(t, h.ed.Record().Skills["Kepimpinan"])
}

func TestFieldRules(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.ed.SetField("ic", "1"), ErrReadOnlyField)
	assert.ErrorIs(t, h.ed.SetField("teacherSignature", "x"), ErrReadOnlyField)
	assert.ErrorIs(t, h.ed.SetField("nickname", "x"), ErrUnknownField)
	assert.True(t, validate.IsValidation(h.ed.SetField("year", "tahun ini")))

	require.NoError(t, h.ed.SetField("year", "2026"))
	require.NoError(t, h.ed.SetField("dob", "2010-05-04T16:00:00.000Z"))
	r := h.ed.Record()
	assert.Equal(t, 2026, r.Year)
	assert.Equal(t, "2010-05-04", r.DOB)
}

func TestLogLifecycle(t *testing.T) {
	h := newHarness(t)
	h.ed.Load("ali@moe-dl.edu.my", model.MemberRecord{Logs: []model.WeeklyLog{
		{ID: 7, Date: "2025-01-10", TeacherNote: "Bagus", TeacherSignature: "sig"},
	}})

	_, err := h.ed.UpsertLog(model.WeeklyLog{})
	assert.True(t, validate.IsValidation(err))

	updated, err := h.ed.UpsertLog(model.WeeklyLog{ID: 7, Date: "2025-01-11", Content: "Latihan"})
	require.NoError(t, err)
	assert.Equal(t, "Bagus", updated.TeacherNote)
	assert.Equal(t, "sig", h.ed.Record().Logs[0].TeacherSignature)

	a, err := h.ed.UpsertLog(model.WeeklyLog{Date: "2025-01-12"})
	require.NoError(t, err)
	b, err := h.ed.UpsertLog(model.WeeklyLog{Date: "2025-01-13"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, h.ed.DeleteLog(7))
	assert.ErrorIs(t, h.ed.DeleteLog(7), ErrNotFound)
	_, err = h.ed.UpsertLog(model.WeeklyLog{ID: 7, Date: "2025-01-11"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, h.ed.Record().Logs, 2)
}

func TestScheduleAndRules(t *testing.T) {
	h := newHarness(t)
	s, err := h.ed.AddSchedule(model.ScheduleEntry{Date: "2025-02-01", Activity: "Mesyuarat Agung", Place: "Bilik Gerakan"})
	require.NoError(t, err)
	require.NoError(t, h.ed.SetRules([]model.RuleGroup{{Title: "1. Am", Items: []string{"Hadir"}}}))

	r := h.ed.Record()
	require.Len(t, r.Schedule, 1)
	require.Len(t, r.CustomRules, 1)

	require.NoError(t, h.ed.DeleteSchedule(s.ID))
	assert.ErrorIs(t, h.ed.DeleteSchedule(s.ID), ErrNotFound)
	require.NoError(t, h.ed.SetRules(nil))
	assert.Nil(t, h.ed.Record().CustomRules)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestAttachImage(t *testing.T) {
	h := newHarness(t)
	h.ed.Load("ali@moe-dl.edu.my", model.NewRecord())
	h.fake.On(model.ActionUploadImage, func(payload json.RawMessage) (*gateway.Response, error) {
		var req model.UploadRequest
		json.Unmarshal(payload, &req)
		return &gateway.Response{Status: model.StatusSuccess, URL: "http://localhost:9871/uploads/" + req.Filename + ".png"}, nil
	})

	url, err := h.ed.AttachImage(context.Background(), TargetProfile, pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, url, h.ed.Record().ProfileImage)

	var req model.UploadRequest
	require.NoError(t, h.fake.Calls(model.ActionUploadImage)[0].Decode(&req))
	assert.Equal(t, "image/png", req.MimeType)
	assert.Contains(t, req.Filename, "profile_")

	logURL, err := h.ed.AttachImage(context.Background(), TargetLog1, pngBytes(t))
	require.NoError(t, err)
	assert.NotEmpty(t, logURL)
	assert.Equal(t, url, h.ed.Record().ProfileImage)

	_, err = h.ed.AttachImage(context.Background(), TargetFlag, []byte("hello, not an image"))
	assert.True(t, validate.IsValidation(err))
	_, err = h.ed.AttachImage(context.Background(), TargetFlag, []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`))
	assert.True(t, validate.IsValidation(err), "vector images are refused")
	assert.Empty(t, h.ed.Record().CustomFlag)
	assert.Len(t, h.fake.Calls(model.ActionUploadImage), 2)
}

func TestAttachImageFailureLeavesDraft(t *testing.T) {
	h := newHarness(t)
	h.ed.Load("ali@moe-dl.edu.my", model.NewRecord())
	h.fake.On(model.ActionUploadImage, gatewaytest.Fail(errors.New("offline")))

	_, err := h.ed.AttachImage(context.Background(), TargetLogo, pngBytes(t))
	require.Error(t, err)
	assert.True(t, gateway.IsTransport(err))
	assert.Empty(t, h.ed.Record().CustomLogo)
}

func TestFollowSession(t *testing.T) {
	h := newHarness(t)
	h.fake.On(model.ActionLogin, gatewaytest.Reply(gatewaytest.OK(model.LoginResponse{
		Email: "ali@moe-dl.edu.my", Name: "Ali bin Abu", IC: "1", Form: "2 Arif",
		Profile: &model.Profile{Address: "Kg. Ulu", Skills: map[string]bool{"Memanah": true}},
		Logs:    []model.WeeklyLog{{ID: 1, Date: "2025-01-01T16:00:00.000Z"}},
	})))
	m := session.NewManager(gateway.NewAPI(h.fake), &session.MemoryTokenStore{}, "@moe-dl.edu.my")
	h.ed.Follow(m)

	require.NoError(t, m.SelectClub("Badminton"))
	require.NoError(t, m.SelectRole(model.RoleMember))
	_, err := m.Login(context.Background(), "ali@moe-dl.edu.my", "1")
	require.NoError(t, err)

	r := h.ed.Record()
	assert.Equal(t, "Ali bin Abu", r.StudentName)
	assert.Equal(t, "Kg. Ulu", r.Address)
	assert.Equal(t, "Badminton", r.ClubName)
	assert.Equal(t, "2025-01-01", r.Logs[0].Date)
	assert.True(t, r.Skills["Memanah"])
	assert.Contains(t, r.Skills, "Komunikasi")

	require.NoError(t, h.ed.SetField("phone", "019"))
	require.NoError(t, m.Logout())
	h.clock.Advance(time.Minute)
	assert.Zero(t, h.saveCount(), "logout drops the pending autosave")
	assert.Empty(t, h.ed.Record().StudentName)
}

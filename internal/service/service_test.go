package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/config"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/store"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

const domain = "@moe-dl.edu.my"

type fixture struct {
	store   *store.MemoryStore
	auth    *AuthService
	records *RecordService
	teacher *TeacherService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemoryStore()
	f := &fixture{store: s, auth: NewAuthService(s, domain), records: NewRecordService(s), teacher: NewTeacherService(s)}

	ctx := context.Background()
	_, err := f.auth.Register(ctx, model.RegisterRequest{Email: "Ali@moe-dl.edu.my", IC: "080101-05-1234", Name: "Ali", Form: "3 Arif", Role: model.RoleMember, Club: "badminton"})
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, model.RegisterRequest{Email: "lim@moe-dl.edu.my", IC: "700101-05-1111", Name: "Cikgu Lim", Role: model.RoleTeacher, Club: "Badminton"})
	require.NoError(t, err)
	return f
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec, err := f.store.GetRecord(ctx, "ali@moe-dl.edu.my")
	require.NoError(t, err)
	assert.Equal(t, "Ali", rec.StudentName)
	assert.Equal(t, "Badminton", rec.ClubName, "club name is canonicalized")
	assert.Len(t, rec.Skills, len(model.DefaultSkills))

	_, err = f.store.GetRecord(ctx, "lim@moe-dl.edu.my")
	assert.ErrorIs(t, err, store.ErrNotFound, "teachers get no member record")

	tests := []struct {
		name string
		req  model.RegisterRequest
		want error
	}{
		{"duplicate", model.RegisterRequest{Email: "ALI@moe-dl.edu.my", IC: "1", Name: "Ali", Role: model.RoleMember, Club: "Badminton"}, ErrRegistered},
		{"admin", model.RegisterRequest{Email: "boss@moe-dl.edu.my", IC: "1", Name: "Boss", Role: model.RoleAdmin, Club: "Badminton"}, ErrAdminSignup},
		{"club", model.RegisterRequest{Email: "x@moe-dl.edu.my", IC: "1", Name: "X", Role: model.RoleMember, Club: "Catur"}, ErrUnknownClub},
		{"domain", model.RegisterRequest{Email: "x@gmail.com", IC: "1", Name: "X", Role: model.RoleMember, Club: "Badminton"}, validate.ErrEmailDomain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err = f.auth.Register(ctx, model.RegisterRequest{Email: "y@moe-dl.edu.my", Role: model.RoleMember, Club: "Badminton"})
	assert.True(t, validate.IsValidation(err))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.auth.Login(ctx, model.LoginRequest{Email: " ALI@moe-dl.edu.my", IC: "080101051234"})
	require.NoError(t, err)
	assert.Equal(t, "ali@moe-dl.edu.my", resp.Email)
	assert.Equal(t, model.RoleMember, resp.Role)
	assert.Equal(t, "Badminton", resp.Club)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "Ali", resp.Profile.StudentName)
	assert.NotNil(t, resp.Logs)

	resp, err = f.auth.Login(ctx, model.LoginRequest{Email: "lim@moe-dl.edu.my", IC: "700101-05-1111"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, resp.Role)
	assert.Nil(t, resp.Profile)

	_, err = f.auth.Login(ctx, model.LoginRequest{Email: "ali@moe-dl.edu.my", IC: "999"})
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = f.auth.Login(ctx, model.LoginRequest{Email: "nobody@moe-dl.edu.my", IC: "1"})
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.auth.Seed(ctx, model.Account{Email: "Admin@moe-dl.edu.my", Name: "Admin", IC: "1", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = f.auth.Seed(ctx, model.Account{Email: "admin@moe-dl.edu.my", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, created)
	_, err = f.auth.Seed(ctx, model.Account{Email: "x@moe-dl.edu.my", Role: "pengetua"})
	assert.Error(t, err)
}

func seedLogs(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	rec := model.NewRecord()
	rec.StudentName = "Ali"
	rec.Address = "Kg. Ulu"
	rec.Teacher = "LIM@moe-dl.edu.my"
	rec.Logs = []model.WeeklyLog{
		{ID: 5, Date: "2025-01-05T00:00:00.000Z", Content: "Latihan asas"},
		{ID: 7, Date: "2025-01-07", Content: "Perlawanan"},
		{ID: 9, Date: "2025-01-09", Time: "1899-12-30T14:00:00.000Z", Content: "Kem"},
	}
	require.NoError(t, f.records.SaveData(ctx, model.SaveDataRequest{Email: "ali@moe-dl.edu.my", Profile: rec.Profile, Logs: rec.Logs}))
	require.NoError(t, f.records.SaveLogReview(ctx, model.LogReviewRequest{
		Email: "ali@moe-dl.edu.my", LogID: 5, TeacherNote: "ok", TeacherSignature: "data:image/png;base64,FIVE",
	}))
	require.NoError(t, f.records.SaveTeacherReview(ctx, model.TeacherReviewRequest{Email: "ali@moe-dl.edu.my", TeacherComment: "Lama"}))
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestSaveLogReviewMergesOneLog(t *testing.T) {
	f := newFixture(t)
	seedLogs(t, f)
	ctx := context.Background()

	before, err := f.store.GetRecord(ctx, "ali@moe-dl.edu.my")
	require.NoError(t, err)

	err = f.records.SaveLogReview(ctx, model.LogReviewRequest{
		Email: "ali@moe-dl.edu.my", LogID: 7, TeacherNote: "Baik", TeacherSignature: "data:image/png;base64,SEVEN",
	})
	require.NoError(t, err)

	after, err := f.store.GetRecord(ctx, "ali@moe-dl.edu.my")
	require.NoError(t, err)
	require.Len(t, after.Logs, 3)
	assert.Equal(t, mustJSON(t, before.Logs[0]), mustJSON(t, after.Logs[0]))
	assert.Equal(t, mustJSON(t, before.Logs[2]), mustJSON(t, after.Logs[2]))
	assert.Equal(t, "Baik", after.Logs[1].TeacherNote)
	assert.Equal(t, "Perlawanan", after.Logs[1].Content)
	assert.Equal(t, mustJSON(t, before.Profile), mustJSON(t, after.Profile))

	err = f.records.SaveLogReview(ctx, model.LogReviewRequest{Email: "ali@moe-dl.edu.my", LogID: 8})
	assert.ErrorIs(t, err, ErrLogNotFound)
	err = f.records.SaveLogReview(ctx, model.LogReviewRequest{Email: "ghost@moe-dl.edu.my", LogID: 7})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestSaveTeacherReviewTouchesOnlyClosing(t *testing.T) {
	f := newFixture(t)
	seedLogs(t, f)
	ctx := context.Background()
	before, _ := f.store.GetRecord(ctx, "ali@moe-dl.edu.my")

	require.NoError(t, f.records.SaveTeacherReview(ctx, model.TeacherReviewRequest{
		Email: "ali@moe-dl.edu.my", TeacherComment: "Tahniah", TeacherSignature: "data:image/png;base64,SIG",
	}))

	after, _ := f.store.GetRecord(ctx, "ali@moe-dl.edu.my")
	assert.Equal(t, "Tahniah", after.TeacherComment)
	assert.Equal(t, "data:image/png;base64,SIG", after.TeacherSignature)

	after.TeacherComment, after.TeacherSignature = before.TeacherComment, before.TeacherSignature
	assert.Equal(t, mustJSON(t, before), mustJSON(t, after))

	err := f.records.SaveTeacherReview(ctx, model.TeacherReviewRequest{Email: "lim@moe-dl.edu.my"})
	assert.ErrorIs(t, err, ErrMemberNotFound, "staff accounts have no closing page")
}

func TestMemberSaveKeepsReview(t *testing.T) {
	f := newFixture(t)
	seedLogs(t, f)
	ctx := context.Background()
	const ali = "ali@moe-dl.edu.my"

	// the member's draft was loaded before the teacher reviewed
	data, err := f.records.GetStudentData(ctx, ali)
	require.NoError(t, err)
	stale := data.Record()

	require.NoError(t, f.records.SaveLogReview(ctx, model.LogReviewRequest{Email: ali, LogID: 7, TeacherNote: "Baik", TeacherSignature: "SIG7"}))
	require.NoError(t, f.records.SaveTeacherReview(ctx, model.TeacherReviewRequest{Email: ali, TeacherComment: "Tahniah", TeacherSignature: "SIGC"}))

	stale.Address = "Kg. Baru"
	stale.TeacherComment = "forged"
	stale.Logs[1].Content = "Perlawanan akhir"
	stale.Logs[0].TeacherNote = ""
	stale.Logs = append(stale.Logs, model.WeeklyLog{ID: 11, Date: "2025-01-11", TeacherNote: "forged", TeacherSignature: "forged"})
	require.NoError(t, f.records.SaveData(ctx, model.SaveDataRequest{Email: ali, Profile: stale.Profile, Logs: stale.Logs}))

	got, err := f.store.GetRecord(ctx, ali)
	require.NoError(t, err)
	assert.Equal(t, "Kg. Baru", got.Address)
	assert.Equal(t, "Tahniah", got.TeacherComment)
	assert.Equal(t, "SIGC", got.TeacherSignature)
	require.Len(t, got.Logs, 4)
	assert.Equal(t, "ok", got.Logs[0].TeacherNote)
	assert.Equal(t, "data:image/png;base64,FIVE", got.Logs[0].TeacherSignature)
	assert.Equal(t, "Perlawanan akhir", got.Logs[1].Content)
	assert.Equal(t, "Baik", got.Logs[1].TeacherNote)
	assert.Equal(t, "SIG7", got.Logs[1].TeacherSignature)
	assert.Empty(t, got.Logs[3].TeacherNote, "a member cannot review a new log")
	assert.Empty(t, got.Logs[3].TeacherSignature)
}

func TestMemberSavesInterleavedWithReviews(t *testing.T) {
	f := newFixture(t)
	seedLogs(t, f)
	ctx := context.Background()
	const ali = "ali@moe-dl.edu.my"

	data, err := f.records.GetStudentData(ctx, ali)
	require.NoError(t, err)
	draft := data.Record()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(3)
		go func() {
			defer wg.Done()
			rec := draft.Clone()
			rec.Address = fmt.Sprintf("Alamat %d", i)
			rec.Logs[2].Reflection = fmt.Sprintf("refleksi %d", i)
			assert.NoError(t, f.records.SaveData(ctx, model.SaveDataRequest{Email: ali, Profile: rec.Profile, Logs: rec.Logs}))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, f.records.SaveTeacherReview(ctx, model.TeacherReviewRequest{Email: ali, TeacherComment: "Tahniah", TeacherSignature: "SIGC"}))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, f.records.SaveLogReview(ctx, model.LogReviewRequest{Email: ali, LogID: 7, TeacherNote: "Baik", TeacherSignature: "SIG7"}))
		}()
	}
	wg.Wait()

	got, err := f.store.GetRecord(ctx, ali)
	require.NoError(t, err)
	// teacher side: every review survived whatever order the saves ran in
	assert.Equal(t, "Tahniah", got.TeacherComment)
	assert.Equal(t, "SIGC", got.TeacherSignature)
	require.Len(t, got.Logs, 3)
	assert.Equal(t, "Baik", got.Logs[1].TeacherNote)
	assert.Equal(t, "SIG7", got.Logs[1].TeacherSignature)
	assert.Equal(t, "ok", got.Logs[0].TeacherNote)
	// member side: one member save won in full
	assert.True(t, strings.HasPrefix(got.Address, "Alamat "))
	assert.Equal(t, "refleksi "+strings.TrimPrefix(got.Address, "Alamat "), got.Logs[2].Reflection)
	assert.Equal(t, "Kg. Ulu", draft.Address, "the draft itself is untouched")
}

func TestGetStudentDataAndPrintRecord(t *testing.T) {
	f := newFixture(t)
	seedLogs(t, f)
	ctx := context.Background()

	data, err := f.records.GetStudentData(ctx, "ali@moe-dl.edu.my")
	require.NoError(t, err)
	assert.Equal(t, "080101-05-1234", data.IC)
	assert.Equal(t, "2025-01-05T00:00:00.000Z", data.Logs[0].Date, "stored as sent")

	rec, err := f.records.Record(ctx, "ali@moe-dl.edu.my")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-05", rec.Logs[0].Date)
	assert.Equal(t, "14:00", rec.Logs[2].Time)
	assert.Equal(t, "Badminton", rec.ClubName)

	_, err = f.records.GetStudentData(ctx, "not-an-email")
	assert.True(t, validate.IsValidation(err))
}

func TestTeacherViews(t *testing.T) {
	f := newFixture(t)
	seedLogs(t, f)
	ctx := context.Background()

	list, err := f.teacher.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.TeacherListItem{{Name: "Cikgu Lim", Email: "lim@moe-dl.edu.my"}}, list)

	students, err := f.teacher.Students(ctx, "Lim@moe-dl.edu.my")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ali", students[0].Name)
	assert.Equal(t, "3 Arif", students[0].Form)
	assert.Equal(t, 3, students[0].LogCount)
	assert.True(t, students[0].IsReviewed)

	p, err := f.teacher.Profile(ctx, "lim@moe-dl.edu.my")
	require.NoError(t, err)
	assert.Equal(t, "Cikgu Lim", p.Name)
	assert.Empty(t, p.School)

	p.School = "SMA Ulu Jempol"
	p.DOB = "1970-01-01T00:00:00.000Z"
	require.NoError(t, f.teacher.SaveProfile(ctx, p))
	p, err = f.teacher.Profile(ctx, "lim@moe-dl.edu.my")
	require.NoError(t, err)
	assert.Equal(t, "1970-01-01", p.DOB)

	err = f.teacher.SaveProfile(ctx, model.TeacherProfile{Email: "lim@moe-dl.edu.my"})
	assert.True(t, validate.IsValidation(err), "name is required")
}

func TestAdminData(t *testing.T) {
	f := newFixture(t)
	seedLogs(t, f)
	ctx := context.Background()
	require.NoError(t, f.teacher.SaveProfile(ctx, model.TeacherProfile{Email: "lim@moe-dl.edu.my", Name: "Cikgu Lim", RankKRS: "Kapten"}))

	data, err := f.teacher.AdminData(ctx)
	require.NoError(t, err)
	require.Len(t, data.Students, 1)
	require.Len(t, data.Teachers, 1)
	assert.Equal(t, "lim@moe-dl.edu.my", data.Students[0].Teacher)
	assert.Equal(t, "Kapten", data.Teachers[0].Rank)

	var buf bytes.Buffer
	require.NoError(t, f.teacher.ExportXLSX(ctx, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")), "xlsx is a zip")
}

func pngOfWidth(t *testing.T, w, h int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestUpload(t *testing.T) {
	dir := t.TempDir()
	svc := NewUploadService(config.UploadConfig{Dir: dir, MaxWidth: 100, MaxBytes: 1 << 20}, "http://localhost:9871/")
	ctx := context.Background()

	u, err := svc.Save(ctx, model.UploadRequest{MimeType: "image/png", Filename: "gambar saya.png", Base64: "data:image/png;base64," + pngOfWidth(t, 400, 200)})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "http://localhost:9871/uploads/"))
	assert.True(t, strings.HasSuffix(u, "-gambar_saya.png"))

	name := strings.TrimPrefix(u, "http://localhost:9871/uploads/")
	raw, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	_, err = svc.Save(ctx, model.UploadRequest{MimeType: "image/png", Filename: "x.png", Base64: base64.StdEncoding.EncodeToString([]byte("hello, not an image"))})
	assert.ErrorIs(t, err, ErrNotImage)
	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`
	_, err = svc.Save(ctx, model.UploadRequest{MimeType: "image/png", Filename: "x.png", Base64: base64.StdEncoding.EncodeToString([]byte(svg))})
	assert.ErrorIs(t, err, ErrNotImage, "vector images are refused")
	_, err = svc.Save(ctx, model.UploadRequest{Filename: "x.png", Base64: "%%%"})
	assert.ErrorIs(t, err, ErrBadBase64)

	small := NewUploadService(config.UploadConfig{Dir: dir, MaxBytes: 10}, "")
	_, err = small.Save(ctx, model.UploadRequest{Filename: "x.png", Base64: pngOfWidth(t, 10, 10)})
	assert.ErrorIs(t, err, ErrTooLarge)
}

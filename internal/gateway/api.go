package gateway

import (
	"context"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

// API wraps an Invoker with one typed method per action.
type API struct {
	inv Invoker
}

func NewAPI(inv Invoker) *API { return &API{inv: inv} }

type tokenHolder interface{ SetToken(string) }

func (a *API) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	var out model.LoginResponse
	if _, err := Do(ctx, a.inv, model.ActionLogin, req, &out); err != nil {
		return model.LoginResponse{}, err
	}
	if th, ok := a.inv.(tokenHolder); ok {
		th.SetToken(out.Token)
	}
	return out, nil
}

// ClearToken drops the bearer token so later calls go out anonymous.
func (a *API) ClearToken() {
	if th, ok := a.inv.(tokenHolder); ok {
		th.SetToken("")
	}
}

// Register returns the server's confirmation message.
func (a *API) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	resp, err := Do(ctx, a.inv, model.ActionRegister, req, nil)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *API) GetTeacherList(ctx context.Context) ([]model.TeacherListItem, error) {
	var out []model.TeacherListItem
	_, err := Do(ctx, a.inv, model.ActionGetTeacherList, struct{}{}, &out)
	return out, err
}

func (a *API) GetTeacherStudents(ctx context.Context, teacherEmail string) ([]model.DashboardStudent, error) {
	var out []model.DashboardStudent
	_, err := Do(ctx, a.inv, model.ActionGetTeacherStudents, model.EmailRequest{Email: teacherEmail}, &out)
	return out, err
}

func (a *API) GetAdminData(ctx context.Context) (model.AdminData, error) {
	var out model.AdminData
	_, err := Do(ctx, a.inv, model.ActionGetAdminData, struct{}{}, &out)
	return out, err
}

// SaveData sends a member's whole record, split into profile and logs.
func (a *API) SaveData(ctx context.Context, email string, r model.MemberRecord) error {
	_, err := Do(ctx, a.inv, model.ActionSaveData, model.SaveDataRequest{
		Email:   email,
		Profile: r.Profile,
		Logs:    r.Logs,
	}, nil)
	return err
}

// UploadImage returns the stable URL of the stored image.
func (a *API) UploadImage(ctx context.Context, req model.UploadRequest) (string, error) {
	resp, err := Do(ctx, a.inv, model.ActionUploadImage, req, nil)
	if err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (a *API) GetStudentData(ctx context.Context, memberEmail string) (model.StudentData, error) {
	var out model.StudentData
	_, err := Do(ctx, a.inv, model.ActionGetStudentData, model.EmailRequest{Email: memberEmail}, &out)
	return out, err
}

func (a *API) SaveTeacherReview(ctx context.Context, req model.TeacherReviewRequest) error {
	_, err := Do(ctx, a.inv, model.ActionSaveTeacherReview, req, nil)
	return err
}

func (a *API) SaveLogReview(ctx context.Context, req model.LogReviewRequest) error {
	_, err := Do(ctx, a.inv, model.ActionSaveLogReview, req, nil)
	return err
}

func (a *API) GetTeacherProfile(ctx context.Context, email string) (model.TeacherProfile, error) {
	var out model.TeacherProfile
	_, err := Do(ctx, a.inv, model.ActionGetTeacherProfile, model.EmailRequest{Email: email}, &out)
	return out, err
}

func (a *API) SaveTeacherProfile(ctx context.Context, p model.TeacherProfile) error {
	_, err := Do(ctx, a.inv, model.ActionSaveTeacherProfile, p, nil)
	return err
}

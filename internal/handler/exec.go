package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/middleware"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/service"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

var errForbidden = errors.New("Akses tidak dibenarkan")

const errInternal = "Ralat pelayan. Sila cuba lagi."

type actionFunc func(c *gin.Context, data json.RawMessage) (*gateway.Response, error)

type action struct {
	fn actionFunc
	// roles allowed to call; nil means anyone, signed in or not
	roles []string
}

var (
	anyone = []string(nil)
	signed = []string{model.RoleMember, model.RoleTeacher, model.RoleAdmin}
	staff  = []string{model.RoleTeacher, model.RoleAdmin}
	admin  = []string{model.RoleAdmin}
)

// ExecHandler serves the single action endpoint.
type ExecHandler struct {
	actions map[string]action
}

func NewExecHandler(auth *AuthHandler, records *RecordHandler) *ExecHandler {
	return &ExecHandler{actions: map[string]action{
		model.ActionLogin:              {auth.Login, anyone},
		model.ActionRegister:           {auth.Register, anyone},
		model.ActionGetTeacherList:     {records.TeacherList, anyone},
		model.ActionGetTeacherStudents: {records.TeacherStudents, staff},
		model.ActionGetAdminData:       {records.AdminData, admin},
		model.ActionSaveData:           {records.SaveData, []string{model.RoleMember}},
		model.ActionUploadImage:        {records.UploadImage, signed},
		model.ActionGetStudentData:     {records.StudentData, signed},
		model.ActionSaveTeacherReview:  {records.SaveTeacherReview, staff},
		model.ActionSaveLogReview:      {records.SaveLogReview, staff},
		model.ActionGetTeacherProfile:  {records.TeacherProfile, staff},
		model.ActionSaveTeacherProfile: {records.SaveTeacherProfile, staff},
	}}
}

// Exec answers every action with HTTP 200 and a status envelope. Only a
// missing or invalid token on a protected action is a 401.
func (h *ExecHandler) Exec(c *gin.Context) {
	var req gateway.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gateway.Failure("invalid request"))
		return
	}
	a, ok := h.actions[req.Action]
	if !ok {
		c.JSON(http.StatusOK, gateway.Failure("Tindakan tidak dikenali: "+req.Action))
		return
	}
	if a.roles != nil {
		_, role, ok := middleware.Identity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gateway.Failure("Sila log masuk semula"))
			return
		}
		if !slices.Contains(a.roles, role) {
			c.JSON(http.StatusOK, gateway.Failure(errForbidden.Error()))
			return
		}
	}

	resp, err := a.fn(c, req.Data)
	if err != nil {
		c.JSON(http.StatusOK, failure(req.Action, err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func failure(act string, err error) *gateway.Response {
	if errors.Is(err, errForbidden) || service.Public(err) {
		return gateway.Failure(err.Error())
	}
	logger.Error("exec.failed", "action", act, "err", err)
	return gateway.Failure(errInternal)
}

// bind decodes an action payload. A missing payload decodes as the zero
// value and is left to validation.
func bind[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 || string(data) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, validate.New(errors.New("payload: "+err.Error()), validate.FieldError{Field: "data", Error: "malformed"})
	}
	return v, nil
}

package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/middleware"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/service"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

type RecordHandler struct {
	records  *service.RecordService
	teachers *service.TeacherService
	uploads  *service.UploadService
}

func NewRecordHandler(records *service.RecordService, teachers *service.TeacherService, uploads *service.UploadService) *RecordHandler {
	return &RecordHandler{records: records, teachers: teachers, uploads: uploads}
}

// ownOrStaff lets members act on their own email only.
func ownOrStaff(c *gin.Context, email string) error {
	me, role, _ := middleware.Identity(c)
	if role == model.RoleMember && validate.CleanEmail(email) != me {
		return errForbidden
	}
	return nil
}

// ownOrAdmin lets teachers act on their own email only.
func ownOrAdmin(c *gin.Context, email string) error {
	me, role, _ := middleware.Identity(c)
	if role != model.RoleAdmin && validate.CleanEmail(email) != me {
		return errForbidden
	}
	return nil
}

func (h *RecordHandler) TeacherList(c *gin.Context, _ json.RawMessage) (*gateway.Response, error) {
	list, err := h.teachers.List(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return gateway.Success(list)
}

// TeacherStudents lists a teacher's own members; admins may ask for any
// teacher.
func (h *RecordHandler) TeacherStudents(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.EmailRequest](data)
	if err != nil {
		return nil, err
	}
	if err := ownOrAdmin(c, req.Email); err != nil {
		return nil, err
	}
	students, err := h.teachers.Students(c.Request.Context(), req.Email)
	if err != nil {
		return nil, err
	}
	return gateway.Success(students)
}

func (h *RecordHandler) AdminData(c *gin.Context, _ json.RawMessage) (*gateway.Response, error) {
	data, err := h.teachers.AdminData(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return gateway.Success(data)
}

func (h *RecordHandler) SaveData(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.SaveDataRequest](data)
	if err != nil {
		return nil, err
	}
	if err := ownOrStaff(c, req.Email); err != nil {
		return nil, err
	}
	if err := h.records.SaveData(c.Request.Context(), req); err != nil {
		return nil, err
	}
	logger.Debug("save.ok", "email", req.Email, "logs", len(req.Logs))
	return gateway.Success(nil)
}

func (h *RecordHandler) UploadImage(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.UploadRequest](data)
	if err != nil {
		return nil, err
	}
	u, err := h.uploads.Save(c.Request.Context(), req)
	if err != nil {
		return nil, err
	}
	return &gateway.Response{Status: model.StatusSuccess, URL: u}, nil
}

func (h *RecordHandler) StudentData(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.EmailRequest](data)
	if err != nil {
		return nil, err
	}
	if err := ownOrStaff(c, req.Email); err != nil {
		return nil, err
	}
	out, err := h.records.GetStudentData(c.Request.Context(), validate.CleanEmail(req.Email))
	if err != nil {
		return nil, err
	}
	return gateway.Success(out)
}

func (h *RecordHandler) SaveTeacherReview(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.TeacherReviewRequest](data)
	if err != nil {
		return nil, err
	}
	if err := h.records.SaveTeacherReview(c.Request.Context(), req); err != nil {
		return nil, err
	}
	reviewer, _, _ := middleware.Identity(c)
	logger.Info("review.closing_saved", "member", req.Email, "reviewer", reviewer)
	return gateway.Success(nil)
}

func (h *RecordHandler) SaveLogReview(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.LogReviewRequest](data)
	if err != nil {
		return nil, err
	}
	if err := h.records.SaveLogReview(c.Request.Context(), req); err != nil {
		return nil, err
	}
	reviewer, _, _ := middleware.Identity(c)
	logger.Info("review.log_saved", "member", req.Email, "log", req.LogID, "reviewer", reviewer)
	return gateway.Success(nil)
}

func (h *RecordHandler) TeacherProfile(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	req, err := bind[model.EmailRequest](data)
	if err != nil {
		return nil, err
	}
	if err := ownOrAdmin(c, req.Email); err != nil {
		return nil, err
	}
	p, err := h.teachers.Profile(c.Request.Context(), req.Email)
	if err != nil {
		return nil, err
	}
	return gateway.Success(p)
}

func (h *RecordHandler) SaveTeacherProfile(c *gin.Context, data json.RawMessage) (*gateway.Response, error) {
	p, err := bind[model.TeacherProfile](data)
	if err != nil {
		return nil, err
	}
	if err := ownOrAdmin(c, p.Email); err != nil {
		return nil, err
	}
	if err := h.teachers.SaveProfile(c.Request.Context(), p); err != nil {
		return nil, err
	}
	return gateway.Success(nil)
}

package dashboard

import (
	"context"
	"errors"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/session"
)

var ErrNotStaff = errors.New("dashboard is for teachers and admins")

// View is a fetched batch. A failed fetch leaves it empty; Refresh is the
// only retry.
type View struct {
	api  *gateway.API
	sess session.Session

	Students []model.DashboardStudent
	Teachers []model.DashboardTeacher
}

func NewView(api *gateway.API, s session.Session) *View {
	return &View{api: api, sess: s}
}

// Refresh fetches the batch for the session's role: a teacher's assigned
// members, or everything for an admin.
func (v *View) Refresh(ctx context.Context) error {
	switch v.sess.State() {
	case session.Teacher:
		students, err := v.api.GetTeacherStudents(ctx, v.sess.Identity.Email)
		if err != nil {
			v.Students, v.Teachers = nil, nil
			logger.Warn("dashboard.fetch_failed", "role", "guru", "err", err)
			return err
		}
		v.Students, v.Teachers = students, nil
	case session.Admin:
		data, err := v.api.GetAdminData(ctx)
		if err != nil {
			v.Students, v.Teachers = nil, nil
			logger.Warn("dashboard.fetch_failed", "role", "admin", "err", err)
			return err
		}
		v.Students, v.Teachers = data.Students, data.Teachers
	default:
		return ErrNotStaff
	}
	return nil
}

func (v *View) Groups(term string) []ClassGroup {
	return GroupByClass(Search(v.Students, term))
}

// Summary is only meaningful for an admin batch.
func (v *View) Summary() Summary {
	return Summarize(model.AdminData{Students: v.Students, Teachers: v.Teachers})
}

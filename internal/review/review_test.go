package review

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway/gatewaytest"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

const member = "ali@moe-dl.edu.my"

func studentData() model.StudentData {
	return model.StudentData{
		Name: "Ali", IC: "1", Form: "3 Arif",
		Profile: &model.Profile{Address: "Kg. Ulu", TeacherComment: "Lama", TeacherSignature: "data:image/png;base64,OLD"},
		Logs: []model.WeeklyLog{
			{ID: 5, Date: "2025-01-05T00:00:00.000Z"},
			{ID: 7, Date: "2025-01-07", TeacherNote: "draf", TeacherSignature: "data:image/png;base64,SEVEN"},
			{ID: 9, Date: "2025-01-09"},
		},
	}
}

func newFake() *gatewaytest.Fake {
	ack := gatewaytest.Reply(gatewaytest.OK(nil))
	return gatewaytest.New().
		On(model.ActionGetStudentData, gatewaytest.Reply(gatewaytest.OK(studentData()))).
		On(model.ActionSaveTeacherReview, ack).
		On(model.ActionSaveLogReview, ack)
}

func draw(p Pad) {
	p.Down(Point{0.1, 0.5})
	p.Move(Point{0.5, 0.2})
	p.Move(Point{0.9, 0.8})
	p.Up()
}

func TestPadStates(t *testing.T) {
	p := NewRasterPad(120, 40)
	assert.Equal(t, PadEmpty, p.State())
	ref, err := p.ImageRef()
	require.NoError(t, err)
	assert.Empty(t, ref)

	p.Move(Point{0.5, 0.5})
	assert.Equal(t, PadEmpty, p.State(), "move without down is ignored")

	p.Down(Point{0.1, 0.1})
	assert.Equal(t, PadDrawing, p.State())
	p.Move(Point{2, -1})
	p.Up()
	assert.Equal(t, PadCaptured, p.State())

	ref, err = p.ImageRef()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ref, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	p.Clear()
	assert.Equal(t, PadEmpty, p.State())
}

func TestClosingSendsOnlyReviewFields(t *testing.T) {
	fake := newFake()
	api := gateway.NewAPI(fake)
	c, err := OpenClosing(context.Background(), api, member, NewRasterPad(200, 60))
	require.NoError(t, err)
	assert.Equal(t, "Lama", c.Comment())
	assert.Equal(t, "2025-01-05", c.Record().Logs[0].Date)

	c.SetComment("Tahniah")
	draw(c.Pad())
	require.NoError(t, c.Save(context.Background()))

	calls := fake.Calls(model.ActionSaveTeacherReview)
	require.Len(t, calls, 1)
	var fields map[string]any
	require.NoError(t, calls[0].Decode(&fields))
	assert.ElementsMatch(t, []string{"email", "teacherComment", "teacherSignature"}, keys(fields))
	assert.Equal(t, member, fields["email"])
	assert.Equal(t, "Tahniah", fields["teacherComment"])
	assert.NotEqual(t, "data:image/png;base64,OLD", fields["teacherSignature"])

	assert.Equal(t, PadEmpty, c.Pad().State())
	assert.Equal(t, fields["teacherSignature"], c.Record().TeacherSignature)
}

func TestEmptyPadKeepsStoredSignature(t *testing.T) {
	fake := newFake()
	c, err := OpenClosing(context.Background(), gateway.NewAPI(fake), member, NewRasterPad(200, 60))
	require.NoError(t, err)

	draw(c.Pad())
	c.Pad().Clear()
	require.NoError(t, c.Save(context.Background()))

	var req model.TeacherReviewRequest
	require.NoError(t, fake.Calls(model.ActionSaveTeacherReview)[0].Decode(&req))
	assert.Equal(t, "data:image/png;base64,OLD", req.TeacherSignature)
}

func TestClosingFailureKeepsLocalState(t *testing.T) {
	fake := newFake().On(model.ActionSaveTeacherReview, gatewaytest.Reply(gateway.Failure("Murid tidak dijumpai")))
	c, err := OpenClosing(context.Background(), gateway.NewAPI(fake), member, NewRasterPad(200, 60))
	require.NoError(t, err)

	c.SetComment("Baru")
	draw(c.Pad())
	err = c.Save(context.Background())
	require.Error(t, err)
	assert.True(t, gateway.IsApplication(err))
	assert.Equal(t, "Lama", c.Record().TeacherComment)
	assert.Equal(t, PadCaptured, c.Pad().State(), "the drawing survives a failed save")
}

func TestOpenRejectsBadEmail(t *testing.T) {
	fake := newFake()
	_, err := OpenClosing(context.Background(), gateway.NewAPI(fake), "bukan-emel", nil)
	require.Error(t, err)
	assert.Zero(t, fake.CallCount())
}

func TestLogReview(t *testing.T) {
	fake := newFake()
	l, err := OpenLogs(context.Background(), gateway.NewAPI(fake), member, NewRasterPad(200, 60))
	require.NoError(t, err)
	require.Len(t, l.Entries(), 3)

	assert.ErrorIs(t, l.Save(context.Background()), ErrNoSelection)
	assert.ErrorIs(t, l.Select(8), ErrNoLog)

	require.NoError(t, l.Select(7))
	assert.Equal(t, "draf", l.Note())
	l.SetNote("Laporan lengkap")
	require.NoError(t, l.Save(context.Background()))

	var req model.LogReviewRequest
	require.NoError(t, fake.Calls(model.ActionSaveLogReview)[0].Decode(&req))
	assert.Equal(t, model.LogReviewRequest{
		Email: member, LogID: 7, TeacherNote: "Laporan lengkap", TeacherSignature: "data:image/png;base64,SEVEN",
	}, req)

	entries := l.Entries()
	assert.Equal(t, "Laporan lengkap", entries[1].TeacherNote)
	assert.Empty(t, entries[0].TeacherNote)
	assert.Empty(t, entries[2].TeacherNote)

	require.NoError(t, l.Select(9))
	draw(l.Pad())
	require.NoError(t, l.Save(context.Background()))
	require.NoError(t, fake.Calls(model.ActionSaveLogReview)[1].Decode(&req))
	assert.EqualValues(t, 9, req.LogID)
	assert.True(t, strings.HasPrefix(req.TeacherSignature, "data:image/png;base64,"))
	got, _ := l.Selected()
	assert.Equal(t, req.TeacherSignature, got.TeacherSignature)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

package dashboard

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

const (
	sheetStudents = "Murid"
	sheetTeachers = "Guru"
	sheetClasses  = "Statistik Kelas"
)

// ExportXLSX writes the admin workbook: members, teachers and per-class
// statistics, one sheet each.
func ExportXLSX(w io.Writer, d model.AdminData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetStudents); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	for _, name := range []string{sheetTeachers, sheetClasses} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E2E8F0"}},
	})
	if err != nil {
		return fmt.Errorf("xlsx style: %w", err)
	}

	students := [][]any{{"Nama", "Emel", "No. KP", "Kelas", "Kelab", "Bil. Log", "Kemajuan Log (%)", "Lengkap (%)", "Guru", "Disemak"}}
	for _, g := range GroupByClass(d.Students) {
		for _, s := range g.Students {
			students = append(students, []any{
				s.Name, s.Email, s.IC, g.Name, s.Club, s.LogCount, LogProgress(s.LogCount), s.Completeness, s.Teacher, yesNo(s.IsReviewed),
			})
		}
	}
	teachers := [][]any{{"Nama", "Emel", "Peranan", "Kelab", "Pangkat", "Sekolah", "Profil (%)"}}
	for _, t := range d.Teachers {
		teachers = append(teachers, []any{t.Name, t.Email, t.Role, t.Club, t.Rank, t.School, t.ProfileCompleteness})
	}
	sum := Summarize(d)
	classes := [][]any{{"Kelas", "Bil. Murid", "Purata Log (%)", "Purata Wajib (%)"}}
	for _, c := range sum.Classes {
		classes = append(classes, []any{c.Name, c.Count, c.AvgLog, c.AvgWajib})
	}
	classes = append(classes,
		[]any{},
		[]any{"Purata Profil Guru (%)", sum.TeacherProfileAverage},
		[]any{"Guru Aktif Menyemak (%)", sum.ReviewerPercentage},
	)

	for _, sh := range []struct {
		name string
		rows [][]any
	}{{sheetStudents, students}, {sheetTeachers, teachers}, {sheetClasses, classes}} {
		if err := writeRows(f, sh.name, sh.rows, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("xlsx %s header: %w", sheet, err)
	}
	return f.SetColWidth(sheet, "A", "B", 28)
}

func yesNo(b bool) string {
	if b {
		return "Ya"
	}
	return "Tidak"
}

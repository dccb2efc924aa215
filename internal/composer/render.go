package composer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/club"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Raw HTML in member text is dropped: WithUnsafe is not set.
var md = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))

var tmpl = template.Must(template.New("logbook.html.tmpl").Funcs(template.FuncMap{
	"md":    markdown,
	"blank": blank,
	"upper": strings.ToUpper,
	"img":   imageURL,
}).ParseFS(templateFS, "templates/*.tmpl"))

type RenderOptions struct {
	Title string
	Theme club.Theme
}

type view struct {
	Title          string
	Accent         template.CSS
	Pages          []Page
	NoAchievements string
	NoLogs         string
}

// Render writes pages as one printable HTML document, one A4 sheet per page.
func Render(w io.Writer, pages []Page, opts RenderOptions) error {
	if opts.Title == "" {
		opts.Title = "Buku Log"
	}
	accent := opts.Theme.Accent
	if !hexColor.MatchString(accent) {
		accent = "#334155"
	}
	v := view{
		Title:          opts.Title,
		Accent:         template.CSS(accent),
		Pages:          pages,
		NoAchievements: NoAchievements,
		NoLogs:         NoLogs,
	}
	if err := tmpl.Execute(w, v); err != nil {
		return fmt.Errorf("render logbook: %w", err)
	}
	return nil
}

// RenderRecord composes and renders in one go.
func RenderRecord(w io.Writer, rec model.MemberRecord, teachers []model.TeacherListItem) error {
	pages := Compose(rec, club.Lookup(rec.ClubName), teachers...)
	title := "Buku Log"
	if rec.StudentName != "" {
		title += " - " + rec.StudentName
	}
	return Render(w, pages, RenderOptions{Title: title, Theme: club.ThemeFor(rec.ClubName)})
}

func markdown(s string) template.HTML {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(s), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(s))
	}
	return template.HTML(buf.String())
}

// blank substitutes the dotted fill-in line for an empty value.
func blank(s string) string {
	if strings.TrimSpace(s) == "" {
		return "..................."
	}
	return s
}

// imageURL passes http(s) links and inline image data through; signatures
// are stored as data URLs, which html/template would otherwise reject.
func imageURL(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "/"):
		return template.URL(s)
	case strings.HasPrefix(s, "data:image/"):
		return template.URL(s)
	}
	return ""
}

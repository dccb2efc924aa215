package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/composer"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/dashboard"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/draft"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/review"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/session"
)

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	clubName := fs.String("club", "", "club name")
	role := fs.String("role", model.RoleMember, "murid or guru")
	email := fs.String("email", "", "institutional email")
	ic := fs.String("ic", "", "national ID number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.session.SelectClub(*clubName); err != nil {
		return err
	}
	if err := a.session.SelectRole(*role); err != nil {
		return err
	}
	resp, err := a.session.Login(ctx, *email, *ic)
	if err != nil {
		return err
	}
	fmt.Printf("Selamat datang, %s (%s, %s).\n", resp.Name, resp.Role, resp.Club)
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	clubName := fs.String("club", "", "club name")
	role := fs.String("role", model.RoleMember, "murid or guru")
	var req model.RegisterRequest
	fs.StringVar(&req.Email, "email", "", "institutional email")
	fs.StringVar(&req.IC, "ic", "", "national ID number")
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Form, "form", "", "class, e.g. \"3 Arif\"")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.session.SelectClub(*clubName); err != nil {
		return err
	}
	if err := a.session.SelectRole(*role); err != nil {
		return err
	}
	msg, err := a.session.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func cmdLogout(_ context.Context, a *app, _ []string) error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Println("Log keluar.")
	return nil
}

func cmdWhoami(ctx context.Context, a *app, _ []string) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	s := a.session.Current()
	fmt.Printf("%s <%s>\nperanan: %s\nkelab:   %s\nkeadaan: %s\n", s.Identity.Name, s.Identity.Email, s.Identity.Role, s.Club, s.State())
	return nil
}

func cmdShow(ctx context.Context, a *app, _ []string) error {
	if err := a.requireMember(ctx); err != nil {
		return err
	}
	rec := a.editor.Record()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return err
	}
	fmt.Printf("Lengkap: %d%%, log: %d/%d\n", rec.Completeness(), len(rec.Logs), dashboard.TargetLogs)
	return nil
}

func cmdSet(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: set FIELD VALUE (fields: %s)", strings.Join(draft.FieldNames(), ", "))
	}
	if err := a.requireMember(ctx); err != nil {
		return err
	}
	if err := a.editor.SetField(args[0], strings.Join(args[1:], " ")); err != nil {
		return err
	}
	return a.save(ctx)
}

func cmdSkill(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 || (args[1] != "on" && args[1] != "off") {
		return errors.New("usage: skill NAME on|off")
	}
	if err := a.requireMember(ctx); err != nil {
		return err
	}
	if err := a.editor.SetSkill(args[0], args[1] == "on"); err != nil {
		return err
	}
	return a.save(ctx)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func cmdLog(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: log add|rm ...")
	}
	if err := a.requireMember(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "add", "edit":
		fs := flag.NewFlagSet("log "+args[0], flag.ContinueOnError)
		var l model.WeeklyLog
		fs.Int64Var(&l.ID, "id", 0, "log id to edit; 0 adds a new log")
		fs.StringVar(&l.Date, "date", "", "YYYY-MM-DD")
		fs.StringVar(&l.Time, "time", "", "HH:MM")
		fs.StringVar(&l.Place, "place", "", "venue")
		fs.StringVar(&l.Type, "type", "", "activity type")
		fs.StringVar(&l.Objective, "objective", "", "objective")
		fs.StringVar(&l.Content, "content", "", "what happened")
		fs.StringVar(&l.Reflection, "reflection", "", "reflection")
		fs.StringVar(&l.Attendance, "attendance", "", "attendance")
		img1 := fs.String("img1", "", "first photo file")
		img2 := fs.String("img2", "", "second photo file")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		for target, path := range map[string]string{draft.TargetLog1: *img1, draft.TargetLog2: *img2} {
			if path == "" {
				continue
			}
			u, err := a.attach(ctx, target, path)
			if err != nil {
				return err
			}
			if target == draft.TargetLog1 {
				l.Img1 = u
			} else {
				l.Img2 = u
			}
		}
		saved, err := a.editor.UpsertLog(l)
		if err != nil {
			return err
		}
		fmt.Println("Log", saved.ID)
	case "rm":
		if len(args) != 2 {
			return errors.New("usage: log rm ID")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := a.editor.DeleteLog(id); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown log command %q", args[0])
	}
	return a.save(ctx)
}

func cmdSchedule(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: schedule add -date D -activity A [-place P] | schedule rm ID")
	}
	if err := a.requireMember(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("schedule add", flag.ContinueOnError)
		var s model.ScheduleEntry
		fs.StringVar(&s.Date, "date", "", "date or month")
		fs.StringVar(&s.Activity, "activity", "", "activity")
		fs.StringVar(&s.Place, "place", "", "venue")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if _, err := a.editor.AddSchedule(s); err != nil {
			return err
		}
	case "rm":
		if len(args) != 2 {
			return errors.New("usage: schedule rm ID")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := a.editor.DeleteSchedule(id); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown schedule command %q", args[0])
	}
	return a.save(ctx)
}

func cmdAchieve(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: achieve add -name N [-level L] [-result R] | achieve rm ID")
	}
	if err := a.requireMember(ctx); err != nil {
		return err
	}
	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("achieve add", flag.ContinueOnError)
		var ach model.Achievement
		fs.StringVar(&ach.Name, "name", "", "event name")
		fs.StringVar(&ach.Level, "level", "", strings.Join(model.AchievementLevels, ", "))
		fs.StringVar(&ach.Result, "result", "", strings.Join(model.AchievementResults, ", "))
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if _, err := a.editor.AddAchievement(ach); err != nil {
			return err
		}
	case "rm":
		if len(args) != 2 {
			return errors.New("usage: achieve rm ID")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := a.editor.DeleteAchievement(id); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown achieve command %q", args[0])
	}
	return a.save(ctx)
}

func (a *app) attach(ctx context.Context, target, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return a.editor.AttachImage(ctx, target, data)
}

func cmdAttach(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: attach profile|custom_logo|custom_flag FILE")
	}
	if err := a.requireMember(ctx); err != nil {
		return err
	}
	u, err := a.attach(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(u)
	return a.save(ctx)
}

func cmdPrint(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("print", flag.ContinueOnError)
	out := fs.String("o", "", "output file (default stdout)")
	pdf := fs.Bool("pdf", false, "ask the server for a PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.restore(ctx); err != nil {
		return err
	}
	email := fs.Arg(0)
	if email == "" {
		email = a.session.Current().MemberEmail()
	}
	if email == "" {
		return errors.New("usage: print [-o FILE] [-pdf] EMAIL")
	}

	var buf bytes.Buffer
	if *pdf {
		if err := a.fetchPDF(ctx, email, &buf); err != nil {
			return err
		}
	} else {
		rec, err := a.printable(ctx, email)
		if err != nil {
			return err
		}
		// the advisor's name is cosmetic; print without it if the list fails
		teachers, _ := a.api.GetTeacherList(ctx)
		if err := composer.RenderRecord(&buf, rec, teachers); err != nil {
			return err
		}
	}
	if *out == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Ditulis ke", *out)
	return nil
}

// printable is the member's own draft, or a fetched record for staff.
func (a *app) printable(ctx context.Context, email string) (model.MemberRecord, error) {
	s := a.session.Current()
	if email == s.MemberEmail() {
		return a.editor.Record(), nil
	}
	data, err := a.api.GetStudentData(ctx, email)
	if err != nil {
		return model.MemberRecord{}, err
	}
	rec := data.Record()
	if rec.ClubName == "" {
		rec.ClubName = s.Club
	}
	return rec, nil
}

// fetchPDF asks the server to print its own HTML route through Chrome.
func (a *app) fetchPDF(ctx context.Context, email string, w io.Writer) error {
	base := strings.TrimSuffix(a.cfg.Client.GatewayURL, "/api/exec")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/print/"+url.PathEscape(email)+".pdf", nil)
	if err != nil {
		return err
	}
	if tok := a.client.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return &gateway.TransportError{Action: "print", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var env gateway.Response
		if json.NewDecoder(resp.Body).Decode(&env) == nil && env.Message != "" {
			return &gateway.ApplicationError{Action: "print", Message: env.Message}
		}
		return &gateway.TransportError{Action: "print", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

func cmdReview(ctx context.Context, a *app, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: review closing EMAIL [-comment C] [-strokes FILE] | review log EMAIL [ID [-note N] [-strokes FILE]]")
	}
	if err := a.requireStaff(ctx); err != nil {
		return err
	}
	kind, email, rest := args[0], args[1], args[2:]
	pad := review.NewRasterPad(400, 150)

	switch kind {
	case "closing":
		fs := flag.NewFlagSet("review closing", flag.ContinueOnError)
		comment := fs.String("comment", "", "closing comment")
		strokes := fs.String("strokes", "", "signature strokes (JSON)")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		c, err := review.OpenClosing(ctx, a.api, email, pad)
		if err != nil {
			return err
		}
		if *comment == "" && *strokes == "" {
			fmt.Printf("Komen: %s\nTandatangan: %v\n", c.Comment(), c.Record().TeacherSignature != "")
			return nil
		}
		if *comment != "" {
			c.SetComment(*comment)
		}
		if err := replay(pad, *strokes); err != nil {
			return err
		}
		if err := c.Save(ctx); err != nil {
			return err
		}
	case "log":
		l, err := review.OpenLogs(ctx, a.api, email, pad)
		if err != nil {
			return err
		}
		if len(rest) == 0 {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTARIKH\tAKTIVITI\tDISEMAK")
			for _, e := range l.Entries() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", e.ID, e.Date, e.Type, e.TeacherSignature != "")
			}
			return w.Flush()
		}
		id, err := parseID(rest[0])
		if err != nil {
			return err
		}
		fs := flag.NewFlagSet("review log", flag.ContinueOnError)
		note := fs.String("note", "", "teacher note")
		strokes := fs.String("strokes", "", "signature strokes (JSON)")
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}
		if err := l.Select(id); err != nil {
			return err
		}
		if *note != "" {
			l.SetNote(*note)
		}
		if err := replay(pad, *strokes); err != nil {
			return err
		}
		if err := l.Save(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown review command %q", kind)
	}
	fmt.Println("Semakan disimpan.")
	return nil
}

// replay draws recorded strokes, a JSON array of point arrays in the 0..1
// range, onto the pad.
func replay(pad review.Pad, path string) error {
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var strokes [][]review.Point
	if err := json.Unmarshal(raw, &strokes); err != nil {
		return fmt.Errorf("strokes file: %w", err)
	}
	for _, s := range strokes {
		if len(s) == 0 {
			continue
		}
		pad.Down(s[0])
		for _, p := range s[1:] {
			pad.Move(p)
		}
		pad.Up()
	}
	return nil
}

func cmdDashboard(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	term := fs.String("q", "", "search by name or IC")
	xlsx := fs.String("xlsx", "", "write the admin workbook to FILE")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireStaff(ctx); err != nil {
		return err
	}
	v := dashboard.NewView(a.api, a.session.Current())
	if err := v.Refresh(ctx); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range v.Groups(*term) {
		fmt.Fprintf(w, "== %s (%d)\n", g.Name, len(g.Students))
		for _, s := range g.Students {
			fmt.Fprintf(w, "%s\t%s\tlog %d%%\tlengkap %d%%\tdisemak %v\n", s.Name, s.Email, dashboard.LogProgress(s.LogCount), s.Completeness, s.IsReviewed)
		}
	}
	if a.session.State() == session.Admin {
		sum := v.Summary()
		fmt.Fprintln(w, "\n== Statistik kelas")
		for _, c := range sum.Classes {
			fmt.Fprintf(w, "%s\t%d murid\tlog %d%%\twajib %d%%\n", c.Name, c.Count, c.AvgLog, c.AvgWajib)
		}
		fmt.Fprintf(w, "\nPurata profil guru: %d%%\nGuru aktif menyemak: %d%%\n", sum.TeacherProfileAverage, sum.ReviewerPercentage)
		for _, t := range dashboard.SearchTeachers(v.Teachers, *term) {
			fmt.Fprintf(w, "%s\t%s\t%s\tprofil %d%%\n", t.Name, t.Email, t.Role, t.ProfileCompleteness)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if *xlsx != "" {
		f, err := os.Create(*xlsx)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := dashboard.ExportXLSX(f, model.AdminData{Students: v.Students, Teachers: v.Teachers}); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Ditulis ke", *xlsx)
	}
	return nil
}

// cmdProfile shows the signed-in teacher's profile, or updates the given
// fields by their JSON names.
func cmdProfile(ctx context.Context, a *app, args []string) error {
	if err := a.requireStaff(ctx); err != nil {
		return err
	}
	email := a.session.Current().Identity.Email
	p, err := a.api.GetTeacherProfile(ctx, email)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return err
		}
		fmt.Printf("Lengkap: %d%%\n", p.Completeness())
		return nil
	}

	fields := map[string]any{}
	raw, _ := json.Marshal(p)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	for _, kv := range args {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "email" {
			return fmt.Errorf("expected FIELD=VALUE, got %q", kv)
		}
		if _, known := fields[k]; !known {
			return fmt.Errorf("%w: %s", draft.ErrUnknownField, k)
		}
		fields[k] = v
	}
	raw, _ = json.Marshal(fields)
	var updated model.TeacherProfile
	if err := json.Unmarshal(raw, &updated); err != nil {
		return err
	}
	updated.Email = email
	if err := a.api.SaveTeacherProfile(ctx, updated); err != nil {
		return err
	}
	fmt.Println("Profil disimpan.")
	return nil
}

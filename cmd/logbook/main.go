// Command logbook is the terminal client: sign in, edit your logbook, print
// it, and for teachers and admins, review and browse the dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/config"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/draft"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/session"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

type app struct {
	cfg     *config.Config
	client  *gateway.Client
	api     *gateway.API
	session *session.Manager
	editor  *draft.Editor
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":     {"login -club NAME -role murid|guru -email EMAIL -ic IC", cmdLogin},
	"register":  {"register -club NAME -role murid|guru -email EMAIL -ic IC -name NAME [-form CLASS]", cmdRegister},
	"logout":    {"logout", cmdLogout},
	"whoami":    {"whoami", cmdWhoami},
	"show":      {"show", cmdShow},
	"set":       {"set FIELD VALUE", cmdSet},
	"skill":     {"skill NAME on|off", cmdSkill},
	"log":       {"log add|rm ...", cmdLog},
	"schedule":  {"schedule add|rm ...", cmdSchedule},
	"achieve":   {"achieve add|rm ...", cmdAchieve},
	"attach":    {"attach profile|custom_logo|custom_flag FILE", cmdAttach},
	"print":     {"print [-o FILE] [-pdf] [EMAIL]", cmdPrint},
	"review":    {"review closing|log ...", cmdReview},
	"dashboard": {"dashboard [-q TERM] [-xlsx FILE]", cmdDashboard},
	"profile":   {"profile [FIELD=VALUE ...]", cmdProfile},
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: logbook [-config FILE] COMMAND [ARGS]")
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(os.Stderr, "  "+commands[n].usage)
	}
}

func main() {
	configFile := flag.String("config", "", "config file path")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		usage()
		os.Exit(2)
	}

	cfg := config.Load(*configFile)
	logger.InitCLI(cfg.Log)

	client := gateway.NewClient(cfg.Client.GatewayURL, cfg.Client.Timeout)
	a := &app{cfg: cfg, client: client, api: gateway.NewAPI(client)}
	a.session = session.NewManager(a.api, session.NewFileTokenStore(cfg.Client.SessionFile, cfg.Client.SessionSecret), cfg.Auth.EmailDomain)
	a.editor = draft.NewEditor(a.api, draft.Options{FieldDelay: cfg.Client.Debounce})
	a.editor.Follow(a.session)
	defer a.editor.Close()

	if err := cmd.run(context.Background(), a, flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "ralat:", describe(err))
		os.Exit(1)
	}
}

// describe picks the message a user should see for each error class.
func describe(err error) string {
	var ve *validate.ValidationError
	switch {
	case errors.As(err, &ve):
		parts := make([]string, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			parts = append(parts, f.Field+": "+f.Error)
		}
		if len(parts) == 0 {
			return ve.Error()
		}
		return strings.Join(parts, "; ")
	case gateway.IsTransport(err):
		return "tidak dapat menghubungi pelayan (" + err.Error() + ")"
	}
	return err.Error()
}

// restore brings back the stored session or fails with a hint to log in.
func (a *app) restore(ctx context.Context) error {
	if !a.session.Restore(ctx) {
		return errors.New("sila log masuk dahulu: logbook login ...")
	}
	return nil
}

func (a *app) requireMember(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	if a.session.State() != session.Member {
		return errors.New("arahan ini untuk murid sahaja")
	}
	return nil
}

func (a *app) requireStaff(ctx context.Context) error {
	if err := a.restore(ctx); err != nil {
		return err
	}
	if s := a.session.State(); s != session.Teacher && s != session.Admin {
		return errors.New("arahan ini untuk guru atau admin sahaja")
	}
	return nil
}

// save sends the draft right away; the CLI exits before any debounce would
// fire.
func (a *app) save(ctx context.Context) error {
	if err := a.editor.Save(ctx); err != nil {
		return err
	}
	fmt.Println("Disimpan.")
	return nil
}

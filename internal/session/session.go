// Package session resolves who is acting and in which club. A Session is
// an immutable snapshot; the Manager replaces it wholesale on every
// transition and tells its listeners.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/club"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

type State int

const (
	NoClub State = iota
	NoRole
	Unauthenticated
	Member
	Teacher
	Admin
)

func (s State) String() string {
	switch s {
	case NoClub:
		return "no-club-selected"
	case NoRole:
		return "no-role-selected"
	case Unauthenticated:
		return "unauthenticated"
	case Member:
		return "authenticated-member"
	case Teacher:
		return "authenticated-teacher"
	case Admin:
		return "authenticated-admin"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrNoClub      = errors.New("select a club first")
	ErrNoRole      = errors.New("select a role first")
	ErrUnknownClub = errors.New("unknown club")
	ErrRole        = errors.New("role must be murid or guru")
)

// Identity is the authenticated user as the server asserted it.
type Identity struct {
	Email string
	Name  string
	IC    string
	Form  string
	Role  string
	Club  string
}

type Session struct {
	Club     string
	RoleHint string
	Identity *Identity
	// Login is the full login answer; members find their stored record here.
	Login *model.LoginResponse
}

func (s Session) State() State {
	if s.Identity != nil {
		switch s.Identity.Role {
		case model.RoleAdmin:
			return Admin
		case model.RoleTeacher:
			return Teacher
		default:
			return Member
		}
	}
	if s.Club == "" {
		return NoClub
	}
	if s.RoleHint == "" {
		return NoRole
	}
	return Unauthenticated
}

// MemberEmail is the email a member's draft persists under, or "" when the
// session is not an authenticated member.
func (s Session) MemberEmail() string {
	if s.State() != Member {
		return ""
	}
	return s.Identity.Email
}

type Manager struct {
	api         *gateway.API
	store       TokenStore
	emailDomain string

	cur       Session
	listeners []func(Session)
}

func NewManager(api *gateway.API, store TokenStore, emailDomain string) *Manager {
	return &Manager{api: api, store: store, emailDomain: emailDomain}
}

func (m *Manager) Current() Session { return m.cur }

func (m *Manager) State() State { return m.cur.State() }

// OnChange registers fn to receive every new session.
func (m *Manager) OnChange(fn func(Session)) {
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) replace(s Session) {
	m.cur = s
	for _, fn := range m.listeners {
		fn(s)
	}
}

func (m *Manager) SelectClub(name string) error {
	id, ok := club.Parse(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownClub, name)
	}
	m.replace(Session{Club: string(id)})
	return nil
}

func (m *Manager) SelectRole(role string) error {
	if m.cur.Club == "" {
		return ErrNoClub
	}
	if role != model.RoleMember && role != model.RoleTeacher {
		return ErrRole
	}
	m.replace(Session{Club: m.cur.Club, RoleHint: role})
	return nil
}

func (m *Manager) checkForm(email string) error {
	switch m.State() {
	case NoClub:
		return ErrNoClub
	case NoRole:
		return ErrNoRole
	}
	return validate.EmailDomain(email, m.emailDomain)
}

// Login authenticates and persists the token. The role and club the server
// reports win over what was selected.
func (m *Manager) Login(ctx context.Context, email, ic string) (*model.LoginResponse, error) {
	if err := m.checkForm(email); err != nil {
		return nil, err
	}
	req := model.LoginRequest{Email: validate.CleanEmail(email), IC: ic}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	resp, err := m.api.Login(ctx, req)
	if err != nil {
		logger.Warn("login.failed", "email", req.Email, "err", err)
		return nil, err
	}
	m.establish(resp, m.cur.RoleHint, m.cur.Club)
	if err := m.store.Save(Token{Email: resp.Email, IC: resp.IC, Role: m.cur.Identity.Role, Club: m.cur.Identity.Club}); err != nil {
		logger.Warn("session.persist_failed", "err", err)
	}
	logger.Info("login.ok", "email", resp.Email, "role", m.cur.Identity.Role)
	return m.cur.Login, nil
}

func (m *Manager) establish(resp model.LoginResponse, roleHint, clubHint string) {
	role := resp.Role
	if !model.ValidRole(role) {
		role = roleHint
	}
	if role == "" {
		role = model.RoleMember
	}
	clubName := resp.Club
	if clubName == "" {
		clubName = clubHint
	}
	resp.Role, resp.Club = role, clubName
	m.replace(Session{
		Club:     clubName,
		RoleHint: role,
		Identity: &Identity{
			Email: resp.Email, Name: resp.Name, IC: resp.IC, Form: resp.Form,
			Role: role, Club: clubName,
		},
		Login: &resp,
	})
}

// Register creates the account. It never authenticates: on success the
// session stays at the login form and any stored token is dropped.
func (m *Manager) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	if err := m.checkForm(req.Email); err != nil {
		return "", err
	}
	req.Email = validate.CleanEmail(req.Email)
	req.Role = m.cur.RoleHint
	req.Club = m.cur.Club
	if err := validate.Struct(req); err != nil {
		return "", err
	}
	msg, err := m.api.Register(ctx, req)
	if err != nil {
		return "", err
	}
	if err := m.store.Clear(); err != nil {
		logger.Warn("session.clear_failed", "err", err)
	}
	m.replace(Session{Club: m.cur.Club, RoleHint: m.cur.RoleHint})
	return msg, nil
}

// Restore replays login with a stored token. It reports whether a session
// was re-established; a token the server rejects is discarded and the
// manager is left at the login form, never in an error state.
func (m *Manager) Restore(ctx context.Context) bool {
	tok, ok, err := m.store.Load()
	if err != nil {
		logger.Warn("session.restore_unreadable", "err", err)
		m.store.Clear()
		return false
	}
	if !ok {
		return false
	}
	hint := Session{Club: tok.Club, RoleHint: tok.Role}
	m.replace(hint)

	resp, err := m.api.Login(ctx, model.LoginRequest{Email: tok.Email, IC: tok.IC})
	if err != nil {
		if gateway.IsApplication(err) {
			logger.Info("session.restore_rejected", "email", tok.Email)
			m.store.Clear()
		} else {
			logger.Warn("session.restore_failed", "email", tok.Email, "err", err)
		}
		return false
	}
	m.establish(resp, tok.Role, tok.Club)
	return true
}

// Refresh fetches the signed-in user's data again without touching the
// stored token.
func (m *Manager) Refresh(ctx context.Context) (*model.LoginResponse, error) {
	id := m.cur.Identity
	if id == nil {
		return nil, errors.New("not signed in")
	}
	resp, err := m.api.Login(ctx, model.LoginRequest{Email: id.Email, IC: id.IC})
	if err != nil {
		return nil, err
	}
	m.establish(resp, id.Role, id.Club)
	return m.cur.Login, nil
}

// Logout forgets everything and starts over at club selection.
func (m *Manager) Logout() error {
	m.api.ClearToken()
	err := m.store.Clear()
	m.replace(Session{})
	return err
}

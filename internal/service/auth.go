package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/club"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/store"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

var (
	ErrBadCredentials = errors.New("Emel atau No. Kad Pengenalan tidak sah")
	ErrRegistered     = errors.New("Emel ini telah didaftarkan")
	ErrAdminSignup    = errors.New("Akaun admin tidak boleh didaftar sendiri")
	ErrUnknownClub    = errors.New("Kelab tidak dikenali")
)

type AuthService struct {
	store       store.Store
	emailDomain string
}

func NewAuthService(s store.Store, emailDomain string) *AuthService {
	return &AuthService{store: s, emailDomain: emailDomain}
}

// Login checks email and IC against the account. Members also get their
// stored record; Profile stays nil until the first save.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	req.Email = validate.CleanEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := validate.EmailDomain(req.Email, s.emailDomain); err != nil {
		return nil, err
	}
	acc, err := s.store.GetAccount(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !sameIC(acc.IC, req.IC) {
		return nil, ErrBadCredentials
	}

	resp := &model.LoginResponse{
		Email: acc.Email, Name: acc.Name, IC: acc.IC, Form: acc.Form,
		Role: acc.Role, Club: acc.Club, Logs: []model.WeeklyLog{},
	}
	if acc.Role != model.RoleMember {
		return resp, nil
	}
	rec, err := s.store.GetRecord(ctx, acc.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load record: %w", err)
	default:
		rec = model.Normalize(rec)
		resp.Profile = &rec.Profile
		resp.Logs = rec.Logs
	}
	return resp, nil
}

// sameIC ignores dashes and spaces, which members type inconsistently.
func sameIC(stored, given string) bool {
	clean := strings.NewReplacer("-", "", " ", "")
	return stored != "" && clean.Replace(stored) == clean.Replace(given)
}

// Register creates the account and, for a member, the blank record it will
// edit. Admins are seeded, never self-registered.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (string, error) {
	req.Email = validate.CleanEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return "", err
	}
	if err := validate.EmailDomain(req.Email, s.emailDomain); err != nil {
		return "", err
	}
	if req.Role == model.RoleAdmin {
		return "", ErrAdminSignup
	}
	id, ok := club.Parse(req.Club)
	if !ok {
		return "", ErrUnknownClub
	}

	acc := &model.Account{
		Email: req.Email, Name: req.Name, IC: strings.TrimSpace(req.IC),
		Form: req.Form, Role: req.Role, Club: string(id),
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, store.ErrExists) {
			return "", ErrRegistered
		}
		return "", fmt.Errorf("create account: %w", err)
	}
	if acc.Role == model.RoleMember {
		rec := model.NewRecord()
		rec.StudentName, rec.IC, rec.Form, rec.ClubName = acc.Name, acc.IC, acc.Form, acc.Club
		if err := s.store.SaveRecord(ctx, acc.Email, rec); err != nil {
			return "", fmt.Errorf("create record: %w", err)
		}
	}
	return "Pendaftaran berjaya. Sila log masuk.", nil
}

// Seed creates or skips a staff account; used by cmd/seed.
func (s *AuthService) Seed(ctx context.Context, acc model.Account) (bool, error) {
	acc.Email = validate.CleanEmail(acc.Email)
	if !model.ValidRole(acc.Role) {
		return false, fmt.Errorf("seed %s: invalid role %q", acc.Email, acc.Role)
	}
	err := s.store.CreateAccount(ctx, &acc)
	if errors.Is(err, store.ErrExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed %s: %w", acc.Email, err)
	}
	return true, nil
}

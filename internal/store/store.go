// Package store is the durable owner of accounts, member records and teacher
// profiles. Two implementations share one contract: GormStore on MySQL and
// MemoryStore for development and tests.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// Store is keyed by lower-cased email everywhere.
type Store interface {
	GetAccount(ctx context.Context, email string) (model.Account, error)
	CreateAccount(ctx context.Context, acc *model.Account) error
	// ListAccounts returns accounts with role, or every account for "".
	ListAccounts(ctx context.Context, role string) ([]model.Account, error)

	GetRecord(ctx context.Context, email string) (model.MemberRecord, error)
	SaveRecord(ctx context.Context, email string, rec model.MemberRecord) error
	// UpdateRecord runs fn on the stored record and writes the result back.
	// Concurrent updates of one record are serialized; an error from fn
	// aborts without writing.
	UpdateRecord(ctx context.Context, email string, fn func(*model.MemberRecord) error) error
	// ListRecords returns the rows assigned to teacherEmail, or every row
	// for "".
	ListRecords(ctx context.Context, teacherEmail string) ([]model.MemberRow, error)

	GetTeacherProfile(ctx context.Context, email string) (model.TeacherProfile, error)
	SaveTeacherProfile(ctx context.Context, p model.TeacherProfile) error
	ListTeacherProfiles(ctx context.Context) (map[string]model.TeacherProfile, error)
}

func key(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func memberRow(email string, rec model.MemberRecord) model.MemberRow {
	logs := rec.Logs
	if logs == nil {
		logs = []model.WeeklyLog{}
	}
	return model.MemberRow{
		Email:        key(email),
		TeacherEmail: key(rec.Teacher),
		Profile:      rec.Profile,
		Logs:         logs,
	}
}

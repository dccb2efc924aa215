package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) Migrate() error {
	if err := s.db.AutoMigrate(&model.Account{}, &model.MemberRow{}, &model.TeacherProfileRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) GetAccount(ctx context.Context, email string) (model.Account, error) {
	var acc model.Account
	if err := s.db.WithContext(ctx).Where("email = ?", key(email)).First(&acc).Error; err != nil {
		return model.Account{}, notFound(err)
	}
	return acc, nil
}

func (s *GormStore) CreateAccount(ctx context.Context, acc *model.Account) error {
	acc.Email = key(acc.Email)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Account{}).Where("email = ?", acc.Email).Count(&n).Error; err != nil {
			return fmt.Errorf("query account: %w", err)
		}
		if n > 0 {
			return ErrExists
		}
		if err := tx.Create(acc).Error; err != nil {
			return fmt.Errorf("insert account: %w", err)
		}
		return nil
	})
}

func (s *GormStore) ListAccounts(ctx context.Context, role string) ([]model.Account, error) {
	q := s.db.WithContext(ctx).Order("id")
	if role != "" {
		q = q.Where("role = ?", role)
	}
	var out []model.Account
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	return out, nil
}

func (s *GormStore) GetRecord(ctx context.Context, email string) (model.MemberRecord, error) {
	var row model.MemberRow
	if err := s.db.WithContext(ctx).Where("email = ?", key(email)).First(&row).Error; err != nil {
		return model.MemberRecord{}, notFound(err)
	}
	return row.Record(), nil
}

func (s *GormStore) SaveRecord(ctx context.Context, email string, rec model.MemberRecord) error {
	return upsertRecord(s.db.WithContext(ctx), email, rec)
}

func upsertRecord(tx *gorm.DB, email string, rec model.MemberRecord) error {
	row := memberRow(email, rec)
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateRecord(ctx context.Context, email string, fn func(*model.MemberRecord) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.MemberRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("email = ?", key(email)).First(&row).Error
		if err != nil {
			return notFound(err)
		}
		rec := row.Record()
		if err := fn(&rec); err != nil {
			return err
		}
		return upsertRecord(tx, email, rec)
	})
}

func (s *GormStore) ListRecords(ctx context.Context, teacherEmail string) ([]model.MemberRow, error) {
	q := s.db.WithContext(ctx).Order("email")
	if t := key(teacherEmail); t != "" {
		q = q.Where("teacher_email = ?", t)
	}
	var out []model.MemberRow
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return out, nil
}

func (s *GormStore) GetTeacherProfile(ctx context.Context, email string) (model.TeacherProfile, error) {
	var row model.TeacherProfileRow
	if err := s.db.WithContext(ctx).Where("email = ?", key(email)).First(&row).Error; err != nil {
		return model.TeacherProfile{}, notFound(err)
	}
	return row.Profile, nil
}

func (s *GormStore) SaveTeacherProfile(ctx context.Context, p model.TeacherProfile) error {
	p.Email = key(p.Email)
	row := model.TeacherProfileRow{Email: p.Email, Profile: p}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("save teacher profile: %w", err)
	}
	return nil
}

func (s *GormStore) ListTeacherProfiles(ctx context.Context) (map[string]model.TeacherProfile, error) {
	var rows []model.TeacherProfileRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query teacher profiles: %w", err)
	}
	out := make(map[string]model.TeacherProfile, len(rows))
	for _, r := range rows {
		out[r.Email] = r.Profile
	}
	return out, nil
}

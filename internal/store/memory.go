package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/model"
)

// MemoryStore keeps everything in maps. Values are cloned on the way in and
// out so callers never share slices with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int
	accounts map[string]model.Account
	records  map[string]model.MemberRow
	teachers map[string]model.TeacherProfile

	// one lock per record for read-modify-write
	locks sync.Map
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: map[string]model.Account{},
		records:  map[string]model.MemberRow{},
		teachers: map[string]model.TeacherProfile{},
	}
}

func (s *MemoryStore) GetAccount(_ context.Context, email string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[key(email)]
	if !ok {
		return model.Account{}, ErrNotFound
	}
	return acc, nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, acc *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc.Email = key(acc.Email)
	if _, ok := s.accounts[acc.Email]; ok {
		return ErrExists
	}
	s.nextID++
	acc.ID = s.nextID
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = time.Now()
	}
	s.accounts[acc.Email] = *acc
	return nil
}

func (s *MemoryStore) ListAccounts(_ context.Context, role string) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Account{}
	for _, acc := range s.accounts {
		if role == "" || acc.Role == role {
			out = append(out, acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetRecord(_ context.Context, email string) (model.MemberRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.records[key(email)]
	if !ok {
		return model.MemberRecord{}, ErrNotFound
	}
	return row.Record().Clone(), nil
}

func (s *MemoryStore) recordLock(email string) *sync.Mutex {
	l, _ := s.locks.LoadOrStore(key(email), &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (s *MemoryStore) put(email string, rec model.MemberRecord) {
	row := memberRow(email, rec.Clone())
	row.UpdatedAt = time.Now()
	s.mu.Lock()
	s.records[row.Email] = row
	s.mu.Unlock()
}

// SaveRecord waits for any UpdateRecord on the same email so a whole-record
// write is never undone by a read-modify-write that started before it.
func (s *MemoryStore) SaveRecord(_ context.Context, email string, rec model.MemberRecord) error {
	mu := s.recordLock(email)
	mu.Lock()
	defer mu.Unlock()
	s.put(email, rec)
	return nil
}

func (s *MemoryStore) UpdateRecord(ctx context.Context, email string, fn func(*model.MemberRecord) error) error {
	mu := s.recordLock(email)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.GetRecord(ctx, email)
	if err != nil {
		return err
	}
	if err := fn(&rec); err != nil {
		return err
	}
	s.put(email, rec)
	return nil
}

func (s *MemoryStore) ListRecords(_ context.Context, teacherEmail string) ([]model.MemberRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := key(teacherEmail)
	out := []model.MemberRow{}
	for _, row := range s.records {
		if t == "" || row.TeacherEmail == t {
			rec := row.Record().Clone()
			out = append(out, model.MemberRow{
				Email: row.Email, TeacherEmail: row.TeacherEmail,
				Profile: rec.Profile, Logs: rec.Logs, UpdatedAt: row.UpdatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (s *MemoryStore) GetTeacherProfile(_ context.Context, email string) (model.TeacherProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.teachers[key(email)]
	if !ok {
		return model.TeacherProfile{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) SaveTeacherProfile(_ context.Context, p model.TeacherProfile) error {
	p.Email = key(p.Email)
	s.mu.Lock()
	s.teachers[p.Email] = p
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListTeacherProfiles(_ context.Context) (map[string]model.TeacherProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.TeacherProfile, len(s.teachers))
	for k, v := range s.teachers {
		out[k] = v
	}
	return out, nil
}

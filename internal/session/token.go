package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

// Token is what survives a restart. It only lets the client replay login;
// the server checks the credentials again every time.
type Token struct {
	Email string `json:"email"`
	IC    string `json:"ic"`
	Role  string `json:"role"`
	Club  string `json:"club"`
}

type TokenStore interface {
	// Load reports ok=false when nothing is stored.
	Load() (tok Token, ok bool, err error)
	Save(Token) error
	Clear() error
}

var errSealedToken = errors.New("session file is corrupt or was sealed with another secret")

// FileTokenStore keeps the token in one file, sealed with NaCl secretbox so
// the national ID is not left on disk in clear text.
type FileTokenStore struct {
	path string
	key  [32]byte
}

func NewFileTokenStore(path, secret string) *FileTokenStore {
	return &FileTokenStore{path: path, key: sha256.Sum256([]byte(secret))}
}

func (s *FileTokenStore) Load() (Token, bool, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Token{}, false, nil
	}
	if err != nil {
		return Token{}, false, fmt.Errorf("read session: %w", err)
	}
	box, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil || len(box) < 24 {
		return Token{}, false, errSealedToken
	}
	var nonce [24]byte
	copy(nonce[:], box[:24])
	msg, ok := secretbox.Open(nil, box[24:], &nonce, &s.key)
	if !ok {
		return Token{}, false, errSealedToken
	}
	var tok Token
	if err := json.Unmarshal(msg, &tok); err != nil {
		return Token{}, false, errSealedToken
	}
	return tok, true, nil
}

func (s *FileTokenStore) Save(tok Token) error {
	msg, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("session nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], msg, &nonce, &s.key)
	if err := os.WriteFile(s.path, []byte(base64.StdEncoding.EncodeToString(box)), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

type MemoryTokenStore struct {
	mu  sync.Mutex
	tok *Token
}

func (s *MemoryTokenStore) Load() (Token, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == nil {
		return Token{}, false, nil
	}
	return *s.tok, true, nil
}

func (s *MemoryTokenStore) Save(tok Token) error {
	s.mu.Lock()
	s.tok = &tok
	s.mu.Unlock()
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	s.tok = nil
	s.mu.Unlock()
	return nil
}

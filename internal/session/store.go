package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
)

// Store persists exactly two entries: the opaque token and the last-known role.
// The token stays the sole source of truth; the role only saves the guard a round trip.
type Store interface {
	Load() (token string, role models.Role, err error)
	Save(token string, role models.Role) error
	Clear() error
}

type persisted struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
}

// FileStore keeps the entries in a JSON file readable only by the owner.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (s *FileStore) Load() (string, models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("read session: %w", err)
	}
	var p persisted
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", "", fmt.Errorf("decode session: %w", err)
	}
	return p.Token, p.Role, nil
}

func (s *FileStore) Save(token string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.Marshal(persisted{Token: token, Role: role})
	if err != nil {
		return err
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, s.Path)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

type MemoryStore struct {
	mu    sync.Mutex
	token string
	role  models.Role
}

func (s *MemoryStore) Load() (string, models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.role, nil
}

func (s *MemoryStore) Save(token string, role models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.role = token, role
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.role = "", ""
	return nil
}

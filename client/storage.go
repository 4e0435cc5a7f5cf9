package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	goerrors "github.com/goliatone/go-errors"

	auth "github.com/BrayanMorningstar237/waiter-backend-sub001"
)

// Store persists the session between runs: the token and the user the
// backend resolved for it. Implementations must be safe for concurrent
// use.
type Store interface {
	ReadToken() (string, error)
	WriteToken(token string) error
	ClearToken() error
	ReadUser() (*auth.PublicUser, error)
	WriteUser(user *auth.PublicUser) error
	ClearUser() error
}

// MemoryStore keeps the session in memory only. Useful for tests and
// for callers that do not want persistence.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  *auth.PublicUser
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ReadToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryStore) WriteToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemoryStore) ReadUser() (*auth.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, nil
}

func (s *MemoryStore) WriteUser(user *auth.PublicUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	return nil
}

func (s *MemoryStore) ClearUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	return nil
}

type sessionFile struct {
	Token string           `json:"token,omitempty"`
	User  *auth.PublicUser `json:"user,omitempty"`
}

func (f sessionFile) empty() bool {
	return f.Token == "" && f.User == nil
}

// FileStore persists the session as a small JSON file, created 0600
// since a session token is a credential. Token and user live in the
// same file; writing one preserves the other.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) ReadToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.load()
	if err != nil {
		return "", err
	}
	return payload.Token, nil
}

func (s *FileStore) WriteToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.load()
	if err != nil {
		return err
	}
	payload.Token = token
	return s.flush(payload)
}

func (s *FileStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.load()
	if err != nil {
		return err
	}
	payload.Token = ""
	return s.flush(payload)
}

func (s *FileStore) ReadUser() (*auth.PublicUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.load()
	if err != nil {
		return nil, err
	}
	return payload.User, nil
}

func (s *FileStore) WriteUser(user *auth.PublicUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.load()
	if err != nil {
		return err
	}
	payload.User = user
	return s.flush(payload)
}

func (s *FileStore) ClearUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := s.load()
	if err != nil {
		return err
	}
	payload.User = nil
	return s.flush(payload)
}

// load reads the session file. Callers hold the lock.
func (s *FileStore) load() (sessionFile, error) {
	var payload sessionFile

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return payload, nil
		}
		return payload, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read session file")
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		// corrupt file is the same as no session
		return sessionFile{}, nil
	}

	return payload, nil
}

// flush writes the session file, removing it when nothing is left to
// persist. Callers hold the lock.
func (s *FileStore) flush(payload sessionFile) error {
	if payload.empty() {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to remove session file")
		}
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode session file")
	}

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create session directory")
		}
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to write session file")
	}

	return nil
}

package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/eventhive/eventhive-go/internal/models"
)

const sessionFileName = "session.json"

// DefaultDir returns the per user directory for session files,
// honoring XDG_CONFIG_HOME.
func DefaultDir() (string, error) {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "eventhive"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "eventhive"), nil
}

// sessionFile is the on disk layout. Absent values are distinguished from
// empty strings so a stored empty token never counts as present.
type sessionFile struct {
	Profile      *models.UserProfile `json:"profile,omitempty"`
	AccessToken  *string             `json:"access_token,omitempty"`
	RefreshToken *string             `json:"refresh_token,omitempty"`
}

// codec turns session bytes into stored bytes and back. The plain file
// store uses the identity codec; the sealed store plugs in encryption.
type codec interface {
	encode(plain []byte) ([]byte, error)
	decode(stored []byte) ([]byte, error)
}

type identityCodec struct{}

func (identityCodec) encode(plain []byte) ([]byte, error)  { return plain, nil }
func (identityCodec) decode(stored []byte) ([]byte, error) { return stored, nil }

// File keeps the session in a single JSON file, replaced atomically on
// every write. A missing file means an empty session.
type File struct {
	mu    sync.Mutex
	path  string
	codec codec
}

// NewFile creates a file store rooted at dir. The directory is created
// with owner only permissions if it does not exist.
func NewFile(dir string) (*File, error) {
	return newFile(dir, identityCodec{})
}

func newFile(dir string, c codec) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &File{path: filepath.Join(dir, sessionFileName), codec: c}, nil
}

func (f *File) load() (sessionFile, error) {
	var s sessionFile

	stored, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s, nil
	case err != nil:
		return s, fmt.Errorf("read session file: %w", err)
	}

	plain, err := f.codec.decode(stored)
	if err != nil {
		return s, fmt.Errorf("decode session file: %w", err)
	}
	if err := json.Unmarshal(plain, &s); err != nil {
		return s, fmt.Errorf("parse session file: %w", err)
	}
	return s, nil
}

// save writes via a temp file and rename so readers never observe a torn file.
func (f *File) save(s sessionFile) error {
	plain, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	stored, err := f.codec.encode(plain)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, stored, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// update applies fn to the stored session under the lock.
func (f *File) update(fn func(*sessionFile)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.load()
	if err != nil {
		return err
	}
	fn(&s)
	return f.save(s)
}

func (f *File) SaveProfile(_ context.Context, profile models.UserProfile) error {
	p := profile.Clone()
	return f.update(func(s *sessionFile) { s.Profile = &p })
}

func (f *File) Profile(_ context.Context) (models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.load()
	if err != nil {
		return models.UserProfile{}, err
	}
	if s.Profile == nil {
		return models.UserProfile{}, ErrNotStored
	}
	return s.Profile.Clone(), nil
}

func (f *File) ClearProfile(_ context.Context) error {
	return f.update(func(s *sessionFile) { s.Profile = nil })
}

func (f *File) SaveAccessToken(_ context.Context, token string) error {
	return f.update(func(s *sessionFile) { s.AccessToken = &token })
}

func (f *File) AccessToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.load()
	if err != nil {
		return "", err
	}
	if s.AccessToken == nil {
		return "", ErrNotStored
	}
	return *s.AccessToken, nil
}

func (f *File) ClearAccessToken(_ context.Context) error {
	return f.update(func(s *sessionFile) { s.AccessToken = nil })
}

func (f *File) SaveRefreshToken(_ context.Context, token string) error {
	return f.update(func(s *sessionFile) { s.RefreshToken = &token })
}

func (f *File) RefreshToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.load()
	if err != nil {
		return "", err
	}
	if s.RefreshToken == nil {
		return "", ErrNotStored
	}
	return *s.RefreshToken, nil
}

func (f *File) ClearRefreshToken(_ context.Context) error {
	return f.update(func(s *sessionFile) { s.RefreshToken = nil })
}

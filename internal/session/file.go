package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore persists the session as a small JSON file on disk, the durable
// local key-value storage of a desktop client.
type FileStore struct {
	path string
}

type fileEntries struct {
	Token string          `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Token() (string, bool) {
	entries, err := s.load()
	if err != nil || entries.Token == "" {
		return "", false
	}
	return entries.Token, true
}

func (s *FileStore) User(v any) error {
	entries, err := s.load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNoEntry
		}
		return fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	if len(entries.User) == 0 {
		return ErrNoEntry
	}
	if err := json.Unmarshal(entries.User, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return nil
}

func (s *FileStore) Save(token string, user any) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user failed: %w", err)
	}

	data, err := json.Marshal(fileEntries{Token: token, User: rawUser})
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir failed: %w", err)
	}

	// Write-then-rename so a crash never leaves a half-written session behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session failed: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename session failed: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session failed: %w", err)
	}
	return nil
}

func (s *FileStore) load() (*fileEntries, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var entries fileEntries
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return &entries, nil
}

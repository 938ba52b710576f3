package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/config"
)

// DefaultTokenPath is where the session token lives unless auth.token_path says otherwise.
const DefaultTokenPath = "~/.config/ponder/session"

// FileTokenStore keeps the token in a single file readable only by its owner.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a store at path, expanding ~ and $VARS.
func NewFileTokenStore(path string) *FileTokenStore {
	if path == "" {
		path = DefaultTokenPath
	}
	return &FileTokenStore{path: config.ExpandPath(path)}
}

// Path returns the resolved token file location.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load returns the stored token, or an ErrAuth error when nobody is signed in.
func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: not signed in, run 'ponder auth login'", common.ErrAuth)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: not signed in, run 'ponder auth login'", common.ErrAuth)
	}
	return token, nil
}

// Save writes token with 0600 permissions, creating parent directories.
func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the token file. Clearing an absent token is not an error.
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

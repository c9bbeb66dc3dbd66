package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultTokenDir  = "lingo"
	defaultTokenFile = "token"

	tokenFileMode = 0o600
	tokenDirMode  = 0o700
)

// TokenStore is the single durable slot for the bearer token. The session is
// its sole owner; nothing else reads or writes the file.
type TokenStore struct {
	path string
}

// NewTokenStore builds a store at the given path. An empty path resolves to
// the user's config directory.
func NewTokenStore(path string) (*TokenStore, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		resolved = filepath.Join(configDir, defaultTokenDir, defaultTokenFile)
	}
	return &TokenStore{path: resolved}, nil
}

// Path reports where the token is kept.
func (s *TokenStore) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Load reads the persisted token. A missing file is an empty token, not an error.
func (s *TokenStore) Load() (string, error) {
	if s == nil {
		return "", fmt.Errorf("token store is nil")
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save writes the token, creating the parent directory when needed.
func (s *TokenStore) Save(token string) error {
	if s == nil {
		return fmt.Errorf("token store is nil")
	}
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return fmt.Errorf("token is required")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), tokenDirMode); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(trimmed+"\n"), tokenFileMode); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Clear erases the persisted token. Clearing an absent token is a no-op.
func (s *TokenStore) Clear() error {
	if s == nil {
		return fmt.Errorf("token store is nil")
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

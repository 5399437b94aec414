package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// TokenKey is the config key the CLI keeps the session token under.
const TokenKey = "auth.token"

// ConfigStore keeps the token in the CLI config file.
type ConfigStore struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// NewConfigStore stores the token in v and persists it to path on every
// write. The parent directory is created with 0700 permissions.
func NewConfigStore(v *viper.Viper, path string) *ConfigStore {
	return &ConfigStore{v: v, path: path}
}

// Path returns the config file the token is written to
func (s *ConfigStore) Path() string {
	return s.path
}

func (s *ConfigStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := s.v.GetString(TokenKey)
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

func (s *ConfigStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v.Set(TokenKey, token)
	return s.write()
}

func (s *ConfigStore) Clear(ctx context.Context) error {
	return s.SetToken(ctx, "")
}

func (s *ConfigStore) write() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	// The file holds a bearer token
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}
	return nil
}

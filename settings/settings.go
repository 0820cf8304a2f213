// Package settings holds the user preferences that survive between runs.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

const keyAutoSave = "autoSave"

// Settings reads and writes the preferences file. Values are read from disk on
// every call, so a change made by another process is seen by the next save.
type Settings struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Settings {
	return &Settings{path: path}
}

// DefaultPath is settings.yaml in the user config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(dir, "mdclip", "settings.yaml")
}

func (s *Settings) load() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	v.SetDefault(keyAutoSave, false)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return v, nil
}

// AutoSave reports whether documents are saved without asking for a location.
// It defaults to false when the file is missing or unreadable.
func (s *Settings) AutoSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.load()
	if err != nil {
		return false
	}
	return v.GetBool(keyAutoSave)
}

func (s *Settings) SetAutoSave(autoSave bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.load()
	if err != nil {
		return err
	}
	v.Set(keyAutoSave, autoSave)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

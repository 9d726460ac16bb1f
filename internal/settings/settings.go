// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings persists small string settings (API endpoint, API key)
// behind a get/set-by-key port. DirStore keeps one plain-text file per key:
// the filename is the key and the trimmed file contents are the value.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store is the persistence port consumed by the cloud client configuration.
// Get reports false when the key has no value. Set with an empty value
// removes the key.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// MemoryStore is an in-process Store, used by tests and one-shot overrides.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns a MemoryStore seeded with values (which may be nil).
func NewMemoryStore(values map[string]string) *MemoryStore {
	m := &MemoryStore{values: make(map[string]string, len(values))}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the value for key.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok && v != ""
}

// Set stores value under key.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.values, key)
		return nil
	}
	m.values[key] = value
	return nil
}

// DirStore reads and writes settings as files in a directory. A missing
// directory is an empty store; it is created on the first Set.
type DirStore struct {
	Dir string
}

// NewDirStore returns a DirStore rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{Dir: dir}
}

// Get reads the file named key. Unreadable files produce a warning and are
// treated as absent.
func (d *DirStore) Get(key string) (string, bool) {
	path, err := d.path(key)
	if err != nil {
		logrus.WithError(err).Warn("invalid settings key")
		return "", false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logrus.WithError(err).WithField("key", key).Warn("could not read setting")
		}
		return "", false
	}
	value := strings.TrimSpace(string(data))
	return value, value != ""
}

// Set writes value to the file named key, creating the directory if needed.
// The write happens immediately; there is no commit step.
func (d *DirStore) Set(key, value string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing setting %s: %w", key, err)
		}
		return nil
	}
	if err := os.MkdirAll(d.Dir, 0o700); err != nil {
		return fmt.Errorf("creating settings directory %s: %w", d.Dir, err)
	}
	if err := os.WriteFile(path, []byte(value+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// Load reads all settings in the directory and returns a map of key to
// value. A missing directory is not an error. Dotfiles, subdirectories, and
// empty files are skipped.
func (d *DirStore) Load() (map[string]string, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading settings directory %s: %w", d.Dir, err)
	}

	values := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if v, ok := d.Get(entry.Name()); ok {
			values[entry.Name()] = v
		}
	}
	return values, nil
}

func (d *DirStore) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid settings key %q", key)
	}
	return filepath.Join(d.Dir, key), nil
}

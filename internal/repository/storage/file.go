package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var ErrKeyNotFound = errors.New("key not found")

// FileStorage - a small string key-value store kept as one JSON document on disk.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// DefaultFilePath - storage.json under the user's config directory.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to find user config dir: %w", err)
	}

	return filepath.Join(dir, "globetrotter", "storage.json"), nil
}

func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileStorage{path: path}, nil
}

func (that *FileStorage) Path() string {
	return that.path
}

func (that *FileStorage) Get(key string) (string, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	values, err := that.read()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", ErrKeyNotFound
	}

	return value, nil
}

func (that *FileStorage) Set(key, value string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	values, err := that.read()
	if err != nil {
		return err
	}

	values[key] = value

	return that.write(values)
}

func (that *FileStorage) Delete(key string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	values, err := that.read()
	if err != nil {
		return err
	}

	if _, ok := values[key]; !ok {
		return nil
	}

	delete(values, key)

	return that.write(values)
}

func (that *FileStorage) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(that.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}

	if len(data) == 0 {
		return values, nil
	}

	if err = json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storage file: %w", err)
	}

	return values, nil
}

// write replaces the file via rename so a crash never leaves half a document behind.
func (that *FileStorage) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	tmp := that.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}

	if err = os.Rename(tmp, that.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}

	return nil
}

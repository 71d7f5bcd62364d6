package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File persists all keys as one JSON object, replaced atomically on every write.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("storage: file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &File{path: path}, nil
}

func (f *File) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *File) Remove(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	return f.save(values)
}

func (f *File) load() (map[string]string, error) {
	values := map[string]string{}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("failed to decode storage file: %w", err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("failed to create temp storage file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close storage file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}

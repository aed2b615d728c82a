/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var ErrInvalidID = errors.New("invalid player id")

// Store persists profiles by player id.
type Store interface {
	Load(id string) (*Profile, error)
	Save(id string, p *Profile) error
}

// FileStore keeps one JSON document per player in a directory.
type FileStore struct {
	fs   afero.Fs
	dir  string
	logf func(format string, args ...any)
}

func NewFileStore(fs afero.Fs, dir string, logf func(format string, args ...any)) *FileStore {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	return &FileStore{
		fs:   fs,
		dir:  dir,
		logf: logf,
	}
}

func (s *FileStore) path(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	return filepath.Join(s.dir, parsed.String()+".json"), nil
}

// Load returns the stored profile, or defaults when there is none. A
// document that cannot be decoded is removed and replaced by defaults.
func (s *FileStore) Load(id string) (*Profile, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultProfile(), nil
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	p, err := DecodeProfile(data)
	if err != nil {
		s.logf("STORE: Discarding unreadable profile %s: %v", id, err)

		if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logf("STORE: Failed to remove %s: %v", path, err)
		}

		return DefaultProfile(), nil
	}

	return p, nil
}

// Save writes the profile through a temporary file and a rename, so a
// crash never leaves a half written document behind.
func (s *FileStore) Save(id string, p *Profile) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write profile: %w", err)
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to replace profile: %w", err)
	}

	return nil
}

var _ Store = (*FileStore)(nil)

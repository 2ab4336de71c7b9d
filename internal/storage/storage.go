package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/konstantinfoerster/loco-importer-go/internal/aio"
	"github.com/pkg/errors"
)

const (
	REPLACE = "REPLACE"
	CREATE  = "CREATE"
)

type Config struct {
	Location string
	Mode     string
}

// Storer keeps files below one base directory. The base directory is owned by the
// store: Reset and Remove delete everything inside it.
type Storer interface {
	Store(in io.Reader, path ...string) (StoredFile, error)
	Path(path ...string) (string, error)
	Reset() error
	Remove() error
}

type StoredFile struct {
	Path         string
	AbsolutePath string
}

func NewLocalStorage(config Config) (Storer, error) {
	location, err := filepath.Abs(config.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid storage dir %s %w", config.Location, err)
	}
	config.Location = location

	if err := os.MkdirAll(config.Location, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s %w", config.Location, err)
	}

	return &localStorage{
		config: config,
	}, nil
}

type localStorage struct {
	config Config
}

func (s *localStorage) fromBasePath(path ...string) (string, error) {
	baseDir := s.config.Location
	targetDir := filepath.Join(baseDir, filepath.Join(path...))
	targetDir = filepath.Clean(targetDir)

	if !strings.HasPrefix(targetDir, baseDir) {
		return "", fmt.Errorf("path is not within base path, %s", baseDir)
	}

	return targetDir, nil
}

func (s *localStorage) Path(path ...string) (string, error) {
	return s.fromBasePath(path...)
}

func (s *localStorage) Store(r io.Reader, path ...string) (_ StoredFile, err error) {
	filePath, err := s.fromBasePath(path...)
	if err != nil {
		return StoredFile{}, err
	}

	if len(path) > 1 {
		if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
			return StoredFile{}, fmt.Errorf("failed to create sub dirs for %s %w", filePath, err)
		}
	}

	flags := os.O_RDWR | os.O_CREATE
	if s.config.Mode == REPLACE {
		flags |= os.O_TRUNC // truncate existing file
	} else {
		flags |= os.O_EXCL // file must not exist
	}

	// #nosec G304 fromBasePath does already a path cleanup
	target, err := os.OpenFile(filePath, flags, 0600)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create empty file %s with mode %s %w", filePath, s.config.Mode, err)
	}
	defer aio.CloseWith(&err, target)

	if _, err = io.Copy(target, r); err != nil {
		return StoredFile{}, fmt.Errorf("failed to copy file %w", err)
	}

	if err = target.Sync(); err != nil {
		return StoredFile{}, fmt.Errorf("failed to sync file %w", err)
	}

	return StoredFile{
		AbsolutePath: filePath,
		Path:         s.removeBasePath(filePath),
	}, nil
}

func (s *localStorage) removeBasePath(path string) string {
	noBasePath := strings.TrimPrefix(path, s.config.Location)
	noBasePath = strings.TrimPrefix(noBasePath, string(filepath.Separator))

	return noBasePath
}

// Reset deletes the base directory with all its content and creates it again empty.
func (s *localStorage) Reset() error {
	if err := s.Remove(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.config.Location, 0750); err != nil {
		return errors.Wrapf(err, "failed to create storage dir %s", s.config.Location)
	}

	return nil
}

// Remove deletes the base directory with all its content.
func (s *localStorage) Remove() error {
	if err := os.RemoveAll(s.config.Location); err != nil {
		return errors.Wrapf(err, "failed to delete storage dir %s", s.config.Location)
	}

	return nil
}

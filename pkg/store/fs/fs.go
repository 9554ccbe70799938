// Package fs stores graph documents as files in a single directory.
package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/OFFIS-RIT/kgview/pkg/store"

	"github.com/cockroachdb/errors"
)

// GraphFileStorage implements store.GraphStorage on a local directory.
type GraphFileStorage struct {
	dir string
}

// NewGraphFileStorage creates dir when missing and returns a storage rooted there.
func NewGraphFileStorage(dir string) (*GraphFileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create graphs dir %s", dir)
	}
	return &GraphFileStorage{dir: dir}, nil
}

// Dir returns the storage root.
func (s *GraphFileStorage) Dir() string {
	return s.dir
}

func (s *GraphFileStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "read graphs dir")
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return store.GraphNames(names), nil
}

func (s *GraphFileStorage) Get(ctx context.Context, name string) ([]byte, error) {
	file, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(store.ErrNotFound, "%s", filepath.Base(file))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", file)
	}
	return data, nil
}

// Put writes through a temporary file so readers never see a partial document.
func (s *GraphFileStorage) Put(ctx context.Context, name string, data []byte) error {
	file, err := s.path(name)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", file)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "write %s", file)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "chmod %s", file)
	}
	return errors.Wrapf(os.Rename(tmp.Name(), file), "store %s", file)
}

func (s *GraphFileStorage) path(name string) (string, error) {
	base, err := store.BaseName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, base), nil
}

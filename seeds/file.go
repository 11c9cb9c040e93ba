package seeds

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStorage stores each record as a single file in a directory. Writes go
// through a temporary file and a rename, so a crash mid-write leaves the
// previous record intact.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed and returns the backend.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("seeds: cannot create seed directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Name implements Storage.
func (fs *FileStorage) Name() string {
	return "file"
}

func (fs *FileStorage) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("seeds: invalid record name %q", name)
	}
	return filepath.Join(fs.dir, name), nil
}

// Get implements Storage.
func (fs *FileStorage) Get(name string) ([]byte, error) {
	path, err := fs.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Put implements Storage.
func (fs *FileStorage) Put(name string, data []byte) error {
	path, err := fs.path(name)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Package fsys wraps filesystem access behind afero so validators and the
// project driver can run against an in-memory tree in tests.
package fsys

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FS is the filesystem handle passed through the lint pipeline.
type FS struct {
	afero.Fs
}

// NewOS returns a handle over the real filesystem.
func NewOS() FS {
	return FS{afero.NewOsFs()}
}

// NewMem returns an empty in-memory filesystem for tests.
func NewMem() FS {
	return FS{afero.NewMemMapFs()}
}

// ReadFile reads the whole file.
func (f FS) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(f.Fs, path)
}

// WriteFile writes content, creating parent directories as needed.
func (f FS) WriteFile(path string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := f.Fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return afero.WriteFile(f.Fs, path, data, perm)
}

// Exists reports whether the path exists at all.
func (f FS) Exists(path string) bool {
	ok, err := afero.Exists(f.Fs, path)
	return err == nil && ok
}

// IsFile reports whether the path exists and is a regular file.
func (f FS) IsFile(path string) bool {
	info, err := f.Fs.Stat(path)
	return err == nil && !info.IsDir()
}

// IsDir reports whether the path exists and is a directory.
func (f FS) IsDir(path string) bool {
	ok, err := afero.IsDir(f.Fs, path)
	return err == nil && ok
}

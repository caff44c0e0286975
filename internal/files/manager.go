package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned for a name with no regular file behind it
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName is returned for names that are empty, hidden or carry a path
	ErrInvalidName = errors.New("invalid file name")
)

// Manager opens and removes files confined to one directory
type Manager struct {
	basePath string
	exts     []string
}

// NewManager creates a manager for basePath. When exts is non-empty only
// files with those extensions are reachable.
func NewManager(basePath string, exts ...string) *Manager {
	return &Manager{basePath: basePath, exts: exts}
}

// Resolve maps a bare file name to its path inside the base directory
func (m *Manager) Resolve(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, ".") || name != filepath.Base(name) ||
		strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if len(m.exts) > 0 && !hasExtension(name, m.exts) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(m.basePath, name), nil
}

// Stat returns the file's info, or ErrNotFound
func (m *Manager) Stat(name string) (FileInfo, error) {
	path, err := m.Resolve(name)
	if err != nil {
		return FileInfo{}, err
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && !info.Mode().IsRegular()) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("failed to stat %s: %w", name, err)
	}

	return FileInfo{Path: path, Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Open opens the named file for reading. The caller closes it.
func (m *Manager) Open(name string) (*os.File, FileInfo, error) {
	info, err := m.Stat(name)
	if err != nil {
		return nil, FileInfo{}, err
	}

	f, err := os.Open(info.Path)
	if err != nil {
		return nil, FileInfo{}, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, info, nil
}

// Remove deletes the named file
func (m *Manager) Remove(name string) error {
	info, err := m.Stat(name)
	if err != nil {
		return err
	}
	if err := os.Remove(info.Path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

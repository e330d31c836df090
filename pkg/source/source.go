// Package source abstracts where scanned file content comes from.
package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at the slash-separated path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files relative to a root directory.
type FilesystemSource struct {
	root string
}

// NewFilesystem creates a source that reads from the filesystem under root.
func NewFilesystem(root string) *FilesystemSource {
	if root == "" {
		root = "."
	}
	return &FilesystemSource{root: root}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.root, filepath.FromSlash(path)))
}

// MapSource serves content from memory. Paths it does not hold read as
// missing. It is safe for concurrent use.
type MapSource struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMap creates a source over files.
func NewMap(files map[string]string) *MapSource {
	m := &MapSource{files: make(map[string][]byte, len(files))}
	for k, v := range files {
		m.files[k] = []byte(v)
	}
	return m
}

// Read implements ContentSource.
func (m *MapSource) Read(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[path]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

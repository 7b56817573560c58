package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	storeDirMode = 0o700
	blobFileMode = 0o600
	tempFileGlob = ".blob-*.tmp"
)

// ErrNotFound is returned by a BlobStore when the named blob does not exist
var ErrNotFound = errors.New("blob not found")

// BlobStore persists opaque byte records by name
type BlobStore interface {
	ReadBytes(name string) ([]byte, error)
	WriteBytes(name string, data []byte) error
}

// FileStore keeps each blob in its own file under root
type FileStore struct {
	root string
	mu   sync.Mutex
}

var _ BlobStore = (*FileStore)(nil)

// NewFileStore returns a store rooted at root
func NewFileStore(root string) *FileStore {
	return &FileStore{root: filepath.Clean(root)}
}

// ReadBytes returns the blob contents or ErrNotFound
func (s *FileStore) ReadBytes(name string) ([]byte, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read blob %q: %w", name, err)
	}
	return data, nil
}

// WriteBytes replaces the blob atomically
func (s *FileStore) WriteBytes(name string, data []byte) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), tempFileGlob)
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp blob: %w", err)
	}
	if err := tmp.Chmod(blobFileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp blob: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace blob %q: %w", name, err)
	}
	return nil
}

func (s *FileStore) pathFor(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("blob name is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("invalid blob name %q", name)
	}
	return filepath.Join(s.root, cleaned), nil
}

// MemoryStore is an in-process BlobStore
type MemoryStore struct {
	blobs  map[string][]byte
	writes int
	mu     sync.Mutex
}

var _ BlobStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

// ReadBytes returns a copy of the blob or ErrNotFound
func (s *MemoryStore) ReadBytes(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), data...), nil
}

// WriteBytes stores a copy of data
func (s *MemoryStore) WriteBytes(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Writes reports how many writes the store has accepted
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

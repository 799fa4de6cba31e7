package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileVersion is the current version of the customization file format.
const FileVersion = 1

// File is the on-disk layout of a FileStore.
type File struct {
	// Version is the file format version.
	Version int `json:"version"`

	// SavedAt is when the file was last saved.
	SavedAt time.Time `json:"saved_at"`

	// Monitors maps device instance IDs to their customization.
	Monitors map[string]Customization `json:"monitors,omitempty"`
}

// FileStore persists customization to a JSON file. The whole file is
// rewritten on every save.
type FileStore struct {
	mu    sync.Mutex
	path  string
	cache *File
}

// NewFileStore creates a store backed by the given path. The file is read
// lazily on first access.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the stored customization.
func (s *FileStore) Load(deviceInstanceID string) (Customization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return Customization{}, err
	}

	c, ok := f.Monitors[deviceInstanceID]
	if !ok {
		return Customization{}, ErrNotFound
	}
	return c, nil
}

// Save stores the customization and writes the file.
func (s *FileStore) Save(deviceInstanceID string, c Customization) error {
	if err := checkID(deviceInstanceID); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.read()
	if err != nil {
		return err
	}
	f.Monitors[deviceInstanceID] = c
	f.SavedAt = time.Now()
	return s.write(f)
}

// Clear removes the file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache = nil
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// read returns the cached file, loading it from disk on first use.
// A missing file yields an empty layout.
func (s *FileStore) read() (*File, error) {
	if s.cache != nil {
		return s.cache, nil
	}

	f := &File{Version: FileVersion, Monitors: make(map[string]Customization)}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.cache = f
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read customization file: %w", err)
	}

	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("decode customization file: %w", err)
	}
	if f.Monitors == nil {
		f.Monitors = make(map[string]Customization)
	}
	s.cache = f
	return f, nil
}

func (s *FileStore) write(f *File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f.Version = FileVersion
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Compile-time interface satisfaction check.
var _ Store = (*FileStore)(nil)

package persistence

import "sync"

// MemoryStore is an in-memory implementation of the Store interface.
// This is primarily useful for testing and for runs that don't need
// persistence.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Customization
	saves   int
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Customization)}
}

// Load returns the stored customization.
func (s *MemoryStore) Load(deviceInstanceID string) (Customization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.records[deviceInstanceID]
	if !ok {
		return Customization{}, ErrNotFound
	}
	return c, nil
}

// Save stores the customization.
func (s *MemoryStore) Save(deviceInstanceID string, c Customization) error {
	if err := checkID(deviceInstanceID); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[deviceInstanceID] = c
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Compile-time interface satisfaction check.
var _ Store = (*MemoryStore)(nil)

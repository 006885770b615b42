package store

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore keeps records in a map. Used for tests and throwaway sessions.
type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string][]byte
	failErr error
	writes  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// FailWrites makes every following Put and Delete return err. A nil err
// restores normal behavior.
func (s *MemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Writes counts the successful Put and Delete calls
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Len returns how many records are stored
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (s *MemoryStore) Put(ctx context.Context, entries ...Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}
	for _, e := range entries {
		s.data[e.Key] = bytes.Clone(e.Value)
	}
	s.writes++
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := ValidateKey(key); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}
	for _, key := range keys {
		delete(s.data, key)
	}
	s.writes++
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

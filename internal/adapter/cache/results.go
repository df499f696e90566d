package cache

import (
	"slices"
	"sync"

	"search/internal/domain"
)

// ResultStore holds the ranked results of each distinct query. A key is
// reserved before its results are computed so that concurrent evaluations of
// the same query are never started twice.
type ResultStore struct {
	mu      sync.Mutex
	entries map[string]*resultEntry
}

type resultEntry struct {
	results []domain.Result
	filled  bool
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		entries: make(map[string]*resultEntry),
	}
}

// Reserve claims key. It returns false if key was already reserved or filled.
func (s *ResultStore) Reserve(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return false
	}
	s.entries[key] = &resultEntry{}
	return true
}

// Put fills the results for key, reserving it if needed.
func (s *ResultStore) Put(key string, results []domain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if results == nil {
		results = []domain.Result{}
	}
	s.entries[key] = &resultEntry{
		results: results,
		filled:  true,
	}
}

// Release drops a reservation that will never be filled. Filled entries are
// kept.
func (s *ResultStore) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.entries[key]; exists && !entry.filled {
		delete(s.entries, key)
	}
}

// Len returns the number of reserved or filled keys.
func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns a deep copy of every filled entry.
func (s *ResultStore) Snapshot() domain.QueryResults {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(domain.QueryResults, len(s.entries))
	for key, entry := range s.entries {
		if entry.filled {
			out[key] = slices.Clone(entry.results)
		}
	}
	return out
}

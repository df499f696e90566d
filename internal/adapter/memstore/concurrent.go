package memstore

import (
	"search/internal/adapter/retriever"
	"search/internal/domain"
)

// ConcurrentIndex is an InvertedIndex guarded by an RWLock. Lookups, search
// and snapshots take the read side; mutations take the write side.
type ConcurrentIndex struct {
	lock  RWLock
	index *InvertedIndex
}

// NewConcurrentIndex returns an empty thread-safe index.
func NewConcurrentIndex() *ConcurrentIndex {
	return &ConcurrentIndex{index: NewInvertedIndex()}
}

func (c *ConcurrentIndex) Add(word string, position int, location string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.index.Add(word, position, location)
}

func (c *ConcurrentIndex) AddAll(words []string, location string, start int) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.index.AddAll(words, location, start)
}

func (c *ConcurrentIndex) AddDocument(doc domain.Document) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.index.AddDocument(doc)
}

// Merge adds a private index built by another goroutine. other must not be
// mutated while Merge runs.
func (c *ConcurrentIndex) Merge(other *InvertedIndex) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.index.Merge(other)
}

func (c *ConcurrentIndex) Contains(word string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.Contains(word)
}

func (c *ConcurrentIndex) ContainsLocation(word, location string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.ContainsLocation(word, location)
}

func (c *ConcurrentIndex) ContainsPosition(word, location string, position int) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.ContainsPosition(word, location, position)
}

func (c *ConcurrentIndex) Size() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.Size()
}

func (c *ConcurrentIndex) Words() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.Words()
}

func (c *ConcurrentIndex) Locations(word string) []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.Locations(word)
}

func (c *ConcurrentIndex) Positions(word, location string) []int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.Positions(word, location)
}

func (c *ConcurrentIndex) Count(location string) int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.Count(location)
}

func (c *ConcurrentIndex) Snapshot() Snapshot {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.Snapshot()
}

func (c *ConcurrentIndex) LocationTotals() map[string]int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.index.LocationTotals()
}

// Search runs the whole query under a single read lock so the results see
// one consistent view of the index.
func (c *ConcurrentIndex) Search(terms []string, exact bool) []domain.Result {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return retriever.Search(c.index, terms, exact)
}

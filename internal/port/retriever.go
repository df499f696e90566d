package port

import "search/internal/domain"

// Searcher answers a normalized query against an index.
type Searcher interface {
	// Search returns ranked results for terms, matching whole words when
	// exact is set and word prefixes otherwise.
	Search(terms []string, exact bool) []domain.Result
}

// DocumentIndexer accepts whole documents.
type DocumentIndexer interface {
	AddDocument(doc domain.Document) bool
	Size() int
	LocationTotals() map[string]int
}

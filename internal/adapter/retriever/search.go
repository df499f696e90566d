package retriever

import (
	"strings"

	"search/internal/domain"
)

// Source is the read-only view of an inverted index that search needs.
// Implementations are not required to be safe for concurrent mutation; the
// caller holds whatever lock the index requires.
type Source interface {
	// Contains reports whether word is indexed.
	Contains(word string) bool

	// Ascend calls fn for each indexed word >= from in ascending order until
	// fn returns false.
	Ascend(from string, fn func(word string) bool)

	// Postings calls fn for each location of word with the number of
	// positions recorded there.
	Postings(word string, fn func(location string, count int))

	// Total returns the number of indexed term occurrences at location.
	Total(location string) int
}

// Search runs an exact or prefix search for terms against src.
func Search(src Source, terms []string, exact bool) []domain.Result {
	if exact {
		return Exact(src, terms)
	}
	return Prefix(src, terms)
}

// Exact returns ranked results for locations holding any of terms.
func Exact(src Source, terms []string) []domain.Result {
	c := newCollector(src)
	for _, term := range terms {
		if src.Contains(term) {
			c.collect(term)
		}
	}
	return c.results()
}

// Prefix returns ranked results for locations holding any word that starts
// with one of terms. A word matched by several terms is counted once per term.
func Prefix(src Source, terms []string) []domain.Result {
	c := newCollector(src)
	for _, term := range terms {
		if term == "" {
			continue
		}
		src.Ascend(term, func(word string) bool {
			if !strings.HasPrefix(word, term) {
				return false
			}
			c.collect(word)
			return true
		})
	}
	return c.results()
}

// collector accumulates one Result per location for a single query.
type collector struct {
	src    Source
	lookup map[string]*domain.Result
	hits   []*domain.Result
}

func newCollector(src Source) *collector {
	return &collector{
		src:    src,
		lookup: make(map[string]*domain.Result),
	}
}

func (c *collector) collect(word string) {
	c.src.Postings(word, func(location string, count int) {
		if r, ok := c.lookup[location]; ok {
			r.AddMatches(count)
			return
		}
		r := domain.NewResult(location, count, c.src.Total(location))
		c.lookup[location] = r
		c.hits = append(c.hits, r)
	})
}

func (c *collector) results() []domain.Result {
	out := make([]domain.Result, 0, len(c.hits))
	for _, r := range c.hits {
		out = append(out, *r)
	}
	domain.SortResults(out)
	return out
}

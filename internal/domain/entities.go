package domain

import (
	"cmp"
	"slices"
)

// Document is one indexed source: its location and its terms in reading order.
type Document struct {
	Location string
	Terms    []string
}

// Result is a ranked hit for one query at one location.
type Result struct {
	Location string
	Count    int
	Total    int
}

// NewResult creates a result for location with an initial match count.
// total is the number of indexed terms recorded for location.
func NewResult(location string, count, total int) *Result {
	return &Result{
		Location: location,
		Count:    count,
		Total:    total,
	}
}

// AddMatches adds n further matches to the result.
func (r *Result) AddMatches(n int) {
	r.Count += n
}

// Score returns Count / Total.
func (r Result) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Count) / float64(r.Total)
}

// CompareResults orders results by score descending, then count descending,
// then location ascending.
func CompareResults(a, b Result) int {
	if c := cmp.Compare(b.Score(), a.Score()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Count, a.Count); c != 0 {
		return c
	}
	return cmp.Compare(a.Location, b.Location)
}

// SortResults sorts results in rank order.
func SortResults(results []Result) {
	slices.SortFunc(results, CompareResults)
}

// QueryResults maps a canonical query string to its ranked results.
type QueryResults map[string][]Result

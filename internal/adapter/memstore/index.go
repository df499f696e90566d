package memstore

import (
	"math"
	"slices"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"search/internal/adapter/retriever"
	"search/internal/domain"
)

// Snapshot is a plain copy of the index: word -> location -> ascending positions.
type Snapshot map[string]map[string][]int

// Index is the operation set shared by InvertedIndex and ConcurrentIndex.
type Index interface {
	Add(word string, position int, location string) bool
	AddAll(words []string, location string, start int) bool
	AddDocument(doc domain.Document) bool
	Contains(word string) bool
	ContainsLocation(word, location string) bool
	ContainsPosition(word, location string, position int) bool
	Size() int
	Words() []string
	Locations(word string) []string
	Positions(word, location string) []int
	Count(location string) int
	Snapshot() Snapshot
	LocationTotals() map[string]int
	Search(terms []string, exact bool) []domain.Result
}

var (
	_ Index            = (*InvertedIndex)(nil)
	_ Index            = (*ConcurrentIndex)(nil)
	_ retriever.Source = (*InvertedIndex)(nil)
)

// InvertedIndex maps words to the locations and 1-based positions where
// they occur. It is not safe for concurrent use; see ConcurrentIndex.
type InvertedIndex struct {
	terms  map[string]map[string]*roaring.Bitmap
	totals map[string]int
	words  []string // sorted, distinct
}

// NewInvertedIndex returns an empty index.
func NewInvertedIndex() *InvertedIndex {
	return &InvertedIndex{
		terms:  make(map[string]map[string]*roaring.Bitmap),
		totals: make(map[string]int),
	}
}

// Add records word at position in location. It returns false if the
// triple was already present or the position is out of range.
func (ix *InvertedIndex) Add(word string, position int, location string) bool {
	added, fresh := ix.add(word, position, location)
	if fresh {
		ix.insertWords([]string{word})
	}
	return added
}

// AddAll records words at consecutive positions starting at start.
// It returns true if at least one new entry was recorded.
func (ix *InvertedIndex) AddAll(words []string, location string, start int) bool {
	var fresh []string
	changed := false
	for i, word := range words {
		added, isNew := ix.add(word, start+i, location)
		if added {
			changed = true
		}
		if isNew {
			fresh = append(fresh, word)
		}
	}
	ix.insertWords(fresh)
	return changed
}

// AddDocument records the document's terms starting at position 1.
func (ix *InvertedIndex) AddDocument(doc domain.Document) bool {
	return ix.AddAll(doc.Terms, doc.Location, 1)
}

func (ix *InvertedIndex) add(word string, position int, location string) (added, freshWord bool) {
	if !validPosition(position) {
		return false, false
	}
	locs, ok := ix.terms[word]
	if !ok {
		locs = make(map[string]*roaring.Bitmap)
		ix.terms[word] = locs
		freshWord = true
	}
	bm, ok := locs[location]
	if !ok {
		bm = roaring.New()
		locs[location] = bm
	}
	if !bm.CheckedAdd(uint32(position)) {
		return false, freshWord
	}
	ix.totals[location]++
	return true, freshWord
}

// insertWords merges new distinct words into the sorted word list.
func (ix *InvertedIndex) insertWords(fresh []string) {
	switch len(fresh) {
	case 0:
		return
	case 1:
		i, found := slices.BinarySearch(ix.words, fresh[0])
		if !found {
			ix.words = slices.Insert(ix.words, i, fresh[0])
		}
		return
	}
	slices.Sort(fresh)
	fresh = slices.Compact(fresh)

	merged := make([]string, 0, len(ix.words)+len(fresh))
	i, j := 0, 0
	for i < len(ix.words) && j < len(fresh) {
		switch strings.Compare(ix.words[i], fresh[j]) {
		case -1:
			merged = append(merged, ix.words[i])
			i++
		case 1:
			merged = append(merged, fresh[j])
			j++
		default:
			merged = append(merged, ix.words[i])
			i++
			j++
		}
	}
	merged = append(merged, ix.words[i:]...)
	merged = append(merged, fresh[j:]...)
	ix.words = merged
}

// Merge adds every entry of other into ix. Positions already present are
// not counted twice.
func (ix *InvertedIndex) Merge(other *InvertedIndex) {
	if other == nil || other == ix {
		return
	}
	var fresh []string
	for word, otherLocs := range other.terms {
		locs, ok := ix.terms[word]
		if !ok {
			locs = make(map[string]*roaring.Bitmap, len(otherLocs))
			ix.terms[word] = locs
			fresh = append(fresh, word)
		}
		for location, otherBM := range otherLocs {
			bm, ok := locs[location]
			if !ok {
				locs[location] = otherBM.Clone()
				ix.totals[location] += int(otherBM.GetCardinality())
				continue
			}
			before := bm.GetCardinality()
			bm.Or(otherBM)
			ix.totals[location] += int(bm.GetCardinality() - before)
		}
	}
	ix.insertWords(fresh)
}

// Contains reports whether word is indexed.
func (ix *InvertedIndex) Contains(word string) bool {
	_, ok := ix.terms[word]
	return ok
}

// ContainsLocation reports whether word occurs in location.
func (ix *InvertedIndex) ContainsLocation(word, location string) bool {
	locs, ok := ix.terms[word]
	if !ok {
		return false
	}
	_, ok = locs[location]
	return ok
}

// ContainsPosition reports whether word occurs in location at position.
func (ix *InvertedIndex) ContainsPosition(word, location string, position int) bool {
	if !validPosition(position) {
		return false
	}
	locs, ok := ix.terms[word]
	if !ok {
		return false
	}
	bm, ok := locs[location]
	if !ok {
		return false
	}
	return bm.Contains(uint32(position))
}

// Size returns the number of distinct words.
func (ix *InvertedIndex) Size() int {
	return len(ix.words)
}

// Words returns the indexed words in ascending order.
func (ix *InvertedIndex) Words() []string {
	return slices.Clone(ix.words)
}

// Locations returns the locations of word in ascending order.
func (ix *InvertedIndex) Locations(word string) []string {
	locs := ix.terms[word]
	out := make([]string, 0, len(locs))
	for location := range locs {
		out = append(out, location)
	}
	slices.Sort(out)
	return out
}

// Positions returns the positions of word in location in ascending order.
func (ix *InvertedIndex) Positions(word, location string) []int {
	bm, ok := ix.terms[word][location]
	if !ok {
		return nil
	}
	return toInts(bm)
}

// Count returns the number of entries recorded for location.
func (ix *InvertedIndex) Count(location string) int {
	return ix.totals[location]
}

// Total is Count under the name search expects.
func (ix *InvertedIndex) Total(location string) int {
	return ix.totals[location]
}

// Snapshot returns a deep copy of the word/location/position data.
func (ix *InvertedIndex) Snapshot() Snapshot {
	out := make(Snapshot, len(ix.terms))
	for word, locs := range ix.terms {
		m := make(map[string][]int, len(locs))
		for location, bm := range locs {
			m[location] = toInts(bm)
		}
		out[word] = m
	}
	return out
}

// LocationTotals returns a copy of the per-location entry counts.
func (ix *InvertedIndex) LocationTotals() map[string]int {
	out := make(map[string]int, len(ix.totals))
	for location, n := range ix.totals {
		out[location] = n
	}
	return out
}

// Ascend calls fn for each word >= from in ascending order until fn
// returns false.
func (ix *InvertedIndex) Ascend(from string, fn func(word string) bool) {
	i, _ := slices.BinarySearch(ix.words, from)
	for _, word := range ix.words[i:] {
		if !fn(word) {
			return
		}
	}
}

// Postings calls fn for each location of word with its position count.
func (ix *InvertedIndex) Postings(word string, fn func(location string, count int)) {
	for location, bm := range ix.terms[word] {
		fn(location, int(bm.GetCardinality()))
	}
}

// Search returns ranked results for terms.
func (ix *InvertedIndex) Search(terms []string, exact bool) []domain.Result {
	return retriever.Search(ix, terms, exact)
}

func toInts(bm *roaring.Bitmap) []int {
	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

func validPosition(position int) bool {
	return position >= 1 && uint64(position) <= math.MaxUint32
}

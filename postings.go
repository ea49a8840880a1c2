package bm25s

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// POSTING STORE: Term → Documents
// ═══════════════════════════════════════════════════════════════════════════════
// Each term maps to a Roaring Bitmap of the document ids that contain it:
//
//	"cat" → {1, 2}
//	"sat" → {1}
//	"ran" → {2}
//
// Why bitmaps?
//   - A bitmap is a set: the same id can never appear twice for a term
//   - Iteration is always in ascending id order
//   - df(t) is GetCardinality(), no counting
//   - Candidate lookup for a query is a single FastOr over a few bitmaps
//
// Terms whose bitmap becomes empty are deleted outright, so every entry in
// the store has at least one document.
// ═══════════════════════════════════════════════════════════════════════════════

// PostingStore maps each term to the set of documents containing it.
type PostingStore struct {
	lists map[string]*roaring.Bitmap
}

func newPostingStore() *PostingStore {
	return &PostingStore{
		lists: make(map[string]*roaring.Bitmap),
	}
}

// add records that docID contains term.
func (ps *PostingStore) add(term string, docID uint32) {
	bitmap, exists := ps.lists[term]
	if !exists {
		bitmap = roaring.NewBitmap()
		ps.lists[term] = bitmap
	}
	bitmap.Add(docID)
}

// remove drops docID from term's posting list, deleting the term when its
// list becomes empty.
func (ps *PostingStore) remove(term string, docID uint32) {
	bitmap, exists := ps.lists[term]
	if !exists {
		return
	}
	bitmap.Remove(docID)
	if bitmap.IsEmpty() {
		delete(ps.lists, term)
	}
}

// get returns the live bitmap for term. Callers inside the package must not
// mutate it.
func (ps *PostingStore) get(term string) (*roaring.Bitmap, bool) {
	bitmap, exists := ps.lists[term]
	return bitmap, exists
}

// contains reports whether docID is in term's posting list.
func (ps *PostingStore) contains(term string, docID uint32) bool {
	bitmap, exists := ps.lists[term]
	return exists && bitmap.Contains(docID)
}

// docFreq returns df(t), the number of documents containing term.
func (ps *PostingStore) docFreq(term string) int {
	bitmap, exists := ps.lists[term]
	if !exists {
		return 0
	}
	return int(bitmap.GetCardinality())
}

// union returns the set of documents containing at least one of terms.
// Terms without a posting list are skipped.
func (ps *PostingStore) union(terms []string) *roaring.Bitmap {
	bitmaps := make([]*roaring.Bitmap, 0, len(terms))
	for _, term := range terms {
		if bitmap, exists := ps.lists[term]; exists {
			bitmaps = append(bitmaps, bitmap)
		}
	}
	if len(bitmaps) == 0 {
		return roaring.NewBitmap()
	}
	return roaring.FastOr(bitmaps...)
}

func (ps *PostingStore) len() int {
	return len(ps.lists)
}

// terms returns the vocabulary in sorted order.
func (ps *PostingStore) terms() []string {
	terms := make([]string, 0, len(ps.lists))
	for term := range ps.lists {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// export copies every posting list into plain ascending slices.
func (ps *PostingStore) export() map[string][]uint32 {
	out := make(map[string][]uint32, len(ps.lists))
	for term, bitmap := range ps.lists {
		out[term] = bitmap.ToArray()
	}
	return out
}

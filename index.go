// Package bm25s implements an incremental, in-memory BM25 ranking engine
// meant to be embedded behind a narrow call boundary.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHAT IS IN THE INDEX?
// ═══════════════════════════════════════════════════════════════════════════════
// Example: Given these documents:
//
//	Doc 1: "the cat sat"
//	Doc 2: "the cat ran fast"
//
// After analysis ("the" is a stopword) the index holds:
//
//	Posting store               Document records
//	"cat"  → {1, 2}             1 → length 2, {cat:1, sat:1}
//	"sat"  → {1}                2 → length 3, {cat:1, ran:1, fast:1}
//	"ran"  → {2}
//	"fast" → {2}                total length = 5
//
// Both sides always agree: "cat" lists doc 1 exactly when doc 1's record
// counts "cat". Adding, replacing or removing a document touches only the
// terms of that document; nothing is rebuilt.
//
// CONCURRENCY:
// ------------
// Index is not synchronized. One writer at a time, and no reads while a
// write is in flight. Use SyncIndex when the caller can't guarantee that.
// ═══════════════════════════════════════════════════════════════════════════════
package bm25s

import (
	"fmt"
	"log/slog"
)

// Index is an in-memory BM25 index over caller-identified documents.
type Index struct {
	postings       *PostingStore            // Term → document ids
	docs           map[uint32]DocumentStats // DocID → statistics
	totalDocLength int64                    // Σ docs[*].Length
	params         BM25Parameters

	tokenizer    Tokenizer
	logger       *slog.Logger
	batchWorkers int
}

// Option configures an Index.
type Option func(*Index)

// WithTokenizer replaces the default Analyzer. The same tokenizer is used
// for documents and queries.
func WithTokenizer(tokenizer Tokenizer) Option {
	return func(idx *Index) {
		if tokenizer != nil {
			idx.tokenizer = tokenizer
		}
	}
}

// WithLogger sets the logger used for index events.
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) {
		if logger != nil {
			idx.logger = logger
		}
	}
}

// NewIndex creates an empty index. The parameters are stored verbatim; out of
// range values are accepted and only degrade ranking. See
// BM25Parameters.Validate for strict checking.
func NewIndex(params BM25Parameters, opts ...Option) *Index {
	idx := &Index{
		postings:  newPostingStore(),
		docs:      make(map[uint32]DocumentStats),
		params:    params,
		tokenizer: NewAnalyzer(DefaultAnalyzerConfig()),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	idx.logger = idx.logger.With(slog.String("component", "bm25s"))
	return idx
}

// Params returns the BM25 parameters the index was created with.
func (idx *Index) Params() BM25Parameters {
	return idx.params
}

// ═══════════════════════════════════════════════════════════════════════════════
// MUTATION
// ═══════════════════════════════════════════════════════════════════════════════

// AddOrUpdate indexes text under docID, replacing any document already stored
// under that id.
//
// STEP-BY-STEP EXAMPLE:
// ---------------------
// Input: docID=1, text="the cat sat on the cat"
//
// Step 1: Tokenize → ["cat", "sat", "cat"]
//
//	If this fails nothing below runs and the index is unchanged.
//
// Step 2: If doc 1 exists, remove it completely (see Remove)
//
// Step 3: Build the record
//
//	Length = 3, TermFreqs = {cat: 2, sat: 1}
//
// Step 4: Update postings and totals
//
//	"cat" ← 1, "sat" ← 1, totalDocLength += 3
func (idx *Index) AddOrUpdate(docID uint32, text string) error {
	tokens, err := idx.tokenizer.Tokenize(text)
	if err != nil {
		idx.logger.Warn("rejected document",
			slog.Uint64("doc_id", uint64(docID)),
			slog.String("error", err.Error()))
		return fmt.Errorf("index document %d: %w", docID, asInvalidInput(err))
	}

	idx.apply(newDocumentStats(docID, tokens))
	return nil
}

// apply installs a fully built record. It cannot fail, which is what keeps
// AddOrUpdate and AddBatch all-or-nothing: every fallible step happens
// before the first call to apply.
func (idx *Index) apply(stats DocumentStats) {
	replaced := idx.removeInternal(stats.DocID)

	for term := range stats.TermFreqs {
		idx.postings.add(term, stats.DocID)
	}
	idx.docs[stats.DocID] = stats
	idx.totalDocLength += int64(stats.Length)

	idx.logger.Debug("indexed document",
		slog.Uint64("doc_id", uint64(stats.DocID)),
		slog.Int("doc_length", stats.Length),
		slog.Int("unique_terms", len(stats.TermFreqs)),
		slog.Bool("replaced", replaced))
}

// Remove deletes docID from the index. Removing an id that is not indexed
// is a no-op; the return value reports whether anything was removed.
//
// EXAMPLE:
// --------
// Before: "cat" → {1, 2}, "sat" → {1}, total = 5
// Remove(1)
// After:  "cat" → {2}, total = 3
//
//	("sat" had only doc 1, so the term is gone entirely)
func (idx *Index) Remove(docID uint32) bool {
	removed := idx.removeInternal(docID)
	if removed {
		idx.logger.Debug("removed document", slog.Uint64("doc_id", uint64(docID)))
	}
	return removed
}

func (idx *Index) removeInternal(docID uint32) bool {
	stats, exists := idx.docs[docID]
	if !exists {
		return false
	}

	for term := range stats.TermFreqs {
		idx.postings.remove(term, docID)
	}
	idx.totalDocLength -= int64(stats.Length)
	delete(idx.docs, docID)
	return true
}

// ═══════════════════════════════════════════════════════════════════════════════
// CORPUS STATISTICS
// ═══════════════════════════════════════════════════════════════════════════════

// Len returns N, the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Contains reports whether docID is indexed.
func (idx *Index) Contains(docID uint32) bool {
	_, exists := idx.docs[docID]
	return exists
}

// TotalDocLength returns the sum of all document lengths.
func (idx *Index) TotalDocLength() int64 {
	return idx.totalDocLength
}

// AvgDocLength returns avgdl, or 0 for an empty index.
func (idx *Index) AvgDocLength() float64 {
	if len(idx.docs) == 0 {
		return 0
	}
	return float64(idx.totalDocLength) / float64(len(idx.docs))
}

// DocFreq returns the number of documents containing term. The term is
// looked up as is, without analysis.
func (idx *Index) DocFreq(term string) int {
	return idx.postings.docFreq(term)
}

// Terms returns the indexed vocabulary in sorted order.
func (idx *Index) Terms() []string {
	return idx.postings.terms()
}

// CheckInvariants verifies that postings, records and totals agree.
// It walks the whole index and is meant for tests and debug builds.
func (idx *Index) CheckInvariants() error {
	var total int64

	for docID, stats := range idx.docs {
		if stats.DocID != docID {
			return fmt.Errorf("record under id %d claims id %d", docID, stats.DocID)
		}
		sum := 0
		for term, freq := range stats.TermFreqs {
			if freq < 1 {
				return fmt.Errorf("doc %d: term %q has count %d", docID, term, freq)
			}
			if !idx.postings.contains(term, docID) {
				return fmt.Errorf("doc %d: term %q missing from postings", docID, term)
			}
			sum += freq
		}
		if sum != stats.Length {
			return fmt.Errorf("doc %d: term counts sum to %d, length is %d", docID, sum, stats.Length)
		}
		total += int64(stats.Length)
	}

	if total != idx.totalDocLength {
		return fmt.Errorf("total length is %d, records sum to %d", idx.totalDocLength, total)
	}

	for term, bitmap := range idx.postings.lists {
		if bitmap.IsEmpty() {
			return fmt.Errorf("term %q has an empty posting list", term)
		}
		iter := bitmap.Iterator()
		for iter.HasNext() {
			docID := iter.Next()
			stats, exists := idx.docs[docID]
			if !exists {
				return fmt.Errorf("term %q lists unknown doc %d", term, docID)
			}
			if stats.TermFreqs[term] < 1 {
				return fmt.Errorf("term %q lists doc %d, which does not contain it", term, docID)
			}
		}
	}

	return nil
}

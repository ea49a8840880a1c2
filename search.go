package bm25s

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SEARCH: Ranked Top-K Retrieval
// ═══════════════════════════════════════════════════════════════════════════════
// EXAMPLE:
// --------
// Query: "machine learning learning"
//
// Step 1: Tokenize and dedupe → ["learn", "machin"]
//
//	Repeating a word in the query does not weigh it more; term frequency
//	only counts on the document side.
//
// Step 2: Find candidate documents (union of posting lists):
//
//	"machin" → {1, 3, 5}
//	"learn"  → {1, 2, 5}
//	candidates = {1, 2, 3, 5}
//
// Step 3: Score each candidate with BM25
//
// Step 4: Keep the best K, highest score first, ties by ascending doc id
// ═══════════════════════════════════════════════════════════════════════════════

// Search returns at most topK documents ranked by BM25 relevance to query.
//
// An empty index, a topK of zero, or a query whose terms match nothing all
// return an empty slice, not an error. The only error is ErrInvalidInput for
// query text the tokenizer rejects.
func (idx *Index) Search(query string, topK int) ([]Match, error) {
	tokens, err := idx.tokenizer.Tokenize(query)
	if err != nil {
		return nil, fmt.Errorf("search: %w", asInvalidInput(err))
	}

	terms := distinctTerms(tokens)
	idx.logger.Debug("bm25 search",
		slog.String("query", query),
		slog.Any("terms", terms),
		slog.Int("top_k", topK))

	if topK <= 0 || len(idx.docs) == 0 {
		return []Match{}, nil
	}

	return idx.rank(terms, idx.postings.union(terms), topK), nil
}

// rank scores every document in candidates against terms and keeps the best
// topK. Candidates containing none of the terms are skipped.
func (idx *Index) rank(terms []string, candidates *roaring.Bitmap, topK int) []Match {
	if topK <= 0 || len(idx.docs) == 0 || candidates.IsEmpty() {
		return []Match{}
	}

	s := newScorer(idx.params, len(idx.docs), idx.totalDocLength)

	// IDF depends only on the term, so compute it once per query
	idfs := make([]float64, len(terms))
	for i, term := range terms {
		idfs[i] = s.idf(idx.postings.docFreq(term))
	}

	selector := newTopKSelector(topK)
	iter := candidates.Iterator()
	for iter.HasNext() {
		docID := iter.Next()
		stats, exists := idx.docs[docID]
		if !exists || !containsAny(stats, terms) {
			continue
		}
		selector.offer(Match{
			DocID: docID,
			Score: s.score(stats, terms, idfs),
		})
	}

	return selector.results()
}

// distinctTerms collapses a token sequence to its sorted set of terms.
// Sorting fixes the order scores are summed in, so equal inputs give
// bit-for-bit equal scores.
func distinctTerms(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
	}
	sort.Strings(terms)
	return terms
}

func containsAny(stats DocumentStats, terms []string) bool {
	for _, term := range terms {
		if stats.TermFreqs[term] > 0 {
			return true
		}
	}
	return false
}

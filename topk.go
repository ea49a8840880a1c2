package bm25s

import (
	"container/heap"
	"sort"
)

// Match is one ranked search result.
type Match struct {
	DocID uint32  `json:"doc_id" cbor:"1,keyasint"`
	Score float64 `json:"score" cbor:"2,keyasint"`
}

// ranksBefore is the result order: higher score first, then lower doc id.
// The id tie-break makes rankings reproducible.
func ranksBefore(a, b Match) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}

// ═══════════════════════════════════════════════════════════════════════════════
// TOP-K SELECTION
// ═══════════════════════════════════════════════════════════════════════════════
// We keep the K best matches in a min-heap whose root is the WORST of them.
// Each new candidate either beats the root (replace it) or is discarded.
//
//	candidates: 5.1, 2.0, 7.3, 4.4    K = 2
//
//	push 5.1        heap: [5.1]
//	push 2.0        heap: [2.0, 5.1]
//	7.3 beats 2.0   heap: [5.1, 7.3]
//	4.4 loses       heap: [5.1, 7.3]
//
// Drain the heap from the back: [7.3, 5.1]
//
// O(n log k) instead of sorting all n candidates.
// ═══════════════════════════════════════════════════════════════════════════════

type matchHeap []Match

func (h matchHeap) Len() int           { return len(h) }
func (h matchHeap) Less(i, j int) bool { return ranksBefore(h[j], h[i]) } // worst at the root
func (h matchHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *matchHeap) Push(x any) {
	*h = append(*h, x.(Match))
}

func (h *matchHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topKSelector accumulates candidates and keeps the best k.
type topKSelector struct {
	k    int
	heap matchHeap
}

func newTopKSelector(k int) *topKSelector {
	capacity := k
	if capacity > 1024 {
		capacity = 1024
	}
	if capacity < 0 {
		capacity = 0
	}
	return &topKSelector{
		k:    k,
		heap: make(matchHeap, 0, capacity),
	}
}

func (s *topKSelector) offer(m Match) {
	if s.k <= 0 {
		return
	}
	if len(s.heap) < s.k {
		heap.Push(&s.heap, m)
		return
	}
	if ranksBefore(m, s.heap[0]) {
		s.heap[0] = m
		heap.Fix(&s.heap, 0)
	}
}

// results drains the selector into rank order.
func (s *topKSelector) results() []Match {
	out := make([]Match, len(s.heap))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&s.heap).(Match)
	}
	return out
}

// sortMatches orders matches by score descending, doc id ascending.
func sortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		return ranksBefore(matches[i], matches[j])
	})
}

// limitResults returns at most maxResults items.
func limitResults(matches []Match, maxResults int) []Match {
	if maxResults <= 0 {
		return []Match{}
	}
	if maxResults > len(matches) {
		return matches
	}
	return matches[:maxResults]
}

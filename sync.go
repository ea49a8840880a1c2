package bm25s

import (
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// SyncIndex guards an Index with a read-write lock.
//
// Mutations (AddOrUpdate, AddBatch, Remove, Decode) take the write lock.
// Reads (Search, Document, Snapshot, ...) share the read lock, so any number
// of readers run together but never alongside a mutation.
type SyncIndex struct {
	mu    sync.RWMutex
	index *Index
}

// NewSyncIndex creates an empty synchronized index.
func NewSyncIndex(params BM25Parameters, opts ...Option) *SyncIndex {
	return WrapIndex(NewIndex(params, opts...))
}

// WrapIndex takes ownership of index. The caller must stop using index
// directly.
func WrapIndex(index *Index) *SyncIndex {
	return &SyncIndex{index: index}
}

func (s *SyncIndex) AddOrUpdate(docID uint32, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.AddOrUpdate(docID, text)
}

func (s *SyncIndex) AddBatch(docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.AddBatch(docs)
}

func (s *SyncIndex) Remove(docID uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Remove(docID)
}

func (s *SyncIndex) Decode(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Decode(data)
}

func (s *SyncIndex) Search(query string, topK int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Search(query, topK)
}

func (s *SyncIndex) Document(docID uint32) (DocumentStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Document(docID)
}

func (s *SyncIndex) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Snapshot()
}

func (s *SyncIndex) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Summary()
}

func (s *SyncIndex) Encode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Encode()
}

func (s *SyncIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Len()
}

// Query runs fn with a QueryBuilder while holding the read lock. The builder
// must not escape fn.
func (s *SyncIndex) Query(fn func(*QueryBuilder) []Match) []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(NewQueryBuilder(s.index))
}

// QueryBitmap is Query for callers that want the unranked document set.
func (s *SyncIndex) QueryBitmap(fn func(*QueryBuilder) *roaring.Bitmap) *roaring.Bitmap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(NewQueryBuilder(s.index))
}

package bm25s

import (
	"fmt"
	"log/slog"
	"sync"
)

// ═══════════════════════════════════════════════════════════════════════════════
// HANDLES: Opaque References for a Call Boundary
// ═══════════════════════════════════════════════════════════════════════════════
// A host on the other side of a language boundary can't hold a Go pointer.
// It holds a Handle, a plain integer, and every call looks the index up:
//
//	h := handles.Create(DefaultBM25Parameters())   // host stores 1
//	idx, _ := handles.Get(h)                       // each call
//	handles.Destroy(h)                             // host is done
//	handles.Get(h)                                 // ErrInvalidHandle
//
// Rules:
//   - Create and Destroy come in pairs
//   - Destroy invalidates the handle for good; ids are never reused
//   - Handle 0 is never issued, so a zeroed host variable is always invalid
// ═══════════════════════════════════════════════════════════════════════════════

// Handle identifies an index owned by a Handles table.
type Handle uint64

// Handles is a table of live indexes. It is safe for concurrent use; each
// index it hands out is a SyncIndex.
type Handles struct {
	mu      sync.Mutex
	next    Handle
	indexes map[Handle]*SyncIndex
	opts    []Option
}

// NewHandles creates an empty table. opts apply to every index it creates.
func NewHandles(opts ...Option) *Handles {
	return &Handles{
		indexes: make(map[Handle]*SyncIndex),
		opts:    opts,
	}
}

// Create makes a new empty index and returns its handle.
func (h *Handles) Create(params BM25Parameters) Handle {
	index := NewSyncIndex(params, h.opts...)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	handle := h.next
	h.indexes[handle] = index

	slog.Debug("created index handle",
		slog.Uint64("handle", uint64(handle)),
		slog.Float64("k1", params.K1),
		slog.Float64("b", params.B))
	return handle
}

// Get returns the index behind handle.
func (h *Handles) Get(handle Handle) (*SyncIndex, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	index, exists := h.indexes[handle]
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHandle, handle)
	}
	return index, nil
}

// Destroy releases the index behind handle. Destroying a handle twice
// returns ErrInvalidHandle.
func (h *Handles) Destroy(handle Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.indexes[handle]; !exists {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, handle)
	}
	delete(h.indexes, handle)

	slog.Debug("destroyed index handle", slog.Uint64("handle", uint64(handle)))
	return nil
}

// Len returns the number of live handles.
func (h *Handles) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.indexes)
}

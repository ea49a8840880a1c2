package bm25s

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ═══════════════════════════════════════════════════════════════════════════════
// INTROSPECTION & EXPORT
// ═══════════════════════════════════════════════════════════════════════════════
// Nothing returned from here aliases the index. Every map and slice is a
// fresh copy, so a boundary layer can hand the data to its host and the
// index can keep mutating underneath. The flip side: a snapshot is a
// point-in-time copy and goes stale on the next mutation.
// ═══════════════════════════════════════════════════════════════════════════════

// Document returns a copy of the record for docID. The bool is false when the
// document is not indexed; that is a normal outcome, not an error.
func (idx *Index) Document(docID uint32) (DocumentStats, bool) {
	stats, exists := idx.docs[docID]
	if !exists {
		return DocumentStats{}, false
	}
	return stats.clone(), true
}

// Snapshot is a full, independent export of an index.
type Snapshot struct {
	Postings       map[string][]uint32      `json:"postings" cbor:"1,keyasint"`         // Term → ascending doc ids
	Documents      map[uint32]DocumentStats `json:"document_records" cbor:"2,keyasint"` // DocID → record
	TotalDocLength int64                    `json:"total_doc_lengths" cbor:"3,keyasint"`
	K1             float64                  `json:"k" cbor:"4,keyasint"`
	B              float64                  `json:"b" cbor:"5,keyasint"`
}

// Snapshot copies the complete index state.
func (idx *Index) Snapshot() Snapshot {
	documents := make(map[uint32]DocumentStats, len(idx.docs))
	for docID, stats := range idx.docs {
		documents[docID] = stats.clone()
	}
	return Snapshot{
		Postings:       idx.postings.export(),
		Documents:      documents,
		TotalDocLength: idx.totalDocLength,
		K1:             idx.params.K1,
		B:              idx.params.B,
	}
}

// Summary holds corpus-wide counters.
type Summary struct {
	Documents      int
	Terms          int
	TotalDocLength int64
	AvgDocLength   float64
}

// Summary returns the corpus-wide counters without copying any postings.
func (idx *Index) Summary() Summary {
	return Summary{
		Documents:      len(idx.docs),
		Terms:          idx.postings.len(),
		TotalDocLength: idx.totalDocLength,
		AvgDocLength:   idx.AvgDocLength(),
	}
}

// snapshotEncMode uses Core Deterministic Encoding: sorted map keys and
// shortest encodings, so equal snapshots encode to identical bytes.
var snapshotEncMode cbor.EncMode

func init() {
	var err error
	snapshotEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bm25s: CBOR encoder initialization failed: " + err.Error())
	}
}

// EncodeSnapshot serializes a snapshot to CBOR for transfer across a
// language or process boundary.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	data, err := snapshotEncMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses data produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorruptEncoding, err)
	}
	return s, nil
}

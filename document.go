package bm25s

// DocumentStats stores statistics about a single indexed document.
//
// Length counts every token, repeats included, so the TermFreqs values always
// sum to Length. The original text is never kept.
type DocumentStats struct {
	DocID     uint32         `json:"doc_id" cbor:"1,keyasint"`
	Length    int            `json:"doc_length" cbor:"2,keyasint"`
	TermFreqs map[string]int `json:"term_freq" cbor:"3,keyasint"`
}

// newDocumentStats derives a record from an already tokenized document.
//
// EXAMPLE:
// --------
// tokens = ["cat", "sat", "cat"]
//
//	Length    = 3
//	TermFreqs = {"cat": 2, "sat": 1}
func newDocumentStats(docID uint32, tokens []string) DocumentStats {
	stats := DocumentStats{
		DocID:     docID,
		Length:    len(tokens),
		TermFreqs: make(map[string]int),
	}
	for _, token := range tokens {
		stats.TermFreqs[token]++
	}
	return stats
}

// clone returns a deep copy so callers never alias the index's maps.
func (ds DocumentStats) clone() DocumentStats {
	termFreqs := make(map[string]int, len(ds.TermFreqs))
	for term, freq := range ds.TermFreqs {
		termFreqs[term] = freq
	}
	return DocumentStats{
		DocID:     ds.DocID,
		Length:    ds.Length,
		TermFreqs: termFreqs,
	}
}

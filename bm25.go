package bm25s

import (
	"fmt"
	"math"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BM25 RANKING
// ═══════════════════════════════════════════════════════════════════════════════
// BM25 (Best Matching 25) estimates how relevant a document is to a query.
//
// BM25 FORMULA:
// -------------
// For each distinct query term t present in document d:
//
//	score += IDF(t) * (f * (k1 + 1)) / (f + k1 * (1 - b + b * (dl / avgdl)))
//
// Where:
//
//	IDF(t) = ln((N - df + 0.5) / (df + 0.5) + 1)
//	f      = occurrences of t in d
//	dl     = length of d (tokens, repeats counted)
//	avgdl  = average length over the N indexed documents
//	k1     = term frequency saturation (default 1.2)
//	b      = length normalization strength (default 0.75)
//
// The +1 inside the logarithm keeps IDF positive even for a term that
// appears in every document.
// ═══════════════════════════════════════════════════════════════════════════════

// BM25Parameters holds the tuning parameters for BM25.
type BM25Parameters struct {
	K1 float64 `yaml:"k1"` // Term frequency saturation (typical: 1.2-2.0)
	B  float64 `yaml:"b"`  // Length normalization (typical: 0.75)
}

// DefaultBM25Parameters returns the standard BM25 parameters.
func DefaultBM25Parameters() BM25Parameters {
	return BM25Parameters{
		K1: 1.2,
		B:  0.75,
	}
}

// Validate reports parameters that degrade ranking quality. NewIndex accepts
// any values; callers wanting strict checking call this first.
func (p BM25Parameters) Validate() error {
	if math.IsNaN(p.K1) || math.IsInf(p.K1, 0) || p.K1 < 0 {
		return fmt.Errorf("%w: k1 = %v, want a finite value >= 0", ErrInvalidParameter, p.K1)
	}
	if math.IsNaN(p.B) || p.B < 0 || p.B > 1 {
		return fmt.Errorf("%w: b = %v, want a value in [0, 1]", ErrInvalidParameter, p.B)
	}
	return nil
}

// scorer is a pure BM25 computation over one point-in-time view of the corpus.
// It reads nothing from the index after construction.
type scorer struct {
	params    BM25Parameters
	numDocs   float64
	avgDocLen float64
}

func newScorer(params BM25Parameters, numDocs int, totalDocLength int64) scorer {
	s := scorer{
		params:  params,
		numDocs: float64(numDocs),
	}
	if numDocs > 0 {
		s.avgDocLen = float64(totalDocLength) / float64(numDocs)
	}
	return s
}

// idf computes the inverse document frequency for a term with document
// frequency df.
//
// EXAMPLE:
// --------
// N = 1000
// "the"     in 950 docs → IDF ≈ 0.05 (common, low weight)
// "quantum" in   5 docs → IDF ≈ 5.2  (rare, high weight)
func (s scorer) idf(df int) float64 {
	d := float64(df)
	return math.Log((s.numDocs-d+0.5)/(d+0.5) + 1.0)
}

// tf computes the saturated, length-normalized term frequency component.
func (s scorer) tf(freq, docLen int) float64 {
	f := float64(freq)
	k1 := s.params.K1
	b := s.params.B

	lengthRatio := 0.0
	if s.avgDocLen > 0 {
		lengthRatio = float64(docLen) / s.avgDocLen
	}

	numerator := f * (k1 + 1)
	denominator := f + k1*(1-b+b*lengthRatio)
	return numerator / denominator
}

// score sums idf * tf over the query terms present in the document. terms and
// idfs are parallel slices; terms must be in a fixed order so the floating
// point sum is the same every time.
func (s scorer) score(stats DocumentStats, terms []string, idfs []float64) float64 {
	score := 0.0
	for i, term := range terms {
		freq := stats.TermFreqs[term]
		if freq == 0 {
			continue
		}
		score += idfs[i] * s.tf(freq, stats.Length)
	}
	return score
}

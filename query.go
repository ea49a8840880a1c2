package bm25s

import (
	"github.com/RoaringBitmap/roaring"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BOOLEAN QUERIES
// ═══════════════════════════════════════════════════════════════════════════════
// Search ranks every document that shares at least one term with the query
// (an implicit OR). QueryBuilder lets a caller restrict the candidate set
// with explicit AND / OR / NOT before ranking:
//
//	NewQueryBuilder(idx).
//	    Term("cat").
//	    And().
//	    Group(func(q *QueryBuilder) {
//	        q.Term("sat").Or().Term("ran")
//	    }).
//	    And().Not().Term("dog").
//	    ExecuteWithBM25(10)
//
// Every operation is a Roaring Bitmap operation on document ids:
//
//	AND → roaring.And     OR → roaring.Or     NOT → all docs AndNot term
//
// Operators apply left to right; use Group for precedence.
// ═══════════════════════════════════════════════════════════════════════════════

// QueryBuilder builds a boolean query over an index.
type QueryBuilder struct {
	index  *Index
	stack  []*roaring.Bitmap // Intermediate results
	ops    []QueryOp         // Pending operators between results
	negate bool              // Whether the next operand is negated
	terms  []string          // Positive terms, used for BM25 scoring
}

// QueryOp is a boolean operator between two operands.
type QueryOp int

const (
	OpNone QueryOp = iota
	OpAnd
	OpOr
)

// NewQueryBuilder starts an empty query against index.
func NewQueryBuilder(index *Index) *QueryBuilder {
	return &QueryBuilder{
		index: index,
		stack: make([]*roaring.Bitmap, 0),
		ops:   make([]QueryOp, 0),
		terms: make([]string, 0),
	}
}

// Term matches documents containing term. The term is analyzed with the
// index tokenizer; text that analyzes to several terms matches documents
// containing all of them, and text that analyzes to nothing (or that the
// tokenizer rejects) matches no documents.
func (qb *QueryBuilder) Term(term string) *QueryBuilder {
	tokens, err := qb.index.tokenizer.Tokenize(term)
	if err != nil || len(tokens) == 0 {
		return qb.push(roaring.NewBitmap(), nil)
	}

	terms := distinctTerms(tokens)
	bitmap := qb.getTermBitmap(terms[0])
	for _, t := range terms[1:] {
		bitmap.And(qb.getTermBitmap(t))
	}

	return qb.push(bitmap, terms)
}

// And joins the previous and next operands with AND.
func (qb *QueryBuilder) And() *QueryBuilder {
	qb.ops = append(qb.ops, OpAnd)
	return qb
}

// Or joins the previous and next operands with OR.
func (qb *QueryBuilder) Or() *QueryBuilder {
	qb.ops = append(qb.ops, OpOr)
	return qb
}

// Not negates the next operand.
func (qb *QueryBuilder) Not() *QueryBuilder {
	qb.negate = true
	return qb
}

// Group evaluates a sub-query as a single operand.
func (qb *QueryBuilder) Group(fn func(*QueryBuilder)) *QueryBuilder {
	sub := NewQueryBuilder(qb.index)
	fn(sub)
	return qb.push(sub.Execute(), sub.terms)
}

// Execute returns the set of matching document ids.
func (qb *QueryBuilder) Execute() *roaring.Bitmap {
	if len(qb.stack) == 0 {
		return roaring.NewBitmap()
	}

	result := qb.stack[0]
	for i := 1; i < len(qb.stack); i++ {
		if i-1 >= len(qb.ops) {
			break
		}
		switch qb.ops[i-1] {
		case OpAnd:
			result = roaring.And(result, qb.stack[i])
		case OpOr:
			result = roaring.Or(result, qb.stack[i])
		}
	}

	return result
}

// ExecuteWithBM25 ranks the matching documents by BM25 over the query's
// positive terms and returns at most maxResults. Matching documents that
// contain none of the positive terms (possible with a pure NOT) are left out.
func (qb *QueryBuilder) ExecuteWithBM25(maxResults int) []Match {
	return qb.index.rank(distinctTerms(qb.terms), qb.Execute(), maxResults)
}

// push adds an operand, applying a pending NOT. Negated operands do not
// contribute scoring terms.
func (qb *QueryBuilder) push(bitmap *roaring.Bitmap, terms []string) *QueryBuilder {
	if qb.negate {
		bitmap = qb.negateBitmap(bitmap)
		qb.negate = false
	} else {
		qb.terms = append(qb.terms, terms...)
	}
	qb.stack = append(qb.stack, bitmap)
	return qb
}

func (qb *QueryBuilder) getTermBitmap(term string) *roaring.Bitmap {
	if bitmap, exists := qb.index.postings.get(term); exists {
		return bitmap.Clone() // never hand out the live posting list
	}
	return roaring.NewBitmap()
}

func (qb *QueryBuilder) negateBitmap(bitmap *roaring.Bitmap) *roaring.Bitmap {
	allDocs := roaring.NewBitmap()
	for docID := range qb.index.docs {
		allDocs.Add(docID)
	}
	return roaring.AndNot(allDocs, bitmap)
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONVENIENCE QUERIES
// ═══════════════════════════════════════════════════════════════════════════════

// AllOf matches documents containing every term.
func AllOf(index *Index, terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}
	qb := NewQueryBuilder(index).Term(terms[0])
	for _, term := range terms[1:] {
		qb.And().Term(term)
	}
	return qb.Execute()
}

// AnyOf matches documents containing at least one term.
func AnyOf(index *Index, terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.NewBitmap()
	}
	qb := NewQueryBuilder(index).Term(terms[0])
	for _, term := range terms[1:] {
		qb.Or().Term(term)
	}
	return qb.Execute()
}

// TermExcluding matches documents containing include but not exclude.
func TermExcluding(index *Index, include, exclude string) *roaring.Bitmap {
	return NewQueryBuilder(index).
		Term(include).
		And().Not().Term(exclude).
		Execute()
}

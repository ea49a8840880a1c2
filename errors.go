package bm25s

import (
	"errors"
	"fmt"
)

// ═══════════════════════════════════════════════════════════════════════════════
// ERROR DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════
// Errors are package-level values so callers can match them with errors.Is,
// even after we wrap them with extra context via fmt.Errorf("...: %w", err).
//
// A missing document is NOT an error anywhere in this package:
//   - Remove of an unknown id is a no-op
//   - Document() reports absence with a bool
//   - Search with unmatched terms returns an empty slice
var (
	// ErrInvalidInput is returned when text cannot be tokenized.
	// It is the only way a mutation can fail, and a failed mutation
	// leaves the index untouched.
	ErrInvalidInput = errors.New("invalid input text")

	// ErrInvalidParameter is returned by BM25Parameters.Validate for
	// k1 < 0, b outside [0, 1], or non-finite values.
	ErrInvalidParameter = errors.New("invalid bm25 parameter")

	// ErrInvalidHandle is returned when a handle was never issued or has
	// already been destroyed.
	ErrInvalidHandle = errors.New("invalid index handle")

	// ErrCorruptEncoding is returned by Decode for truncated or tampered data.
	ErrCorruptEncoding = errors.New("corrupt index encoding")
)

// asInvalidInput makes sure a tokenizer failure matches ErrInvalidInput,
// whatever error the tokenizer itself returned.
func asInvalidInput(err error) error {
	if errors.Is(err, ErrInvalidInput) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

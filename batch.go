package bm25s

import (
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Document is one entry of a batch.
type Document struct {
	ID   uint32
	Text string
}

// WithBatchWorkers bounds how many documents AddBatch tokenizes at once.
// Values below 1 mean GOMAXPROCS.
func WithBatchWorkers(n int) Option {
	return func(idx *Index) {
		idx.batchWorkers = n
	}
}

// AddBatch indexes many documents as one all-or-nothing operation.
//
// HOW IT WORKS:
// -------------
// Phase 1 (parallel): tokenize every document and build its record.
//
//	No index state is touched; the tokenizer must be safe for concurrent
//	use, which the built-in tokenizers are.
//
// Phase 2 (serial): apply the records in batch order.
//
//	Nothing in this phase can fail.
//
// If any document fails tokenization, AddBatch returns that error before
// phase 2 starts and the index is unchanged. When the batch holds the same
// id more than once, the last occurrence wins, exactly as if AddOrUpdate
// had been called for each document in order.
func (idx *Index) AddBatch(docs []Document) error {
	records := make([]DocumentStats, len(docs))

	workers := idx.batchWorkers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, doc := range docs {
		g.Go(func() error {
			tokens, err := idx.tokenizer.Tokenize(doc.Text)
			if err != nil {
				return fmt.Errorf("index document %d: %w", doc.ID, asInvalidInput(err))
			}
			records[i] = newDocumentStats(doc.ID, tokens)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		idx.logger.Warn("rejected batch",
			slog.Int("documents", len(docs)),
			slog.String("error", err.Error()))
		return err
	}

	for _, stats := range records {
		idx.apply(stats)
	}

	idx.logger.Debug("indexed batch", slog.Int("documents", len(docs)))
	return nil
}

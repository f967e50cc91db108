// Package retriever serves k-nearest-neighbour lookups against the currently
// loaded index generation.
package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/internal/infra/vecindex"
	apperrors "github.com/kaabil/faqrag/pkg/errors"
)

// generation is one immutable index/metadata pair. Readers grab the pointer
// once and work against a consistent snapshot; Reload swaps the pointer.
type generation struct {
	index *vecindex.Flat
	items []rag.FaqRecord
}

// IndexRetriever implements rag.Retriever over the persisted artifact pair.
type IndexRetriever struct {
	indexPath string
	metaPath  string
	current   atomic.Pointer[generation]
	logger    *slog.Logger
}

var _ rag.Retriever = (*IndexRetriever)(nil)

// New constructs a retriever without loading anything. Call Reload before
// serving, or let the first Retrieve fail with index_not_loaded.
func New(indexPath, metaPath string, logger *slog.Logger) *IndexRetriever {
	return &IndexRetriever{
		indexPath: indexPath,
		metaPath:  metaPath,
		logger:    logger.With("component", "retriever"),
	}
}

// Reload loads the artifact pair from disk and atomically swaps it in. On
// failure the previously loaded generation keeps serving.
func (r *IndexRetriever) Reload() error {
	index, err := vecindex.LoadFromFile(r.indexPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIndexNotLoaded, fmt.Sprintf("load index artifact %s", r.indexPath), err)
	}
	meta, err := vecindex.LoadMetadata(r.metaPath)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIndexNotLoaded, fmt.Sprintf("load metadata store %s", r.metaPath), err)
	}
	if len(meta.Items) != index.Len() {
		return apperrors.Wrap(apperrors.CodeDimensionMismatch,
			fmt.Sprintf("metadata store has %d items but index holds %d vectors", len(meta.Items), index.Len()), nil)
	}

	r.current.Store(&generation{index: index, items: meta.Items})
	r.logger.Info("index generation loaded", "vectors", index.Len(), "dimension", index.Dimension())
	return nil
}

// Loaded reports whether a generation is available.
func (r *IndexRetriever) Loaded() bool {
	return r.current.Load() != nil
}

// Retrieve returns up to k evidence candidates in descending score order.
func (r *IndexRetriever) Retrieve(_ context.Context, vector []float32, k int) ([]rag.RetrievedEvidence, error) {
	gen := r.current.Load()
	if gen == nil {
		return nil, apperrors.Wrap(apperrors.CodeIndexNotLoaded, "no index generation loaded; run the ingest step first", nil)
	}
	if k <= 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "k must be positive", nil)
	}
	if len(vector) != gen.index.Dimension() {
		return nil, apperrors.Wrap(apperrors.CodeDimensionMismatch,
			fmt.Sprintf("query vector dimension %d does not match index dimension %d; index and embedding model are out of sync",
				len(vector), gen.index.Dimension()), nil)
	}

	results, err := gen.index.Search(vector, k)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDimensionMismatch, "index search failed", err)
	}

	evidence := make([]rag.RetrievedEvidence, 0, len(results))
	for rank, res := range results {
		evidence = append(evidence, rag.RetrievedEvidence{
			Record: gen.items[res.ID],
			Score:  float64(res.Score),
			Rank:   rank,
		})
	}
	return evidence, nil
}

// Package ingest builds the persisted index artifact pair from FAQ records.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/internal/infra/vecindex"
	apperrors "github.com/kaabil/faqrag/pkg/errors"
)

// ArtifactPublisher pushes a freshly built artifact pair to shared storage.
type ArtifactPublisher interface {
	Publish(ctx context.Context, indexPath, metaPath string) error
}

// Builder turns an ordered FAQ corpus into an index artifact plus metadata
// store. A build is all-or-nothing: any embedding failure aborts it and the
// previously persisted pair stays untouched.
type Builder struct {
	embedder       rag.Embedder
	indexPath      string
	metaPath       string
	embeddingModel string
	publisher      ArtifactPublisher
	logger         *slog.Logger
}

// NewBuilder constructs the builder. publisher may be nil.
func NewBuilder(embedder rag.Embedder, indexPath, metaPath, embeddingModel string, publisher ArtifactPublisher, logger *slog.Logger) *Builder {
	return &Builder{
		embedder:       embedder,
		indexPath:      indexPath,
		metaPath:       metaPath,
		embeddingModel: embeddingModel,
		publisher:      publisher,
		logger:         logger.With("component", "ingest.builder"),
	}
}

// Build embeds every record, assembles the index and metadata in record
// order, and atomically replaces the persisted pair.
func (b *Builder) Build(ctx context.Context, records []rag.FaqRecord) error {
	if len(records) == 0 {
		return apperrors.Wrap(apperrors.CodeEmptyCorpus, "corpus contains no records to index", nil)
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = EmbeddingInput(record)
	}

	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeEmbeddingUnavailable, "corpus embedding failed", err)
	}
	if len(vectors) != len(records) {
		return apperrors.Wrap(apperrors.CodeEmbeddingUnavailable,
			fmt.Sprintf("embedding provider returned %d vectors for %d records", len(vectors), len(records)), nil)
	}

	index, err := vecindex.New(len(vectors[0]))
	if err != nil {
		return apperrors.Wrap(apperrors.CodeEmbeddingUnavailable, "embedding provider returned empty vectors", err)
	}
	for i, vector := range vectors {
		if !rag.NormalizeL2InPlace(vector) {
			return apperrors.Wrap(apperrors.CodeEmbeddingUnavailable,
				fmt.Sprintf("record %d produced a zero-norm embedding", records[i].ID), nil)
		}
		if err := index.Append(vector); err != nil {
			return apperrors.Wrap(apperrors.CodeEmbeddingUnavailable,
				fmt.Sprintf("record %d embedding rejected", records[i].ID), err)
		}
	}

	meta := vecindex.Metadata{Items: records, EmbeddingModel: b.embeddingModel}

	if err := b.persist(index, meta); err != nil {
		return err
	}
	b.logger.Info("index build complete", "records", len(records), "dimension", index.Dimension())

	if b.publisher != nil {
		if err := b.publisher.Publish(ctx, b.indexPath, b.metaPath); err != nil {
			// The local pair is already swapped; publication can be retried.
			b.logger.Warn("artifact publish failed", "error", err)
		}
	}
	return nil
}

// persist writes both artifacts to temporary paths first, then renames them
// into place, so an in-flight reader observes either the fully old or fully
// new pair.
func (b *Builder) persist(index *vecindex.Flat, meta vecindex.Metadata) error {
	for _, path := range []string{b.indexPath, b.metaPath} {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create artifact directory: %w", err)
			}
		}
	}

	tmpIndex := b.indexPath + ".tmp"
	tmpMeta := b.metaPath + ".tmp"

	if err := index.SaveToFile(tmpIndex); err != nil {
		return fmt.Errorf("write index artifact: %w", err)
	}
	if err := vecindex.SaveMetadata(meta, tmpMeta); err != nil {
		os.Remove(tmpIndex)
		return fmt.Errorf("write metadata store: %w", err)
	}

	if err := os.Rename(tmpIndex, b.indexPath); err != nil {
		os.Remove(tmpIndex)
		os.Remove(tmpMeta)
		return fmt.Errorf("swap index artifact: %w", err)
	}
	if err := os.Rename(tmpMeta, b.metaPath); err != nil {
		os.Remove(tmpMeta)
		return fmt.Errorf("swap metadata store: %w", err)
	}
	return nil
}

// EmbeddingInput forms the text embedded for a record. Question and answer
// are concatenated; category is excluded because it is not discriminative.
func EmbeddingInput(record rag.FaqRecord) string {
	return record.Question + "\n" + record.AnswerText
}

package retriever

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/kaabil/faqrag/internal/domain/rag"
	apperrors "github.com/kaabil/faqrag/pkg/errors"
)

// PostgresRetriever implements rag.Retriever against a pgvector-indexed
// faq_entries table, for deployments that keep the corpus in Postgres
// instead of the local artifact pair. Embeddings are stored normalized, so
// inner product (<#> returns its negative) behaves as cosine similarity.
type PostgresRetriever struct {
	pool      *pgxpool.Pool
	dimension int
}

var _ rag.Retriever = (*PostgresRetriever)(nil)

// NewPostgresRetriever constructs the retriever. dimension must match the
// embedding model used at ingest time.
func NewPostgresRetriever(pool *pgxpool.Pool, dimension int) *PostgresRetriever {
	return &PostgresRetriever{pool: pool, dimension: dimension}
}

// Retrieve runs the nearest-neighbour query, ties broken by ascending id.
func (r *PostgresRetriever) Retrieve(ctx context.Context, vector []float32, k int) ([]rag.RetrievedEvidence, error) {
	if k <= 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "k must be positive", nil)
	}
	if len(vector) != r.dimension {
		return nil, apperrors.Wrap(apperrors.CodeDimensionMismatch,
			fmt.Sprintf("query vector dimension %d does not match corpus dimension %d", len(vector), r.dimension), nil)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, category, question, answer_text, source_url, -(embedding <#> $1) AS score
		FROM faq_entries
		ORDER BY score DESC, id ASC
		LIMIT $2
	`, pgvector.NewVector(vector), k)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIndexNotLoaded, "faq corpus query failed", err)
	}
	defer rows.Close()

	var evidence []rag.RetrievedEvidence
	for rows.Next() {
		var record rag.FaqRecord
		var score float64
		if err := rows.Scan(&record.ID, &record.Category, &record.Question, &record.AnswerText, &record.SourceURL, &score); err != nil {
			return nil, err
		}
		evidence = append(evidence, rag.RetrievedEvidence{Record: record, Score: score, Rank: len(evidence)})
	}
	return evidence, rows.Err()
}

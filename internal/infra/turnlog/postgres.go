package turnlog

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaabil/faqrag/internal/domain/rag"
)

// PostgresStore writes the interaction log to a shared turns table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ rag.TurnLogger = (*PostgresStore)(nil)

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Append inserts one turn row. Citations are stored as JSON.
func (s *PostgresStore) Append(ctx context.Context, turn rag.Turn) error {
	citations, err := json.Marshal(turn.Citations)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO turns (id, ts, session_id, ip, user_agent, query, answer, used_evidence, citations, latency_ms, provider, model, topk, threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, turn.ID, turn.TS, turn.SessionID, turn.IP, turn.UserAgent, turn.Query, turn.Answer,
		turn.UsedEvidence, citations, turn.LatencyMs, turn.Provider, turn.Model, turn.TopK, turn.Threshold)
	return err
}

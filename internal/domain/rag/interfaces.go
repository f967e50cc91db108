package rag

import (
	"context"
	"time"

	"github.com/kaabil/faqrag/pkg/metrics"
)

// Embedder produces embeddings for free form text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever performs k-nearest-neighbour search against the loaded corpus.
// Implementations must return evidence in descending score order, at most k
// items, and must fail (not degrade) when no index is loaded or the query
// vector dimension does not match the index.
type Retriever interface {
	Retrieve(ctx context.Context, vector []float32, k int) ([]RetrievedEvidence, error)
}

// Generator turns accepted evidence into prose. It is the only expensive step
// of the pipeline and must honour ctx cancellation.
type Generator interface {
	Generate(ctx context.Context, query string, evidence []RetrievedEvidence) (string, *metrics.TokenUsage, error)
}

// ScopeDetector reports whether a query falls outside the supported domain.
// The verdict is consumed by the gate; the detection logic is pluggable.
type ScopeDetector interface {
	OutOfScope(query string) bool
}

// AnswerCache stores generated answers keyed by the supporting record.
type AnswerCache interface {
	Get(ctx context.Context, recordID int) (string, bool, error)
	Set(ctx context.Context, recordID int, answer string, ttl time.Duration) error
}

// TurnLogger records served interactions. Logging is best effort and must
// never fail a request.
type TurnLogger interface {
	Append(ctx context.Context, turn Turn) error
}

// Turn is one logged interaction.
type Turn struct {
	ID           string     `json:"id"`
	TS           time.Time  `json:"ts"`
	SessionID    string     `json:"sessionId"`
	IP           string     `json:"ip,omitempty"`
	UserAgent    string     `json:"userAgent,omitempty"`
	Query        string     `json:"query"`
	Answer       string     `json:"answer"`
	UsedEvidence bool       `json:"usedEvidence"`
	Citations    []Citation `json:"citations,omitempty"`
	LatencyMs    int64      `json:"latencyMs"`
	Provider     string     `json:"provider"`
	Model        string     `json:"model"`
	TopK         int        `json:"topk"`
	Threshold    float64    `json:"threshold"`
}

package rag

import "github.com/kaabil/faqrag/pkg/metrics"

// FaqRecord is one entry of the closed support corpus. Records are immutable
// once ingested; a re-ingestion replaces the whole generation.
type FaqRecord struct {
	ID         int    `json:"id"`
	Category   string `json:"category"`
	Question   string `json:"question"`
	AnswerText string `json:"answer_text"`
	SourceURL  string `json:"source_url"`
}

// RetrievedEvidence pairs a corpus record with its similarity to the query.
// Higher scores are more relevant; Rank is 0-based in descending score order.
type RetrievedEvidence struct {
	Record FaqRecord
	Score  float64
	Rank   int
}

// Outcome classifies a query after retrieval.
type Outcome string

const (
	// OutcomeAnswerable means retrieval produced sufficient evidence.
	OutcomeAnswerable Outcome = "answerable"
	// OutcomeNoEvidence means the corpus does not cover the question.
	OutcomeNoEvidence Outcome = "no_evidence"
	// OutcomeOutOfScope means the question is not about the supported domain.
	OutcomeOutOfScope Outcome = "out_of_scope"
)

// GateDecision is the verdict of the evidence gate. Evidence is populated
// only when the outcome is OutcomeAnswerable, already filtered by threshold
// and in rank order.
type GateDecision struct {
	Outcome  Outcome
	Evidence []RetrievedEvidence
}

// Citation points the user back at the exact corpus content that supported
// an answer. The summary is derived from the record text, never generated.
type Citation struct {
	Category  string `json:"categoria"`
	Summary   string `json:"resumen"`
	SourceURL string `json:"source_url"`
}

// Request is an incoming /ask query.
type Request struct {
	Query       string `json:"query"`
	ShowSources bool   `json:"show_sources"`
}

// Response is returned to the HTTP transport. Field names follow the public
// API contract of the service. HasEvidence is false on the refusal paths,
// where Answer carries a fixed policy message.
type Response struct {
	Answer      string              `json:"respuesta"`
	Sources     []Citation          `json:"fuentes,omitempty"`
	HasEvidence bool                `json:"evidencia"`
	TokenUsage  *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// EvalRecord is one labeled case for the offline evaluator.
type EvalRecord struct {
	Query       string `json:"query"`
	ExpectedIDs []int  `json:"expected_record_ids"`
}

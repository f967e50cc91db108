package generator

import (
	"context"
	"errors"
	"strings"

	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/pkg/metrics"
)

// OfflineGenerator is the deterministic stand-in used when OFFLINE is set.
// It returns corpus text verbatim, preferring the record whose question
// matches the query, so local runs need no network at all.
type OfflineGenerator struct{}

var _ rag.Generator = (*OfflineGenerator)(nil)

// NewOfflineGenerator constructs the stand-in.
func NewOfflineGenerator() *OfflineGenerator {
	return &OfflineGenerator{}
}

// Generate picks the best matching evidence record and returns its answer.
func (g *OfflineGenerator) Generate(_ context.Context, query string, evidence []rag.RetrievedEvidence) (string, *metrics.TokenUsage, error) {
	if len(evidence) == 0 {
		return "", nil, errors.New("offline generation requires evidence")
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	chosen := evidence[0].Record
	for _, ev := range evidence {
		question := strings.ToLower(strings.TrimSpace(ev.Record.Question))
		if question == "" || needle == "" {
			continue
		}
		if strings.Contains(question, needle) || strings.Contains(needle, question) {
			chosen = ev.Record
			break
		}
	}
	return chosen.AnswerText, nil, nil
}

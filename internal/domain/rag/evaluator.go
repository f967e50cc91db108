package rag

import (
	"context"
	"log/slog"
)

// EvalResult scores a single labeled case.
type EvalResult struct {
	Query        string  `json:"query"`
	Hit          bool    `json:"hit"`
	GateMatch    bool    `json:"gateMatch"`
	TopScore     float64 `json:"topScore"`
	CorrectScore float64 `json:"correctScore,omitempty"`
	Err          string  `json:"error,omitempty"`
}

// EvalReport aggregates metrics across a labeled set.
type EvalReport struct {
	Total            int          `json:"total"`
	Hits             int          `json:"hits"`
	HitRate          float64      `json:"hit_rate"`
	GateMatches      int          `json:"gate_matches"`
	GateAccuracy     float64      `json:"gate_accuracy"`
	MeanCorrectScore float64      `json:"mean_correct_score"`
	Failures         int          `json:"failures"`
	Results          []EvalResult `json:"results"`
}

// Evaluator replays labeled questions through retrieval and gating, without
// ever invoking generation or touching the index.
type Evaluator struct {
	embedder  Embedder
	retriever Retriever
	topK      int
	threshold float64
	logger    *slog.Logger
}

// NewEvaluator constructs an evaluator over the online retrieval path.
func NewEvaluator(embedder Embedder, retriever Retriever, topK int, threshold float64, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		embedder:  embedder,
		retriever: retriever,
		topK:      topK,
		threshold: threshold,
		logger:    logger.With("component", "rag.evaluator"),
	}
}

// Evaluate scores every record. A failing record is counted and skipped so a
// single broken case cannot hide results for the rest of the set.
func (e *Evaluator) Evaluate(ctx context.Context, records []EvalRecord) EvalReport {
	report := EvalReport{Total: len(records)}

	var correctScoreSum float64
	var correctScoreCount int

	for _, record := range records {
		result := e.evaluateOne(ctx, record)
		report.Results = append(report.Results, result)

		if result.Err != "" {
			report.Failures++
			continue
		}
		if result.Hit {
			report.Hits++
		}
		if result.GateMatch {
			report.GateMatches++
		}
		if result.CorrectScore > 0 {
			correctScoreSum += result.CorrectScore
			correctScoreCount++
		}
	}

	if report.Total > 0 {
		report.HitRate = float64(report.Hits) / float64(report.Total)
		report.GateAccuracy = float64(report.GateMatches) / float64(report.Total)
	}
	if correctScoreCount > 0 {
		report.MeanCorrectScore = correctScoreSum / float64(correctScoreCount)
	}
	return report
}

func (e *Evaluator) evaluateOne(ctx context.Context, record EvalRecord) EvalResult {
	result := EvalResult{Query: record.Query}

	vectors, err := e.embedder.Embed(ctx, []string{record.Query})
	if err != nil || len(vectors) != 1 {
		result.Err = errString(err, "embedding returned no vector")
		e.logger.Warn("eval embedding failed", "query", record.Query, "error", result.Err)
		return result
	}
	vector := vectors[0]
	if !NormalizeL2InPlace(vector) {
		result.Err = "embedding has zero norm"
		return result
	}

	evidence, err := e.retriever.Retrieve(ctx, vector, e.topK)
	if err != nil {
		result.Err = err.Error()
		e.logger.Warn("eval retrieval failed", "query", record.Query, "error", err)
		return result
	}

	expected := make(map[int]struct{}, len(record.ExpectedIDs))
	for _, id := range record.ExpectedIDs {
		expected[id] = struct{}{}
	}

	var correctSum float64
	var correctCount int
	for _, ev := range evidence {
		if _, ok := expected[ev.Record.ID]; ok {
			result.Hit = true
			correctSum += ev.Score
			correctCount++
		}
	}
	if correctCount > 0 {
		result.CorrectScore = correctSum / float64(correctCount)
	}
	if len(evidence) > 0 {
		result.TopScore = evidence[0].Score
	}

	decision := Decide(evidence, e.threshold)
	expectAnswerable := len(record.ExpectedIDs) > 0
	result.GateMatch = (decision.Outcome == OutcomeAnswerable) == expectAnswerable

	return result
}

func errString(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}

package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/kaabil/faqrag/pkg/errors"
	"github.com/kaabil/faqrag/pkg/metrics"
	"github.com/kaabil/faqrag/pkg/util"
)

// Fixed policy answers. These are authored, never model generated, so the
// refusal paths stay stable and auditable.
const (
	// NoEvidenceMessage is returned when the corpus does not cover the query.
	NoEvidenceMessage = "No encuentro información fiable para responder a esto. ¿Quieres que te ponga con una persona del equipo?"
	// OutOfScopeMessage is returned when the query is off-topic for the assistant.
	OutOfScopeMessage = "Esa pregunta queda fuera del alcance de este asistente. Solo puedo ayudarte con dudas sobre nuestro servicio."
)

// Config tunes the ask pipeline.
type Config struct {
	Provider       string
	Model          string
	TopK           int
	ScoreThreshold float64
	CacheTTL       time.Duration
}

// RequestMeta carries transport details used only for the interaction log.
type RequestMeta struct {
	SessionID string
	IP        string
	UserAgent string
}

// Service answers support questions strictly from indexed evidence.
type Service interface {
	Ask(ctx context.Context, req Request, meta RequestMeta) (Response, error)
}

type service struct {
	cfg       Config
	embedder  Embedder
	retriever Retriever
	scope     ScopeDetector
	generator Generator
	cache     AnswerCache
	turns     TurnLogger
	logger    *slog.Logger
}

// NewService wires up the ask pipeline.
func NewService(cfg Config, embedder Embedder, retriever Retriever, scope ScopeDetector, generator Generator, cache AnswerCache, turns TurnLogger, logger *slog.Logger) Service {
	return &service{
		cfg:       cfg,
		embedder:  embedder,
		retriever: retriever,
		scope:     scope,
		generator: generator,
		cache:     cache,
		turns:     turns,
		logger:    logger.With("component", "rag.service"),
	}
}

func (s *service) Ask(ctx context.Context, req Request, meta RequestMeta) (Response, error) {
	start := time.Now()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil)
	}
	if meta.SessionID == "" {
		meta.SessionID = uuid.NewString()
	}

	vector, err := s.embedQuery(ctx, query)
	if err != nil {
		return Response{}, err
	}

	evidence, err := s.retriever.Retrieve(ctx, vector, s.cfg.TopK)
	if err != nil {
		// Retrieval failures are operational problems; never fold them into
		// a no-evidence answer.
		return Response{}, err
	}

	decision := DecideWithScope(s.scope.OutOfScope(query), evidence, s.cfg.ScoreThreshold)

	switch decision.Outcome {
	case OutcomeOutOfScope:
		return s.refuse(ctx, req, meta, query, OutOfScopeMessage, start), nil
	case OutcomeNoEvidence:
		return s.refuse(ctx, req, meta, query, NoEvidenceMessage, start), nil
	}

	answer, usage, err := s.answerFromEvidence(ctx, query, decision.Evidence)
	if err != nil {
		return Response{}, err
	}

	citations := AssembleCitations(decision.Evidence)

	resp := Response{Answer: answer, HasEvidence: true, TokenUsage: usage}
	if req.ShowSources {
		resp.Sources = citations
	}

	s.logTurn(ctx, req, meta, Turn{
		Query:        query,
		Answer:       answer,
		UsedEvidence: true,
		Citations:    citations,
		LatencyMs:    time.Since(start).Milliseconds(),
	})

	return resp, nil
}

func (s *service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeEmbeddingUnavailable, "query embedding failed", err)
	}
	if len(vectors) != 1 {
		return nil, apperrors.Wrap(apperrors.CodeEmbeddingUnavailable, "embedding provider returned unexpected vector count", nil)
	}
	vector := vectors[0]
	if !NormalizeL2InPlace(vector) {
		return nil, apperrors.Wrap(apperrors.CodeEmbeddingUnavailable, "query embedding has zero norm", nil)
	}
	return vector, nil
}

// answerFromEvidence serves a cached answer for the top supporting record or
// asks the generator for a fresh one.
func (s *service) answerFromEvidence(ctx context.Context, query string, evidence []RetrievedEvidence) (string, *metrics.TokenUsage, error) {
	topID := evidence[0].Record.ID

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, topID)
		if err != nil {
			s.logger.Warn("answer cache lookup failed", "error", err)
		} else if ok {
			return cached, nil, nil
		}
	}

	answer, usage, err := s.generator.Generate(ctx, query, evidence)
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.CodeLLMError, "answer generation failed", err)
	}
	answer = strings.TrimSpace(answer)

	if s.cache != nil {
		if err := s.cache.Set(ctx, topID, answer, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("answer cache store failed", "error", err)
		}
	}
	return answer, usage, nil
}

func (s *service) refuse(ctx context.Context, req Request, meta RequestMeta, query, message string, start time.Time) Response {
	resp := Response{Answer: message}
	if req.ShowSources {
		resp.Sources = []Citation{}
	}
	s.logTurn(ctx, req, meta, Turn{
		Query:     query,
		Answer:    message,
		LatencyMs: time.Since(start).Milliseconds(),
	})
	return resp
}

func (s *service) logTurn(ctx context.Context, _ Request, meta RequestMeta, turn Turn) {
	if s.turns == nil {
		return
	}
	turn.ID = uuid.NewString()
	turn.TS = util.NowUTC()
	turn.SessionID = meta.SessionID
	turn.IP = meta.IP
	turn.UserAgent = meta.UserAgent
	turn.Provider = s.cfg.Provider
	turn.Model = s.cfg.Model
	turn.TopK = s.cfg.TopK
	turn.Threshold = s.cfg.ScoreThreshold
	if err := s.turns.Append(ctx, turn); err != nil {
		s.logger.Warn("turn log append failed", "error", err)
	}
}

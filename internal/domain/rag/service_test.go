package rag

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/kaabil/faqrag/pkg/errors"
	"github.com/kaabil/faqrag/pkg/metrics"
)

func TestService_AskAnswerable(t *testing.T) {
	record := FaqRecord{
		ID:         1,
		Category:   "pedidos",
		Question:   "¿Cómo cancelo mi pedido?",
		AnswerText: "Puedes cancelarlo desde tu cuenta. El reembolso tarda unos días.",
		SourceURL:  "https://example.com/faq/1",
	}
	turns := &captureTurnLogger{}
	svc := newServiceUnderTest(serviceDeps{
		retriever: retrieverReturning([]RetrievedEvidence{{Record: record, Score: 0.82, Rank: 0}}),
		generator: &stubGenerator{
			generateFn: func(ctx context.Context, query string, evidence []RetrievedEvidence) (string, *metrics.TokenUsage, error) {
				require.Len(t, evidence, 1)
				return "Cancela el pedido desde tu cuenta.", &metrics.TokenUsage{TotalTokens: 42}, nil
			},
		},
		turns: turns,
	})

	resp, err := svc.Ask(context.Background(), Request{Query: "¿cómo cancelo?", ShowSources: true}, RequestMeta{SessionID: "s1"})
	require.NoError(t, err)

	require.Equal(t, "Cancela el pedido desde tu cuenta.", resp.Answer)
	require.True(t, resp.HasEvidence)
	require.Len(t, resp.Sources, 1)
	require.Equal(t, "pedidos", resp.Sources[0].Category)
	require.Equal(t, "Puedes cancelarlo desde tu cuenta.", resp.Sources[0].Summary)
	require.Equal(t, "https://example.com/faq/1", resp.Sources[0].SourceURL)
	require.NotNil(t, resp.TokenUsage)
	require.Equal(t, 42, resp.TokenUsage.TotalTokens)

	require.Len(t, turns.turns, 1)
	logged := turns.turns[0]
	require.Equal(t, "s1", logged.SessionID)
	require.True(t, logged.UsedEvidence)
	require.NotEmpty(t, logged.ID)
	require.Len(t, logged.Citations, 1)
}

func TestService_AskNoEvidence(t *testing.T) {
	turns := &captureTurnLogger{}
	generatorCalled := false
	svc := newServiceUnderTest(serviceDeps{
		retriever: retrieverReturning([]RetrievedEvidence{
			{Record: FaqRecord{ID: 9}, Score: 0.12, Rank: 0},
		}),
		generator: &stubGenerator{
			generateFn: func(ctx context.Context, query string, evidence []RetrievedEvidence) (string, *metrics.TokenUsage, error) {
				generatorCalled = true
				return "no debería ejecutarse", nil, nil
			},
		},
		turns: turns,
	})

	resp, err := svc.Ask(context.Background(), Request{Query: "pregunta sin cobertura", ShowSources: true}, RequestMeta{})
	require.NoError(t, err)

	require.Equal(t, NoEvidenceMessage, resp.Answer)
	require.False(t, resp.HasEvidence)
	require.Empty(t, resp.Sources)
	require.False(t, generatorCalled)

	require.Len(t, turns.turns, 1)
	require.False(t, turns.turns[0].UsedEvidence)
	require.NotEmpty(t, turns.turns[0].SessionID)
}

func TestService_AskOutOfScope(t *testing.T) {
	svc := newServiceUnderTest(serviceDeps{
		retriever: retrieverReturning([]RetrievedEvidence{
			{Record: FaqRecord{ID: 1}, Score: 0.95, Rank: 0},
		}),
		scope: &stubScope{outOfScope: true},
	})

	resp, err := svc.Ask(context.Background(), Request{Query: "háblame de política"}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, OutOfScopeMessage, resp.Answer)
	require.Nil(t, resp.Sources)
	require.False(t, resp.HasEvidence)
}

func TestService_AskEmptyQuery(t *testing.T) {
	svc := newServiceUnderTest(serviceDeps{})

	_, err := svc.Ask(context.Background(), Request{Query: "   "}, RequestMeta{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestService_AskRetrievalFailureSurfaces(t *testing.T) {
	svc := newServiceUnderTest(serviceDeps{
		retriever: &stubRetriever{
			retrieveFn: func(ctx context.Context, vector []float32, k int) ([]RetrievedEvidence, error) {
				return nil, apperrors.Wrap(apperrors.CodeIndexNotLoaded, "no index generation loaded", nil)
			},
		},
	})

	_, err := svc.Ask(context.Background(), Request{Query: "hola"}, RequestMeta{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeIndexNotLoaded))
}

func TestService_AskEmbeddingFailure(t *testing.T) {
	svc := newServiceUnderTest(serviceDeps{
		embedder: &stubEmbedder{
			embedFn: func(ctx context.Context, texts []string) ([][]float32, error) {
				return nil, apperrors.Wrap(apperrors.CodeEmbeddingUnavailable, "provider down", nil)
			},
		},
	})

	_, err := svc.Ask(context.Background(), Request{Query: "hola"}, RequestMeta{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeEmbeddingUnavailable))
}

func TestService_AskGenerationFailure(t *testing.T) {
	svc := newServiceUnderTest(serviceDeps{
		retriever: retrieverReturning([]RetrievedEvidence{
			{Record: FaqRecord{ID: 1}, Score: 0.80, Rank: 0},
		}),
		generator: &stubGenerator{
			generateFn: func(ctx context.Context, query string, evidence []RetrievedEvidence) (string, *metrics.TokenUsage, error) {
				return "", nil, io.ErrUnexpectedEOF
			},
		},
	})

	_, err := svc.Ask(context.Background(), Request{Query: "hola"}, RequestMeta{})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLMError))
}

func TestService_AskUsesAnswerCache(t *testing.T) {
	cache := newMemoryAnswerCache()
	generations := 0
	svc := newServiceUnderTest(serviceDeps{
		retriever: retrieverReturning([]RetrievedEvidence{
			{Record: FaqRecord{ID: 5, AnswerText: "Respuesta base."}, Score: 0.70, Rank: 0},
		}),
		generator: &stubGenerator{
			generateFn: func(ctx context.Context, query string, evidence []RetrievedEvidence) (string, *metrics.TokenUsage, error) {
				generations++
				return "Respuesta generada.", nil, nil
			},
		},
		cache: cache,
	})

	first, err := svc.Ask(context.Background(), Request{Query: "hola"}, RequestMeta{})
	require.NoError(t, err)
	second, err := svc.Ask(context.Background(), Request{Query: "hola"}, RequestMeta{})
	require.NoError(t, err)

	require.Equal(t, first.Answer, second.Answer)
	require.Equal(t, 1, generations)
}

func TestService_AskHidesSourcesByDefault(t *testing.T) {
	svc := newServiceUnderTest(serviceDeps{
		retriever: retrieverReturning([]RetrievedEvidence{
			{Record: FaqRecord{ID: 1, AnswerText: "Texto."}, Score: 0.80, Rank: 0},
		}),
	})

	resp, err := svc.Ask(context.Background(), Request{Query: "hola"}, RequestMeta{})
	require.NoError(t, err)
	require.Nil(t, resp.Sources)
	require.True(t, resp.HasEvidence)
}

type serviceDeps struct {
	embedder  Embedder
	retriever Retriever
	scope     ScopeDetector
	generator Generator
	cache     AnswerCache
	turns     TurnLogger
}

func newServiceUnderTest(deps serviceDeps) Service {
	if deps.embedder == nil {
		deps.embedder = &stubEmbedder{}
	}
	if deps.retriever == nil {
		deps.retriever = &stubRetriever{}
	}
	if deps.scope == nil {
		deps.scope = &stubScope{}
	}
	if deps.generator == nil {
		deps.generator = &stubGenerator{}
	}
	cfg := Config{
		Provider:       "offline",
		Model:          "none",
		TopK:           4,
		ScoreThreshold: 0.25,
		CacheTTL:       time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(cfg, deps.embedder, deps.retriever, deps.scope, deps.generator, deps.cache, deps.turns, logger)
}

func retrieverReturning(evidence []RetrievedEvidence) Retriever {
	return &stubRetriever{
		retrieveFn: func(ctx context.Context, vector []float32, k int) ([]RetrievedEvidence, error) {
			return evidence, nil
		},
	}
}

type stubEmbedder struct {
	embedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.embedFn != nil {
		return s.embedFn(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type stubRetriever struct {
	retrieveFn func(ctx context.Context, vector []float32, k int) ([]RetrievedEvidence, error)
}

func (s *stubRetriever) Retrieve(ctx context.Context, vector []float32, k int) ([]RetrievedEvidence, error) {
	if s.retrieveFn != nil {
		return s.retrieveFn(ctx, vector, k)
	}
	return nil, nil
}

type stubGenerator struct {
	generateFn func(ctx context.Context, query string, evidence []RetrievedEvidence) (string, *metrics.TokenUsage, error)
}

func (s *stubGenerator) Generate(ctx context.Context, query string, evidence []RetrievedEvidence) (string, *metrics.TokenUsage, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, query, evidence)
	}
	return "respuesta", nil, nil
}

type stubScope struct {
	outOfScope bool
}

func (s *stubScope) OutOfScope(string) bool { return s.outOfScope }

type captureTurnLogger struct {
	turns []Turn
}

func (c *captureTurnLogger) Append(_ context.Context, turn Turn) error {
	c.turns = append(c.turns, turn)
	return nil
}

type memoryAnswerCache struct {
	answers map[int]string
}

func newMemoryAnswerCache() *memoryAnswerCache {
	return &memoryAnswerCache{answers: make(map[int]string)}
}

func (m *memoryAnswerCache) Get(_ context.Context, recordID int) (string, bool, error) {
	answer, ok := m.answers[recordID]
	return answer, ok, nil
}

func (m *memoryAnswerCache) Set(_ context.Context, recordID int, answer string, _ time.Duration) error {
	m.answers[recordID] = answer
	return nil
}

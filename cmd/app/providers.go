package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/internal/infra/answercache"
	"github.com/kaabil/faqrag/internal/infra/config"
	"github.com/kaabil/faqrag/internal/infra/embedder"
	"github.com/kaabil/faqrag/internal/infra/generator"
	"github.com/kaabil/faqrag/internal/infra/llm/chatgpt"
	"github.com/kaabil/faqrag/internal/infra/retriever"
	"github.com/kaabil/faqrag/internal/infra/scope"
	"github.com/kaabil/faqrag/internal/infra/turnlog"
)

func provideRAGConfig(cfg *config.Config) rag.Config {
	provider := "openai"
	if cfg.Offline {
		provider = "offline"
	}
	return rag.Config{
		Provider:       provider,
		Model:          cfg.LLM.Model,
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: cfg.Retrieval.ScoreThreshold,
		CacheTTL:       cfg.Answer.CacheTTL,
	}
}

func provideEmbedder(cfg *config.Config, logger *slog.Logger) (rag.Embedder, error) {
	if cfg.Offline {
		logger.Info("offline mode enabled, using deterministic embedder")
		return embedder.NewDeterministicEmbedder(cfg.Retrieval.EmbeddingDim), nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	return embedder.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel, logger), nil
}

func provideGenerator(cfg *config.Config, logger *slog.Logger) (rag.Generator, error) {
	if cfg.Offline {
		logger.Info("offline mode enabled, using corpus-text generator")
		return generator.NewOfflineGenerator(), nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	return generator.NewChatGPTGenerator(client, cfg.LLM.Model, cfg.LLM.Temperature, cfg.Answer.Prompt), nil
}

func provideIndexRetriever(cfg *config.Config, logger *slog.Logger) *retriever.IndexRetriever {
	return retriever.New(cfg.Retrieval.IndexPath, cfg.Retrieval.MetaPath, logger)
}

func provideRetriever(cfg *config.Config, idx *retriever.IndexRetriever, logger *slog.Logger) rag.Retriever {
	dsn := strings.TrimSpace(cfg.Retrieval.Postgres.DSN)
	if dsn == "" {
		return idx
	}
	pool, err := newPgxPool(dsn, cfg.Retrieval.Postgres)
	if err != nil {
		logger.Error("postgres corpus unavailable, using local index artifacts", "error", err)
		return idx
	}
	logger.Info("pgvector corpus retriever enabled")
	return retriever.NewPostgresRetriever(pool, cfg.Retrieval.EmbeddingDim)
}

func provideScopeDetector(cfg *config.Config) rag.ScopeDetector {
	if len(cfg.Retrieval.OutOfScopeTerms) == 0 {
		return scope.PermissiveDetector{}
	}
	return scope.NewKeywordDetector(cfg.Retrieval.OutOfScopeTerms)
}

func provideAnswerCache(cfg *config.Config, logger *slog.Logger) rag.AnswerCache {
	if cfg.Answer.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Answer.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return answercache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return answercache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey answer cache enabled", "addr", cfg.Answer.Valkey.Addr)
			return answercache.NewValkeyCache(client, "faqrag")
		}
	}
	return answercache.NewMemoryCache()
}

func provideTurnLogger(cfg *config.Config, logger *slog.Logger) rag.TurnLogger {
	if dsn := strings.TrimSpace(cfg.TurnLog.Postgres.DSN); dsn != "" {
		pool, err := newPgxPool(dsn, cfg.TurnLog.Postgres)
		if err != nil {
			logger.Error("postgres turn log unavailable, using local store", "error", err)
		} else {
			logger.Info("postgres turn log enabled")
			return turnlog.NewPostgresStore(pool)
		}
	}
	store, err := turnlog.NewBoltStore(cfg.TurnLog.Path)
	if err != nil {
		logger.Error("bolt turn log unavailable, using memory store", "error", err)
		return turnlog.NewMemoryStore()
	}
	return store
}

func newPgxPool(dsn string, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

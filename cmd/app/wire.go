//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/kaabil/faqrag/internal/bootstrap"
	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/internal/infra/config"
	"github.com/kaabil/faqrag/internal/infra/retriever"
	httpiface "github.com/kaabil/faqrag/internal/interface/http"
	"github.com/kaabil/faqrag/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRAGConfig,
		provideEmbedder,
		provideGenerator,
		provideIndexRetriever,
		provideRetriever,
		provideScopeDetector,
		provideAnswerCache,
		provideTurnLogger,
		rag.NewService,
		wire.Bind(new(httpiface.Reloader), new(*retriever.IndexRetriever)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}

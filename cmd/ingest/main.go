// Command ingest builds the index artifact pair from a FAQs CSV.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/kaabil/faqrag/internal/domain/ingest"
	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/internal/infra/artifacts"
	"github.com/kaabil/faqrag/internal/infra/config"
	"github.com/kaabil/faqrag/internal/infra/embedder"
	"github.com/kaabil/faqrag/internal/infra/faqsource"
	"github.com/kaabil/faqrag/internal/infra/llm/chatgpt"
	"github.com/kaabil/faqrag/pkg/logger"
)

func main() {
	csvPath := flag.String("csv", "", "path to the FAQs CSV")
	outIndex := flag.String("out-index", "", "index artifact destination (defaults to config)")
	outMeta := flag.String("out-meta", "", "metadata store destination (defaults to config)")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("missing required flag: -csv")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if *outIndex == "" {
		*outIndex = cfg.Retrieval.IndexPath
	}
	if *outMeta == "" {
		*outMeta = cfg.Retrieval.MetaPath
	}

	logg := logger.New()

	records, err := faqsource.LoadFile(*csvPath)
	if err != nil {
		log.Fatalf("load corpus: %v", err)
	}

	var emb rag.Embedder
	if cfg.Offline {
		emb = embedder.NewDeterministicEmbedder(cfg.Retrieval.EmbeddingDim)
	} else {
		client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
		if err != nil {
			log.Fatalf("init embedding client: %v", err)
		}
		emb = embedder.NewChatGPTEmbedder(client, cfg.LLM.EmbeddingModel, logg)
	}

	var publisher ingest.ArtifactPublisher
	if cfg.Artifacts.Enabled {
		publisher, err = artifacts.NewObjectPublisher(
			cfg.Artifacts.Endpoint, cfg.Artifacts.AccessKey, cfg.Artifacts.SecretKey,
			cfg.Artifacts.Bucket, cfg.Artifacts.Region, logg)
		if err != nil {
			log.Fatalf("init artifact publisher: %v", err)
		}
	}

	builder := ingest.NewBuilder(emb, *outIndex, *outMeta, cfg.LLM.EmbeddingModel, publisher, logg)
	if err := builder.Build(ctx, records); err != nil {
		log.Fatalf("index build failed: %v", err)
	}
	log.Printf("index saved to %s with metadata at %s (%d records)", *outIndex, *outMeta, len(records))
}

// Command eval replays a labeled question set through retrieval and gating
// and prints the resulting report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kaabil/faqrag/internal/domain/rag"
	"github.com/kaabil/faqrag/internal/infra/config"
	"github.com/kaabil/faqrag/internal/infra/embedder"
	"github.com/kaabil/faqrag/internal/infra/evalset"
	"github.com/kaabil/faqrag/internal/infra/llm/chatgpt"
	"github.com/kaabil/faqrag/internal/infra/retriever"
	"github.com/kaabil/faqrag/pkg/logger"
)

func main() {
	evalPath := flag.String("eval", "evaluation/eval_set.json", "path to the labeled question set")
	indexPath := flag.String("index", "", "index artifact path (defaults to config)")
	metaPath := flag.String("meta", "", "metadata store path (defaults to config)")
	topK := flag.Int("topk", 0, "candidates per query (defaults to config)")
	threshold := flag.Float64("threshold", -1, "minimum evidence score (defaults to config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if *indexPath == "" {
		*indexPath = cfg.Retrieval.IndexPath
	}
	if *metaPath == "" {
		*metaPath = cfg.Retrieval.MetaPath
	}
	if *topK <= 0 {
		*topK = cfg.Retrieval.TopK
	}
	if *threshold < 0 {
		*threshold = cfg.Retrieval.ScoreThreshold
	}

	logg := logger.New()

	records, err := evalset.LoadFile(*evalPath)
	if err != nil {
		log.Fatalf("load eval set: %v", err)
	}

	ret := retriever.New(*indexPath, *metaPath, logg)
	if err := ret.Reload(); err != nil {
		log.Fatalf("load index artifacts: %v", err)
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

	evaluator := rag.NewEvaluator(emb, ret, *topK, *threshold, logg)
	report := evaluator.Evaluate(ctx, records)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		log.Fatalf("encode report: %v", err)
	}
}

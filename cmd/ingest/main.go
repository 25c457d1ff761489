package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"paper-rag/internal/arxiv"
	"paper-rag/internal/chunker"
	"paper-rag/internal/config"
	"paper-rag/internal/domain"
	"paper-rag/internal/embedding/openai"
	"paper-rag/internal/indexer"
	"paper-rag/internal/pipeline"
	"paper-rag/internal/scraper"
	"paper-rag/internal/store/sqlite"
	"paper-rag/internal/vectorstore/memory"
	"paper-rag/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	lister, err := scraper.NewLister(scraper.ListerConfig{
		ListingURL: cfg.Scraper.ListingURL,
		BaseURL:    cfg.Scraper.BaseURL,
		Timeout:    time.Duration(cfg.Scraper.TimeoutSecs) * time.Second,
	}, logger)
	if err != nil {
		log.Fatalf("lister init failed: %v", err)
	}

	lookup := arxiv.NewClient(arxiv.Config{
		BaseURL: cfg.Arxiv.BaseURL,
		Timeout: time.Duration(cfg.Arxiv.TimeoutSecs) * time.Second,
	})
	resolver := scraper.NewResolver(scraper.ResolverConfig{
		DocumentLinkPrefix: cfg.Scraper.DocumentLinkPrefix,
		Timeout:            time.Duration(cfg.Scraper.TimeoutSecs) * time.Second,
		Concurrency:        cfg.Scraper.Concurrency,
	}, lookup, logger)

	meta, err := sqlite.NewStore(cfg.Store.DBPath, logger)
	if err != nil {
		log.Fatalf("metadata store init failed: %v", err)
	}
	defer meta.Close()

	emb, err := openai.NewClient(openai.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}

	fetcher := indexer.NewPDFFetcher(time.Duration(cfg.Scraper.TimeoutSecs) * time.Second * 2)
	ch := chunker.NewWindowChunker(cfg.Chunker.WindowRunes, cfg.Chunker.OverlapRunes)
	builder := indexer.NewBuilder(fetcher, ch, emb, logger)

	var store domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		store = memory.NewStore()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		store = qdrant.NewStore(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	p := pipeline.New(lister, resolver, meta, builder, cfg.Store.SnapshotPath, logger)
	report, err := p.Run(context.Background(), store)
	if err != nil {
		log.Fatalf("ingestion run failed: %v", err)
	}

	if ms, ok := store.(*memory.Store); ok {
		if err := ms.SaveFile(cfg.VectorStore.PersistPath); err != nil {
			log.Fatalf("saving vector index failed: %v", err)
		}
	}

	fmt.Printf("candidates=%d resolved=%d dropped=%d rows=%d durable=%t indexed=%d chunks=%d\n",
		report.Candidates, report.Resolved, report.Dropped, report.RowsAffected,
		report.Durable, report.DocumentsIndexed, report.Chunks)
	if !report.Durable {
		fmt.Fprintln(os.Stderr, "warning: metadata persistence failed; this run is not durable")
	}
}

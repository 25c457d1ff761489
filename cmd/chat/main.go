package main

import (
	"context"
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"paper-rag/internal/config"
	"paper-rag/internal/domain"
	"paper-rag/internal/embedding/openai"
	"paper-rag/internal/llm"
	"paper-rag/internal/rag"
	"paper-rag/internal/store/sqlite"
	"paper-rag/internal/summaries"
	"paper-rag/internal/tui"
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

	emb, err := openai.NewClient(openai.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Timeout:   time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}
	gen, err := llm.NewClient(llm.Config{
		BaseURL:   cfg.Generator.BaseURL,
		APIKeyEnv: cfg.Generator.APIKeyEnv,
		Model:     cfg.Generator.Model,
		Timeout:   time.Duration(cfg.Generator.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("generator init failed: %v", err)
	}

	var store domain.VectorStore
	switch cfg.VectorStore.Type {
	case "memory", "":
		// Reload the persisted index; the embedder must match the one
		// used at index time.
		ms, err := memory.LoadFile(cfg.VectorStore.PersistPath, emb.Name(), emb.Dimension())
		if err != nil {
			log.Fatalf("loading vector index failed: %v", err)
		}
		store = ms
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

	responder := rag.NewResponder(emb, gen, cfg.Retrieval.TopK, logger)
	responder.SetIndex(store)

	header := ""
	meta, err := sqlite.NewStore(cfg.Store.DBPath, logger)
	if err == nil {
		defer meta.Close()
		if records, err := meta.GetAll(context.Background()); err == nil {
			header = summaries.RenderAll(records)
		}
	}

	m := tui.New(responder, header)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

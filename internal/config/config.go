package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ScraperConfig configures the source lister and record resolver.
type ScraperConfig struct {
	ListingURL         string `yaml:"listing_url"`
	BaseURL            string `yaml:"base_url"`
	DocumentLinkPrefix string `yaml:"document_link_prefix"`
	TimeoutSecs        int    `yaml:"timeout_secs"`
	Concurrency        int    `yaml:"concurrency"`
}

// ArxivConfig configures the bibliographic lookup.
type ArxivConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StoreConfig configures metadata persistence.
type StoreConfig struct {
	DBPath       string `yaml:"db_path"`
	SnapshotPath string `yaml:"snapshot_path"`
}

// ChunkerConfig configures how document text is split into windows.
type ChunkerConfig struct {
	WindowRunes  int `yaml:"window_runes"`
	OverlapRunes int `yaml:"overlap_runes"`
}

// OpenAIConfig holds settings shared by the OpenAI-compatible clients.
type OpenAIConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Type        string        `yaml:"type"`
	PersistPath string        `yaml:"persist_path"`
	Qdrant      *QdrantConfig `yaml:"qdrant,omitempty"`
}

// RetrievalConfig configures the responder.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Scraper     ScraperConfig     `yaml:"scraper"`
	Arxiv       ArxivConfig       `yaml:"arxiv"`
	Store       StoreConfig       `yaml:"store"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    OpenAIConfig      `yaml:"embedder"`
	Generator   OpenAIConfig      `yaml:"generator"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Scraper.ListingURL == "" {
		cfg.Scraper.ListingURL = "https://paperswithcode.com/"
	}
	if cfg.Scraper.BaseURL == "" {
		cfg.Scraper.BaseURL = cfg.Scraper.ListingURL
	}
	if cfg.Scraper.DocumentLinkPrefix == "" {
		cfg.Scraper.DocumentLinkPrefix = "https://arxiv.org/pdf"
	}
	if cfg.Scraper.TimeoutSecs == 0 {
		cfg.Scraper.TimeoutSecs = 30
	}
	if cfg.Scraper.Concurrency == 0 {
		cfg.Scraper.Concurrency = 4
	}
	if cfg.Arxiv.TimeoutSecs == 0 {
		cfg.Arxiv.TimeoutSecs = 30
	}
	if cfg.Store.DBPath == "" {
		cfg.Store.DBPath = filepath.Join("data", "papers.db")
	}
	if cfg.Store.SnapshotPath == "" {
		cfg.Store.SnapshotPath = filepath.Join("data", "paper_metadata.json")
	}
	if cfg.Chunker.WindowRunes == 0 {
		cfg.Chunker.WindowRunes = 1000
	}
	if cfg.Chunker.OverlapRunes == 0 {
		cfg.Chunker.OverlapRunes = 200
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 30
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gpt-3.5-turbo"
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 60
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "memory"
	}
	if cfg.VectorStore.PersistPath == "" {
		cfg.VectorStore.PersistPath = filepath.Join("data", "vectordb.json")
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 10
	}
}

package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://paperswithcode.com/", cfg.Scraper.ListingURL)
	assert.Equal(t, "https://arxiv.org/pdf", cfg.Scraper.DocumentLinkPrefix)
	assert.Equal(t, 1000, cfg.Chunker.WindowRunes)
	assert.Equal(t, 200, cfg.Chunker.OverlapRunes)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Generator.Model)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	cfg := defaultConfig()
	cfg.Scraper.ListingURL = "https://example.com/papers/"
	cfg.Retrieval.TopK = 5
	cfg.VectorStore.Type = "qdrant"
	cfg.VectorStore.Qdrant = &QdrantConfig{URL: "http://localhost:6333", Collection: "papers"}

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/papers/", got.Scraper.ListingURL)
	assert.Equal(t, 5, got.Retrieval.TopK)
	assert.Equal(t, "qdrant", got.VectorStore.Type)
	require.NotNil(t, got.VectorStore.Qdrant)
	assert.Equal(t, "papers", got.VectorStore.Qdrant.Collection)
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &AppConfig{}
	cfg.Retrieval.TopK = 3
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Retrieval.TopK, "explicit value survives")
	assert.Equal(t, 1000, got.Chunker.WindowRunes, "unset fields fall back to defaults")
}

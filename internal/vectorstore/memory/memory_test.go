package memory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper-rag/internal/domain"
)

func chunk(id string, idx int, text string) domain.IndexedChunk {
	return domain.IndexedChunk{SourceIdentifier: id, Index: idx, Text: text}
}

func setupIndex(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.NoError(t, s.Init("fake", 2))
	require.NoError(t, s.Upsert(
		[]domain.IndexedChunk{
			chunk("a", 0, "alpha"),
			chunk("a", 1, "beta"),
			chunk("b", 0, "gamma"),
		},
		[][]float64{
			{1, 0},
			{0, 1},
			{1, 1},
		},
	))
	return s
}

func TestSearchRanksByCosine(t *testing.T) {
	s := setupIndex(t)

	results, err := s.Search([]float64{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "alpha", results[0].Chunk.Text)
	assert.Equal(t, "gamma", results[1].Chunk.Text)
	assert.Equal(t, "beta", results[2].Chunk.Text)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Init("fake", 2))
	require.NoError(t, s.Upsert(
		[]domain.IndexedChunk{chunk("a", 0, "first"), chunk("b", 0, "second")},
		[][]float64{{1, 0}, {2, 0}},
	))

	// both vectors have identical cosine similarity to the query
	results, err := s.Search([]float64{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "first", results[0].Chunk.Text)
	assert.Equal(t, "second", results[1].Chunk.Text)
}

func TestSearchDeterministic(t *testing.T) {
	s := setupIndex(t)

	first, err := s.Search([]float64{3, 1}, 2)
	require.NoError(t, err)
	second, err := s.Search([]float64{3, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSearchTopKClamped(t *testing.T) {
	s := setupIndex(t)

	results, err := s.Search([]float64{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Init("fake", 2))

	err := s.Upsert([]domain.IndexedChunk{chunk("a", 0, "x")}, [][]float64{{1, 0, 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearchQueryDimensionMismatch(t *testing.T) {
	s := setupIndex(t)

	_, err := s.Search([]float64{1, 0, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestInitResets(t *testing.T) {
	s := setupIndex(t)
	require.Equal(t, 3, s.Count())

	require.NoError(t, s.Init("fake", 2))
	assert.Zero(t, s.Count())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := setupIndex(t)
	path := filepath.Join(t.TempDir(), "vectordb.json")
	require.NoError(t, s.SaveFile(path))

	loaded, err := LoadFile(path, "fake", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Count())
	assert.Equal(t, "fake", loaded.EmbedderName())

	want, err := s.Search([]float64{1, 1}, 3)
	require.NoError(t, err)
	got, err := loaded.Search([]float64{1, 1}, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadRejectsForeignEmbedder(t *testing.T) {
	s := setupIndex(t)
	path := filepath.Join(t.TempDir(), "vectordb.json")
	require.NoError(t, s.SaveFile(path))

	_, err := LoadFile(path, "other", 2)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	_, err = LoadFile(path, "fake", 7)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

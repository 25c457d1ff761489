// Package memory is an in-memory vector index with brute-force cosine
// search and optional JSON persistence so a restart does not require
// re-embedding.
package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"paper-rag/internal/domain"
)

// Store keeps chunks and their vectors in insertion order. Search is
// deterministic: descending score with insertion order breaking ties, so
// repeated queries against an unchanged index return identical rankings.
type Store struct {
	mu           sync.RWMutex
	embedderName string
	dimension    int
	vectors      [][]float64
	chunks       []domain.IndexedChunk
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store { return &Store{} }

// Init resets the store for an index built by the named embedder.
func (s *Store) Init(embedderName string, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.embedderName = embedderName
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

// Upsert appends chunks with their vectors.
func (s *Store) Upsert(chunks []domain.IndexedChunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector dimension %d: %w", len(v), domain.ErrDimensionMismatch)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK most similar chunks by cosine similarity.
func (s *Store) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 10
	}
	if s.dimension > 0 && len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d, index dimension %d: %w",
			len(vector), s.dimension, domain.ErrDimensionMismatch)
	}
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(s.vectors))
	for i := range s.vectors {
		scores[i] = scored{i, cosine(s.vectors[i], vector)}
	}
	// Stable sort keeps insertion order on equal scores.
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK > len(scores) {
		topK = len(scores)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, domain.SearchResult{
			Chunk: s.chunks[scores[i].idx],
			Score: scores[i].score,
		})
	}
	return results, nil
}

// Count returns the number of indexed chunks.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Clear drops all chunks and vectors, keeping the embedding space.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.chunks = nil
	return nil
}

// EmbedderName returns the embedder the index was built with.
func (s *Store) EmbedderName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedderName
}

type snapshot struct {
	EmbedderName string                `json:"embedder_name"`
	Dimension    int                   `json:"dimension"`
	Chunks       []domain.IndexedChunk `json:"chunks"`
	Vectors      [][]float64           `json:"vectors"`
}

// SaveFile persists the index to path.
func (s *Store) SaveFile(path string) error {
	s.mu.RLock()
	snap := snapshot{
		EmbedderName: s.embedderName,
		Dimension:    s.dimension,
		Chunks:       s.chunks,
		Vectors:      s.vectors,
	}
	s.mu.RUnlock()
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile restores a persisted index. The index must have been built by
// the given embedder: a different name or dimension means the embedding
// spaces disagree and retrieval would silently degrade.
func LoadFile(path string, embedderName string, dimension int) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.EmbedderName != embedderName {
		return nil, fmt.Errorf("index built with %q, querying with %q: %w",
			snap.EmbedderName, embedderName, domain.ErrDimensionMismatch)
	}
	if dimension > 0 && snap.Dimension != dimension {
		return nil, fmt.Errorf("index dimension %d, embedder dimension %d: %w",
			snap.Dimension, dimension, domain.ErrDimensionMismatch)
	}
	return &Store{
		embedderName: snap.EmbedderName,
		dimension:    snap.Dimension,
		vectors:      snap.Vectors,
		chunks:       snap.Chunks,
	}, nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

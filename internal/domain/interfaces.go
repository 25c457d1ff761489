package domain

import "context"

// Embedder converts free text into a numeric vector representation.
// The same implementation must be used at index time and query time;
// Name identifies the model so a reloaded index can detect a mismatch.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator produces model text for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chunker splits text into overlapping windows suitable for retrieval.
type Chunker interface {
	Split(text string) []string
}

// VectorStore persists indexed chunks and supports similarity search.
// Search ordering is deterministic: descending score, insertion order on ties.
type VectorStore interface {
	Init(embedderName string, dimension int) error
	Upsert(chunks []IndexedChunk, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Count() int
	Clear() error
}

// MetadataStore is the durable keyed collection of resolved records.
// UpsertAll replaces whole records on identifier conflict and commits all
// records of a call together.
type MetadataStore interface {
	UpsertAll(ctx context.Context, records []PaperRecord) (int, error)
	GetAll(ctx context.Context) ([]PaperRecord, error)
	Get(ctx context.Context, identifier string) (PaperRecord, error)
}

// BibLookup resolves a document key to authoritative bibliographic fields.
type BibLookup interface {
	Lookup(ctx context.Context, key string) (BibEntry, error)
}

// BibEntry holds the fields returned by a bibliographic lookup.
type BibEntry struct {
	Published string
	Authors   string
	Summary   string
}

// DocumentFetcher retrieves the full text of a paper, split into
// page-level units in document order.
type DocumentFetcher interface {
	FetchPages(ctx context.Context, locator string) ([]string, error)
}

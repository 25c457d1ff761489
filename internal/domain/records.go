package domain

// Candidate is one (identifier, title) pair discovered on the listing page.
type Candidate struct {
	Identifier string
	Title      string
}

// PaperRecord is the resolved metadata for one distinct source paper.
// Identifier is the canonical listing-page URL and the primary key
// everywhere downstream. DocumentLocator stays empty until the resolver
// finds a fetchable document; records without it are never indexed.
type PaperRecord struct {
	Identifier      string
	Title           string
	DocumentLocator string
	Published       string
	Authors         string
	Summary         string
}

// Resolved reports whether the record carries a fetchable document URL.
func (r PaperRecord) Resolved() bool { return r.DocumentLocator != "" }

// IndexedChunk is one overlapping text window of a paper's full text,
// stamped with denormalized record metadata so retrieval results can be
// displayed without a metadata-store lookup.
type IndexedChunk struct {
	SourceIdentifier string
	Index            int
	Text             string
	Title            string
	Authors          string
	Published        string
	Summary          string
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk IndexedChunk
	Score float64
}

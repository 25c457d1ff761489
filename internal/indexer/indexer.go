// Package indexer builds the vector index over full paper texts.
package indexer

import (
	"context"

	"go.uber.org/zap"

	"paper-rag/internal/domain"
)

// Report summarizes one index build.
type Report struct {
	DocumentsIndexed int
	DocumentsSkipped int
	Chunks           int
}

// Builder fetches document text, windows it, embeds each window and
// persists the tuples into a vector store. An index is always rebuilt
// from scratch; incremental patching is deliberately out of scope.
type Builder struct {
	fetcher  domain.DocumentFetcher
	chunker  domain.Chunker
	embedder domain.Embedder
	logger   *zap.Logger
}

// NewBuilder creates an index builder.
func NewBuilder(fetcher domain.DocumentFetcher, chunker domain.Chunker, embedder domain.Embedder, logger *zap.Logger) *Builder {
	return &Builder{fetcher: fetcher, chunker: chunker, embedder: embedder, logger: logger}
}

// Build populates store with chunks for every record that has a document
// locator. A fetch failure for one document never aborts the build: the
// document is skipped and its chunks are simply absent. An empty record
// list yields an empty index.
func (b *Builder) Build(ctx context.Context, records []domain.PaperRecord, store domain.VectorStore) (Report, error) {
	var report Report
	initialized := false
	for _, rec := range records {
		if !rec.Resolved() {
			b.logger.Debug("skipping unresolved record", zap.String("identifier", rec.Identifier))
			report.DocumentsSkipped++
			continue
		}
		pages, err := b.fetcher.FetchPages(ctx, rec.DocumentLocator)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			b.logger.Warn("document fetch failed, chunks omitted",
				zap.String("identifier", rec.Identifier),
				zap.String("locator", rec.DocumentLocator),
				zap.Error(err))
			report.DocumentsSkipped++
			continue
		}

		var chunks []domain.IndexedChunk
		var vectors [][]float64
		idx := 0
		failed := false
		for _, page := range pages {
			for _, window := range b.chunker.Split(page) {
				vec, err := b.embedder.Embed(ctx, window)
				if err != nil {
					if ctx.Err() != nil {
						return report, ctx.Err()
					}
					b.logger.Warn("embedding failed, document omitted",
						zap.String("identifier", rec.Identifier),
						zap.Error(err))
					failed = true
					break
				}
				chunks = append(chunks, domain.IndexedChunk{
					SourceIdentifier: rec.Identifier,
					Index:            idx,
					Text:             window,
					Title:            rec.Title,
					Authors:          rec.Authors,
					Published:        rec.Published,
					Summary:          rec.Summary,
				})
				vectors = append(vectors, vec)
				idx++
			}
			if failed {
				break
			}
		}
		if failed || len(chunks) == 0 {
			report.DocumentsSkipped++
			continue
		}

		if !initialized {
			if err := store.Init(b.embedder.Name(), b.embedder.Dimension()); err != nil {
				return report, err
			}
			initialized = true
		}
		if err := store.Upsert(chunks, vectors); err != nil {
			return report, err
		}
		report.DocumentsIndexed++
		report.Chunks += len(chunks)
		b.logger.Info("document indexed",
			zap.String("identifier", rec.Identifier),
			zap.Int("chunks", len(chunks)))
	}
	return report, nil
}

// Package pipeline orchestrates one ingestion run: list candidates,
// resolve records, persist metadata, rebuild the vector index.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"paper-rag/internal/domain"
	"paper-rag/internal/indexer"
	"paper-rag/internal/scraper"
	"paper-rag/internal/store/jsonfile"
)

// Report summarizes one ingestion run.
type Report struct {
	Candidates       int
	Resolved         int
	Dropped          int
	RowsAffected     int
	Durable          bool
	DocumentsIndexed int
	DocumentsSkipped int
	Chunks           int
}

// Pipeline wires the ingestion stages together. Stages run strictly in
// sequence; only the resolver fans out internally.
type Pipeline struct {
	lister       *scraper.Lister
	resolver     *scraper.Resolver
	meta         domain.MetadataStore
	builder      *indexer.Builder
	snapshotPath string
	logger       *zap.Logger
}

// New creates an ingestion pipeline. snapshotPath may be empty to skip
// the JSON metadata snapshot.
func New(lister *scraper.Lister, resolver *scraper.Resolver, meta domain.MetadataStore,
	builder *indexer.Builder, snapshotPath string, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		lister:       lister,
		resolver:     resolver,
		meta:         meta,
		builder:      builder,
		snapshotPath: snapshotPath,
		logger:       logger,
	}
}

// Run executes one ingestion run into store. A listing fetch failure is
// fatal to the run; per-candidate and per-document failures are logged
// and tolerated. A metadata persistence failure does not stop the run —
// indexing proceeds from the in-memory records with Durable set to false.
func (p *Pipeline) Run(ctx context.Context, store domain.VectorStore) (Report, error) {
	var report Report

	candidates, err := p.lister.ListCandidates(ctx)
	if err != nil {
		return report, err
	}
	report.Candidates = len(candidates)

	records := p.resolver.ResolveAll(ctx, candidates)
	report.Resolved = len(records)
	report.Dropped = len(candidates) - len(records)

	rows, err := p.meta.UpsertAll(ctx, records)
	report.RowsAffected = rows
	if err != nil {
		p.logger.Warn("metadata persistence failed, continuing in-memory", zap.Error(err))
	} else {
		report.Durable = true
	}

	if p.snapshotPath != "" {
		if err := jsonfile.Save(p.snapshotPath, records); err != nil {
			p.logger.Warn("metadata snapshot failed", zap.String("path", p.snapshotPath), zap.Error(err))
		}
	}

	buildReport, err := p.builder.Build(ctx, records, store)
	report.DocumentsIndexed = buildReport.DocumentsIndexed
	report.DocumentsSkipped = buildReport.DocumentsSkipped
	report.Chunks = buildReport.Chunks
	if err != nil {
		return report, err
	}

	p.logger.Info("ingestion run complete",
		zap.Int("candidates", report.Candidates),
		zap.Int("resolved", report.Resolved),
		zap.Int("dropped", report.Dropped),
		zap.Int("rows_affected", report.RowsAffected),
		zap.Bool("durable", report.Durable),
		zap.Int("documents_indexed", report.DocumentsIndexed),
		zap.Int("chunks", report.Chunks))
	return report, nil
}

package scraper

import (
	"context"
	"errors"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"paper-rag/internal/domain"
)

// DefaultDocumentLinkPrefix matches fetchable arXiv PDF links on a paper
// detail page.
const DefaultDocumentLinkPrefix = "https://arxiv.org/pdf"

// Resolver turns listing candidates into complete PaperRecords by
// locating the canonical document link on each detail page and querying
// the bibliographic lookup for the remaining fields.
type Resolver struct {
	linkPrefix  string
	client      *http.Client
	lookup      domain.BibLookup
	concurrency int
	logger      *zap.Logger
}

// ResolverConfig configures the record resolver.
type ResolverConfig struct {
	DocumentLinkPrefix string
	Timeout            time.Duration
	Concurrency        int
}

// NewResolver creates a resolver backed by the given bibliographic lookup.
func NewResolver(cfg ResolverConfig, lookup domain.BibLookup, logger *zap.Logger) *Resolver {
	if cfg.DocumentLinkPrefix == "" {
		cfg.DocumentLinkPrefix = DefaultDocumentLinkPrefix
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Resolver{
		linkPrefix:  cfg.DocumentLinkPrefix,
		client:      &http.Client{Timeout: timeout},
		lookup:      lookup,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Resolve fetches the candidate's detail page and populates the remaining
// PaperRecord fields. The first document link in document order wins. A
// detail page without a document link, or a key with no bibliographic
// match, yields a ResolutionError and the candidate is dropped from the
// run.
func (r *Resolver) Resolve(ctx context.Context, c domain.Candidate) (domain.PaperRecord, error) {
	locator, err := r.findDocumentLink(ctx, c.Identifier)
	if err != nil {
		return domain.PaperRecord{}, err
	}
	key := DocumentKey(locator)
	entry, err := r.lookup.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNoBibMatch) {
			return domain.PaperRecord{}, &domain.ResolutionError{
				Identifier: c.Identifier,
				Reason:     "no bibliographic match for key " + key,
				Err:        err,
			}
		}
		return domain.PaperRecord{}, err
	}
	return domain.PaperRecord{
		Identifier:      c.Identifier,
		Title:           c.Title,
		DocumentLocator: locator,
		Published:       entry.Published,
		Authors:         entry.Authors,
		Summary:         entry.Summary,
	}, nil
}

// ResolveAll resolves candidates with a bounded worker pool. Per-candidate
// failures are logged and skipped; they never abort the batch. Results are
// ordered by identifier, not submission order.
func (r *Resolver) ResolveAll(ctx context.Context, candidates []domain.Candidate) []domain.PaperRecord {
	var (
		mu      sync.Mutex
		records []domain.PaperRecord
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, c := range candidates {
		c := c
		g.Go(func() error {
			rec, err := r.Resolve(ctx, c)
			if err != nil {
				r.logger.Warn("candidate dropped",
					zap.String("identifier", c.Identifier),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(records, func(i, j int) bool {
		return records[i].Identifier < records[j].Identifier
	})
	return records
}

func (r *Resolver) findDocumentLink(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &domain.FetchError{URL: pageURL, Status: resp.StatusCode}
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}
	locator := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if ok && strings.HasPrefix(href, r.linkPrefix) {
			locator = href
			return false
		}
		return true
	})
	if locator == "" {
		return "", &domain.ResolutionError{
			Identifier: pageURL,
			Reason:     "no document link on detail page",
		}
	}
	return locator, nil
}

// DocumentKey extracts the lookup key from a document locator: the
// trailing path segment with the standard file extension stripped.
func DocumentKey(locator string) string {
	key := path.Base(strings.TrimSuffix(locator, "/"))
	key = strings.TrimSuffix(key, ".pdf")
	return key
}

package scraper

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"paper-rag/internal/domain"
)

// DefaultListingURL is the trending-papers front page.
const DefaultListingURL = "https://paperswithcode.com/"

// paperLinkRe matches detail-page hrefs while excluding the #code and
// #tasks fragment variants that point back at the same paper.
var paperLinkRe = regexp.MustCompile(`/paper/(?:.*[^/])?$`)

// Lister discovers candidate papers on the listing page.
type Lister struct {
	listingURL string
	baseURL    *url.URL
	client     *http.Client
	logger     *zap.Logger
}

// ListerConfig configures the source lister.
type ListerConfig struct {
	ListingURL string
	BaseURL    string
	Timeout    time.Duration
}

// NewLister creates a lister for the configured listing page.
func NewLister(cfg ListerConfig, logger *zap.Logger) (*Lister, error) {
	if cfg.ListingURL == "" {
		cfg.ListingURL = DefaultListingURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = cfg.ListingURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Lister{
		listingURL: cfg.ListingURL,
		baseURL:    base,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// ListCandidates fetches the listing page and extracts a deduplicated,
// order-preserving list of candidates. The first occurrence of an
// identifier wins, together with its first-seen title. An empty result
// is valid output, not an error.
func (l *Lister) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.listingURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: l.listingURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FetchError{URL: l.listingURL, Status: resp.StatusCode}
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	candidates := l.extract(doc)
	l.logger.Info("listed candidates",
		zap.String("url", l.listingURL),
		zap.Int("count", len(candidates)))
	return candidates, nil
}

func (l *Lister) extract(doc *goquery.Document) []domain.Candidate {
	seen := make(map[string]bool)
	var out []domain.Candidate
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !isPaperLink(href) {
			return
		}
		title := strings.TrimSpace(s.Text())
		if title == "" {
			return
		}
		id := l.absolute(href)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, domain.Candidate{Identifier: id, Title: title})
	})
	return out
}

// isPaperLink reports whether href points at a paper detail page. Links
// carrying any fragment (e.g. #code, #tasks) are variants of a page
// already listed and are excluded.
func isPaperLink(href string) bool {
	if strings.Contains(href, "#") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return paperLinkRe.MatchString(u.Path) && strings.Contains(u.Path, "/paper/")
}

func (l *Lister) absolute(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return l.baseURL.ResolveReference(u).String()
}
